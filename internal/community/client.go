// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package community

import (
	"context"

	"github.com/sirseerhq/listsync/internal/listsync"
)

// Client defines the interface for reading paged lists from the community
// backend. Implementations must be safe for concurrent use.
type Client interface {
	// ListBoards returns one page of boards.
	ListBoards(ctx context.Context, opts PageOptions) (*ListPage[Board], error)

	// ListPosts returns one page of the posts on a board, newest first.
	ListPosts(ctx context.Context, boardID int64, opts PageOptions) (*ListPage[Post], error)

	// ListUserPosts returns one page of the posts written by a user, newest first.
	ListUserPosts(ctx context.Context, userID string, opts PageOptions) (*ListPage[Post], error)

	// ListComments returns one page of the comments on a post, oldest first.
	ListComments(ctx context.Context, postID int64, opts PageOptions) (*ListPage[Comment], error)

	// ListGroupMembers returns one page of the members of a group.
	ListGroupMembers(ctx context.Context, groupID int64, opts PageOptions) (*ListPage[GroupMember], error)

	// SearchMessages returns messages in a chat containing the keyword, sent
	// at or before opts.Before, newest first. Messages sharing the boundary
	// send time are returned again on the next page.
	SearchMessages(ctx context.Context, chatID string, opts SearchOptions) (*ListPage[ChatMessage], error)
}

// PageOptions addresses one page of a page-numbered list.
type PageOptions struct {
	// Page is 1-based. Values below 1 request the first page.
	Page int `url:"page"`

	// PageSize defaults to DefaultPageSize and is capped at MaxPageSize.
	PageSize int `url:"pageSize"`
}

// SearchOptions addresses one page of a message search.
type SearchOptions struct {
	Keyword string

	// Before bounds the send time. listsync.Infinity means no bound.
	Before int64

	// Limit defaults to DefaultPageSize and is capped at MaxPageSize.
	Limit int
}

// ListPage is one page of results. Total is nil when the backend did not
// report a count.
type ListPage[T any] struct {
	Items []T
	Total *int
}

const (
	// DefaultPageSize is used when a request does not set a size.
	DefaultPageSize = 20

	// MaxPageSize is the largest page the backend serves.
	MaxPageSize = 100
)

func clampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func (o PageOptions) normalized() PageOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	o.PageSize = clampPageSize(o.PageSize)
	return o
}

func (o SearchOptions) normalized() SearchOptions {
	if o.Before <= 0 {
		o.Before = listsync.Infinity
	}
	o.Limit = clampPageSize(o.Limit)
	return o
}

// bounded reports whether the search has an upper send-time bound.
func (o SearchOptions) bounded() bool {
	return o.Before != listsync.Infinity
}

var (
	_ Client = (*RESTClient)(nil)
	_ Client = (*GraphQLClient)(nil)
	_ Client = (*RetryClient)(nil)
)
