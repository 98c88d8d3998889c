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

// Package feeds binds the community lists to listsync synchronizers. Each
// constructor returns a ready Synchronizer whose parameters select the board,
// post, group or chat to page through; call Configure then Refresh.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirseerhq/listsync/internal/community"
	"github.com/sirseerhq/listsync/internal/listsync"
)

// Kind names a feed on the command line and in checkpoints.
type Kind string

const (
	KindBoards    Kind = "boards"
	KindPosts     Kind = "posts"
	KindUserPosts Kind = "user-posts"
	KindComments  Kind = "comments"
	KindMembers   Kind = "members"
	KindSearch    Kind = "search"
)

// Kinds returns every feed kind in display order.
func Kinds() []Kind {
	return []Kind{KindBoards, KindPosts, KindUserPosts, KindComments, KindMembers, KindSearch}
}

// ParseKind validates a feed name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown feed %q (want one of %s)", s, strings.Join(kindNames(), ", "))
}

func kindNames() []string {
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return names
}

// BoardQuery selects the board list. It has no parameters.
type BoardQuery struct{}

// PostQuery selects the posts of one board.
type PostQuery struct {
	BoardID int64
}

// UserPostQuery selects the posts written by one user.
type UserPostQuery struct {
	UserID string
}

// CommentQuery selects the comments of one post.
type CommentQuery struct {
	PostID int64
}

// MemberQuery selects the members of one group.
type MemberQuery struct {
	GroupID int64
}

// SearchQuery selects messages in a chat containing Keyword.
type SearchQuery struct {
	ChatID  string
	Keyword string
}

// ErrMissingParam is returned by a fetch whose query lacks a required id.
// It surfaces on the synchronizer state like any other fetch failure.
var ErrMissingParam = errors.New("missing feed parameter")

func pageOptions(c listsync.Cursor, size int) community.PageOptions {
	return community.PageOptions{Page: c.Page, PageSize: size}
}

func toPage[T listsync.Item](p *community.ListPage[T]) *listsync.Page[T] {
	if p == nil {
		return &listsync.Page[T]{}
	}
	return &listsync.Page[T]{Items: p.Items, Total: p.Total}
}

// named puts the default list name ahead of the caller's options so that
// WithName from the caller wins. Page sizes are capped at what the backend
// serves; a larger request would come back short and end the list early.
func named(kind Kind, opts []listsync.Option, extra ...listsync.Option) []listsync.Option {
	all := append([]listsync.Option{
		listsync.WithName(string(kind)),
		listsync.WithMaxPageSize(community.MaxPageSize),
	}, extra...)
	return append(all, opts...)
}

// NewBoardFeed returns a synchronizer over all boards.
func NewBoardFeed(c community.Client, opts ...listsync.Option) *listsync.Synchronizer[community.Board, BoardQuery] {
	fetch := func(ctx context.Context, req listsync.Request[BoardQuery]) (*listsync.Page[community.Board], error) {
		p, err := c.ListBoards(ctx, pageOptions(req.Cursor, req.PageSize))
		if err != nil {
			return nil, err
		}
		return toPage(p), nil
	}
	return listsync.New(fetch, named(KindBoards, opts)...)
}

// NewPostFeed returns a synchronizer over the posts of a board.
func NewPostFeed(c community.Client, opts ...listsync.Option) *listsync.Synchronizer[community.Post, PostQuery] {
	fetch := func(ctx context.Context, req listsync.Request[PostQuery]) (*listsync.Page[community.Post], error) {
		if req.Params.BoardID == 0 {
			return nil, fmt.Errorf("%w: board id", ErrMissingParam)
		}
		p, err := c.ListPosts(ctx, req.Params.BoardID, pageOptions(req.Cursor, req.PageSize))
		if err != nil {
			return nil, err
		}
		return toPage(p), nil
	}
	return listsync.New(fetch, named(KindPosts, opts)...)
}

// NewUserPostFeed returns a synchronizer over the posts written by a user.
func NewUserPostFeed(c community.Client, opts ...listsync.Option) *listsync.Synchronizer[community.Post, UserPostQuery] {
	fetch := func(ctx context.Context, req listsync.Request[UserPostQuery]) (*listsync.Page[community.Post], error) {
		if req.Params.UserID == "" {
			return nil, fmt.Errorf("%w: user id", ErrMissingParam)
		}
		p, err := c.ListUserPosts(ctx, req.Params.UserID, pageOptions(req.Cursor, req.PageSize))
		if err != nil {
			return nil, err
		}
		return toPage(p), nil
	}
	return listsync.New(fetch, named(KindUserPosts, opts)...)
}

// NewCommentFeed returns a synchronizer over the comments of a post.
func NewCommentFeed(c community.Client, opts ...listsync.Option) *listsync.Synchronizer[community.Comment, CommentQuery] {
	fetch := func(ctx context.Context, req listsync.Request[CommentQuery]) (*listsync.Page[community.Comment], error) {
		if req.Params.PostID == 0 {
			return nil, fmt.Errorf("%w: post id", ErrMissingParam)
		}
		p, err := c.ListComments(ctx, req.Params.PostID, pageOptions(req.Cursor, req.PageSize))
		if err != nil {
			return nil, err
		}
		return toPage(p), nil
	}
	return listsync.New(fetch, named(KindComments, opts)...)
}

// NewMemberFeed returns a synchronizer over the members of a group.
func NewMemberFeed(c community.Client, opts ...listsync.Option) *listsync.Synchronizer[community.GroupMember, MemberQuery] {
	fetch := func(ctx context.Context, req listsync.Request[MemberQuery]) (*listsync.Page[community.GroupMember], error) {
		if req.Params.GroupID == 0 {
			return nil, fmt.Errorf("%w: group id", ErrMissingParam)
		}
		p, err := c.ListGroupMembers(ctx, req.Params.GroupID, pageOptions(req.Cursor, req.PageSize))
		if err != nil {
			return nil, err
		}
		return toPage(p), nil
	}
	return listsync.New(fetch, named(KindMembers, opts)...)
}

// NewMessageSearch returns a timestamp-cursor synchronizer over chat search
// results, newest first. A blank keyword yields an empty list without
// calling the backend.
func NewMessageSearch(c community.Client, opts ...listsync.Option) *listsync.Synchronizer[community.ChatMessage, SearchQuery] {
	fetch := func(ctx context.Context, req listsync.Request[SearchQuery]) (*listsync.Page[community.ChatMessage], error) {
		keyword := strings.TrimSpace(req.Params.Keyword)
		if keyword == "" {
			return &listsync.Page[community.ChatMessage]{}, nil
		}
		if req.Params.ChatID == "" {
			return nil, fmt.Errorf("%w: chat id", ErrMissingParam)
		}
		p, err := c.SearchMessages(ctx, req.Params.ChatID, community.SearchOptions{
			Keyword: keyword,
			Before:  req.Cursor.Before,
			Limit:   req.PageSize,
		})
		if err != nil {
			return nil, err
		}
		return toPage(p), nil
	}
	return listsync.New(fetch, named(KindSearch, opts, listsync.WithTimestampCursor())...)
}
