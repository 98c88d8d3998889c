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

package main

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sirseerhq/listsync/internal/community"
	"github.com/sirseerhq/listsync/internal/feeds"
	"github.com/sirseerhq/listsync/internal/output"
)

// columnsFor returns the table layout for a feed kind.
func columnsFor(kind feeds.Kind) []output.Column {
	switch kind {
	case feeds.KindBoards:
		return []output.Column{
			{Header: "ID", Field: "id"},
			{Header: "NAME", Field: "name"},
			{Header: "POSTS", Formatter: func(r interface{}) string {
				return humanize.Comma(int64(r.(community.Board).PostCount))
			}},
			{Header: "CREATED", Formatter: func(r interface{}) string {
				return since(r.(community.Board).CreatedAt)
			}},
		}
	case feeds.KindPosts, feeds.KindUserPosts:
		return []output.Column{
			{Header: "ID", Field: "id"},
			{Header: "BOARD", Field: "boardId"},
			{Header: "TITLE", Field: "title"},
			{Header: "AUTHOR", Field: "author.nickname"},
			{Header: "COMMENTS", Field: "commentCount"},
			{Header: "LIKES", Field: "likeCount"},
			{Header: "CREATED", Formatter: func(r interface{}) string {
				return since(r.(community.Post).CreatedAt)
			}},
		}
	case feeds.KindComments:
		return []output.Column{
			{Header: "ID", Field: "id"},
			{Header: "PARENT", Field: "parentId"},
			{Header: "AUTHOR", Field: "author.nickname"},
			{Header: "CONTENT", Field: "content"},
			{Header: "CREATED", Formatter: func(r interface{}) string {
				return since(r.(community.Comment).CreatedAt)
			}},
		}
	case feeds.KindMembers:
		return []output.Column{
			{Header: "USER", Field: "user.id"},
			{Header: "NICKNAME", Field: "user.nickname"},
			{Header: "ROLE", Field: "role"},
			{Header: "JOINED", Formatter: func(r interface{}) string {
				return since(r.(community.GroupMember).JoinedAt)
			}},
		}
	case feeds.KindSearch:
		return []output.Column{
			{Header: "ID", Field: "msgId"},
			{Header: "SENDER", Field: "sender.nickname"},
			{Header: "CONTENT", Field: "content"},
			{Header: "SENT", Formatter: func(r interface{}) string {
				return since(r.(community.ChatMessage).SendTime)
			}},
		}
	default:
		return nil
	}
}

// since renders a unix-millisecond timestamp relative to now.
func since(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return humanize.Time(time.UnixMilli(ms))
}
