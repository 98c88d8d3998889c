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

import "strconv"

// User is the public profile embedded in posts, comments and messages.
type User struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar,omitempty"`
}

// Board is a discussion board.
type Board struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PostCount   int    `json:"postCount"`
	CreatedAt   int64  `json:"createdAt"`
}

// Key implements listsync.Item.
func (b Board) Key() string { return strconv.FormatInt(b.ID, 10) }

// OrderKey implements listsync.Item.
func (b Board) OrderKey() int64 { return b.CreatedAt }

// Post is a post on a board.
type Post struct {
	ID           int64  `json:"id"`
	BoardID      int64  `json:"boardId"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Author       User   `json:"author"`
	CommentCount int    `json:"commentCount"`
	LikeCount    int    `json:"likeCount"`
	CreatedAt    int64  `json:"createdAt"`
}

// Key implements listsync.Item.
func (p Post) Key() string { return strconv.FormatInt(p.ID, 10) }

// OrderKey implements listsync.Item.
func (p Post) OrderKey() int64 { return p.CreatedAt }

// Comment is a comment on a post. ParentID is set on replies.
type Comment struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"postId"`
	ParentID  int64  `json:"parentId,omitempty"`
	Content   string `json:"content"`
	Author    User   `json:"author"`
	CreatedAt int64  `json:"createdAt"`
}

// Key implements listsync.Item.
func (c Comment) Key() string { return strconv.FormatInt(c.ID, 10) }

// OrderKey implements listsync.Item.
func (c Comment) OrderKey() int64 { return c.CreatedAt }

// GroupMember is a user's membership in a group. A user appears in a group
// at most once, so the user id is the key.
type GroupMember struct {
	GroupID  int64  `json:"groupId"`
	User     User   `json:"user"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
}

// Key implements listsync.Item.
func (m GroupMember) Key() string { return m.User.ID }

// OrderKey implements listsync.Item.
func (m GroupMember) OrderKey() int64 { return m.JoinedAt }

// ChatMessage is a message returned by chat search.
type ChatMessage struct {
	ID       string `json:"msgId"`
	ChatID   string `json:"chatId"`
	Sender   User   `json:"sender"`
	Content  string `json:"content"`
	SendTime int64  `json:"sendTime"`
}

// Key implements listsync.Item.
func (m ChatMessage) Key() string { return m.ID }

// OrderKey implements listsync.Item.
func (m ChatMessage) OrderKey() int64 { return m.SendTime }

// Group member roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)
