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
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/sirseerhq/listsync/internal/errors"
)

// MockClient serves an in-memory dataset. Message search includes messages
// sent exactly at the Before bound, as the real backend does, so callers see
// boundary duplicates between pages.
type MockClient struct {
	mu sync.Mutex

	Boards   []Board
	Posts    []Post
	Comments []Comment
	Members  []GroupMember
	Messages []ChatMessage

	// Error to return
	Error error

	// Behavior flags
	ShouldFailAuth    bool
	ShouldFailNetwork bool

	// FailNext makes the next FailNext calls return FailErr.
	FailNext int
	FailErr  error

	// ReportTotals includes a total count in page-numbered results.
	ReportTotals bool

	// Track calls for verification
	CallCount  int
	LastOp     string
	LastPage   PageOptions
	LastSearch SearchOptions
}

var _ Client = (*MockClient)(nil)

// NewMockClient returns a mock holding a small sample dataset.
func NewMockClient() *MockClient {
	m := &MockClient{}
	m.Boards, m.Posts, m.Comments, m.Members, m.Messages = generateTestData()
	return m
}

// MockClientOption configures a MockClient
type MockClientOption func(*MockClient)

// WithBoards replaces the boards.
func WithBoards(b []Board) MockClientOption {
	return func(m *MockClient) { m.Boards = b }
}

// WithPosts replaces the posts.
func WithPosts(p []Post) MockClientOption {
	return func(m *MockClient) { m.Posts = p }
}

// WithComments replaces the comments.
func WithComments(c []Comment) MockClientOption {
	return func(m *MockClient) { m.Comments = c }
}

// WithMembers replaces the group members.
func WithMembers(gm []GroupMember) MockClientOption {
	return func(m *MockClient) { m.Members = gm }
}

// WithMessages replaces the chat messages.
func WithMessages(msgs []ChatMessage) MockClientOption {
	return func(m *MockClient) { m.Messages = msgs }
}

// WithError makes every call fail with err.
func WithError(err error) MockClientOption {
	return func(m *MockClient) { m.Error = err }
}

// WithAuthFailure makes every call fail authentication.
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) { m.ShouldFailAuth = true }
}

// WithTransientFailures makes the next n calls fail with err.
func WithTransientFailures(n int, err error) MockClientOption {
	return func(m *MockClient) {
		m.FailNext = n
		m.FailErr = err
	}
}

// WithTotals makes page-numbered results report a total count.
func WithTotals() MockClientOption {
	return func(m *MockClient) { m.ReportTotals = true }
}

// NewMockClientWithOptions creates a mock client with the given options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}

// Calls returns the number of calls made so far.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// begin records a call and returns the configured failure, if any.
// It must be called with m.mu held.
func (m *MockClient) begin(ctx context.Context, op string) error {
	m.CallCount++
	m.LastOp = op

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if m.FailNext > 0 {
		m.FailNext--
		return m.FailErr
	}
	if m.ShouldFailAuth {
		return fmt.Errorf("%s: authentication failed: %w", op, apperrors.ErrInvalidToken)
	}
	if m.ShouldFailNetwork {
		return fmt.Errorf("%s: network timeout: %w", op, apperrors.ErrNetworkFailure)
	}
	return m.Error
}

func paginate[T any](all []T, opts PageOptions, withTotal bool) *ListPage[T] {
	opts = opts.normalized()
	page := &ListPage[T]{Items: []T{}}
	if withTotal {
		n := len(all)
		page.Total = &n
	}

	start := (opts.Page - 1) * opts.PageSize
	if start >= len(all) {
		return page
	}
	end := start + opts.PageSize
	if end > len(all) {
		end = len(all)
	}
	page.Items = append(page.Items, all[start:end]...)
	return page
}

// ListBoards implements Client.
func (m *MockClient) ListBoards(ctx context.Context, opts PageOptions) (*ListPage[Board], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "list boards"); err != nil {
		return nil, err
	}
	m.LastPage = opts

	boards := append([]Board(nil), m.Boards...)
	sort.SliceStable(boards, func(i, j int) bool { return boards[i].ID < boards[j].ID })
	return paginate(boards, opts, m.ReportTotals), nil
}

// ListPosts implements Client.
func (m *MockClient) ListPosts(ctx context.Context, boardID int64, opts PageOptions) (*ListPage[Post], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "list posts"); err != nil {
		return nil, err
	}
	m.LastPage = opts

	if !m.hasBoard(boardID) {
		return nil, fmt.Errorf("list posts: board %d: %w", boardID, apperrors.ErrNotFound)
	}
	return paginate(m.postsWhere(func(p Post) bool { return p.BoardID == boardID }), opts, m.ReportTotals), nil
}

// ListUserPosts implements Client.
func (m *MockClient) ListUserPosts(ctx context.Context, userID string, opts PageOptions) (*ListPage[Post], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "list user posts"); err != nil {
		return nil, err
	}
	m.LastPage = opts

	return paginate(m.postsWhere(func(p Post) bool { return p.Author.ID == userID }), opts, m.ReportTotals), nil
}

// ListComments implements Client.
func (m *MockClient) ListComments(ctx context.Context, postID int64, opts PageOptions) (*ListPage[Comment], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "list comments"); err != nil {
		return nil, err
	}
	m.LastPage = opts

	var comments []Comment
	for _, c := range m.Comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].CreatedAt < comments[j].CreatedAt })
	return paginate(comments, opts, m.ReportTotals), nil
}

// ListGroupMembers implements Client.
func (m *MockClient) ListGroupMembers(ctx context.Context, groupID int64, opts PageOptions) (*ListPage[GroupMember], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "list group members"); err != nil {
		return nil, err
	}
	m.LastPage = opts

	var members []GroupMember
	for _, gm := range m.Members {
		if gm.GroupID == groupID {
			members = append(members, gm)
		}
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].JoinedAt < members[j].JoinedAt })
	return paginate(members, opts, m.ReportTotals), nil
}

// SearchMessages implements Client.
func (m *MockClient) SearchMessages(ctx context.Context, chatID string, opts SearchOptions) (*ListPage[ChatMessage], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(ctx, "search messages"); err != nil {
		return nil, err
	}
	m.LastSearch = opts

	opts = opts.normalized()
	keyword := strings.ToLower(opts.Keyword)

	var hits []ChatMessage
	for _, msg := range m.Messages {
		if msg.ChatID != chatID || msg.SendTime > opts.Before {
			continue
		}
		if !strings.Contains(strings.ToLower(msg.Content), keyword) {
			continue
		}
		hits = append(hits, msg)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].SendTime > hits[j].SendTime })

	if len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}
	return &ListPage[ChatMessage]{Items: append([]ChatMessage{}, hits...)}, nil
}

func (m *MockClient) hasBoard(id int64) bool {
	for _, b := range m.Boards {
		if b.ID == id {
			return true
		}
	}
	return false
}

// postsWhere returns the matching posts, newest first.
func (m *MockClient) postsWhere(match func(Post) bool) []Post {
	var posts []Post
	for _, p := range m.Posts {
		if match(p) {
			posts = append(posts, p)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt > posts[j].CreatedAt })
	return posts
}

func generateTestData() ([]Board, []Post, []Comment, []GroupMember, []ChatMessage) {
	const base = int64(1_735_689_600_000) // 2025-01-01T00:00:00Z in ms
	const minute = int64(60_000)

	alice := User{ID: "u-alice", Nickname: "alice"}
	bob := User{ID: "u-bob", Nickname: "bob"}
	carol := User{ID: "u-carol", Nickname: "carol"}

	boards := []Board{
		{ID: 1, Name: "General", Description: "Anything goes", PostCount: 3, CreatedAt: base},
		{ID: 2, Name: "Releases", Description: "Release announcements", PostCount: 1, CreatedAt: base + minute},
	}

	posts := []Post{
		{ID: 101, BoardID: 1, Title: "Welcome", Content: "Say hi", Author: alice, CommentCount: 2, CreatedAt: base + 10*minute},
		{ID: 102, BoardID: 1, Title: "Weekly sync notes", Content: "Agenda inside", Author: bob, CommentCount: 1, CreatedAt: base + 20*minute},
		{ID: 103, BoardID: 1, Title: "Office move", Content: "New floor plan", Author: alice, CreatedAt: base + 30*minute},
		{ID: 201, BoardID: 2, Title: "v1.2.0", Content: "Changelog", Author: carol, CreatedAt: base + 40*minute},
	}

	comments := []Comment{
		{ID: 1001, PostID: 101, Content: "hi!", Author: bob, CreatedAt: base + 11*minute},
		{ID: 1002, PostID: 101, ParentID: 1001, Content: "hello bob", Author: alice, CreatedAt: base + 12*minute},
		{ID: 1003, PostID: 102, Content: "thanks for the notes", Author: carol, CreatedAt: base + 21*minute},
	}

	members := []GroupMember{
		{GroupID: 7, User: alice, Role: RoleOwner, JoinedAt: base},
		{GroupID: 7, User: bob, Role: RoleAdmin, JoinedAt: base + minute},
		{GroupID: 7, User: carol, Role: RoleMember, JoinedAt: base + 2*minute},
	}

	messages := []ChatMessage{
		{ID: "m1", ChatID: "c-1", Sender: alice, Content: "deploy starts at noon", SendTime: base + 100*minute},
		{ID: "m2", ChatID: "c-1", Sender: bob, Content: "deploy finished", SendTime: base + 90*minute},
		{ID: "m3", ChatID: "c-1", Sender: carol, Content: "lunch?", SendTime: base + 90*minute},
		{ID: "m4", ChatID: "c-1", Sender: alice, Content: "rollback the deploy", SendTime: base + 80*minute},
		{ID: "m5", ChatID: "c-2", Sender: bob, Content: "deploy in other chat", SendTime: base + 70*minute},
	}

	return boards, posts, comments, members, messages
}
