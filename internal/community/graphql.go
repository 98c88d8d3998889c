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
	"errors"
	"fmt"
	"strings"

	"github.com/shurcooL/graphql"
	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/listsync/internal/apierror"
	apperrors "github.com/sirseerhq/listsync/internal/errors"
)

// Long is the gateway's 64-bit integer scalar, used for ids and unix
// millisecond timestamps.
type Long int64

// GraphQLClient implements Client against the GraphQL gateway.
type GraphQLClient struct {
	client    *graphql.Client
	breaker   *breaker
	inspector apierror.Inspector
	log       *logrus.Entry
}

// NewGraphQLClient creates a client for the gateway at endpoint.
func NewGraphQLClient(endpoint string, opts ...Option) *GraphQLClient {
	cfg := newClientConfig(opts)
	log := cfg.logger.WithField("transport", "graphql")

	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, cfg.client()),
		breaker:   newBreaker("community-graphql", cfg.breaker, log),
		inspector: apierror.Default,
		log:       log,
	}
}

type gqlUser struct {
	ID       graphql.String
	Nickname graphql.String
	Avatar   graphql.String
}

func (u gqlUser) user() User {
	return User{ID: string(u.ID), Nickname: string(u.Nickname), Avatar: string(u.Avatar)}
}

type gqlPost struct {
	ID           Long
	BoardID      Long `graphql:"boardId"`
	Title        graphql.String
	Content      graphql.String
	Author       gqlUser
	CommentCount graphql.Int
	LikeCount    graphql.Int
	CreatedAt    Long
}

func (p gqlPost) post() Post {
	return Post{
		ID:           int64(p.ID),
		BoardID:      int64(p.BoardID),
		Title:        string(p.Title),
		Content:      string(p.Content),
		Author:       p.Author.user(),
		CommentCount: int(p.CommentCount),
		LikeCount:    int(p.LikeCount),
		CreatedAt:    int64(p.CreatedAt),
	}
}

func pageVariables(opts PageOptions) map[string]interface{} {
	opts = opts.normalized()
	return map[string]interface{}{
		"page":     graphql.Int(int32(opts.Page)),     // #nosec G115 - page numbers are small
		"pageSize": graphql.Int(int32(opts.PageSize)), // #nosec G115 - capped at MaxPageSize
	}
}

func total(t *graphql.Int) *int {
	if t == nil {
		return nil
	}
	n := int(*t)
	return &n
}

// ListBoards implements Client.
func (c *GraphQLClient) ListBoards(ctx context.Context, opts PageOptions) (*ListPage[Board], error) {
	var q struct {
		Boards struct {
			Total *graphql.Int
			Nodes []struct {
				ID          Long
				Name        graphql.String
				Description graphql.String
				PostCount   graphql.Int
				CreatedAt   Long
			}
		} `graphql:"boards(page: $page, pageSize: $pageSize)"`
	}

	if err := c.query(ctx, "list boards", &q, pageVariables(opts)); err != nil {
		return nil, err
	}

	page := &ListPage[Board]{Total: total(q.Boards.Total), Items: make([]Board, 0, len(q.Boards.Nodes))}
	for _, n := range q.Boards.Nodes {
		page.Items = append(page.Items, Board{
			ID:          int64(n.ID),
			Name:        string(n.Name),
			Description: string(n.Description),
			PostCount:   int(n.PostCount),
			CreatedAt:   int64(n.CreatedAt),
		})
	}
	return page, nil
}

// ListPosts implements Client.
func (c *GraphQLClient) ListPosts(ctx context.Context, boardID int64, opts PageOptions) (*ListPage[Post], error) {
	var q struct {
		Board struct {
			Posts struct {
				Total *graphql.Int
				Nodes []gqlPost
			} `graphql:"posts(page: $page, pageSize: $pageSize)"`
		} `graphql:"board(id: $id)"`
	}

	vars := pageVariables(opts)
	vars["id"] = Long(boardID)
	if err := c.query(ctx, "list posts", &q, vars); err != nil {
		return nil, err
	}
	return postPage(q.Board.Posts.Nodes, q.Board.Posts.Total), nil
}

// ListUserPosts implements Client.
func (c *GraphQLClient) ListUserPosts(ctx context.Context, userID string, opts PageOptions) (*ListPage[Post], error) {
	var q struct {
		User struct {
			Posts struct {
				Total *graphql.Int
				Nodes []gqlPost
			} `graphql:"posts(page: $page, pageSize: $pageSize)"`
		} `graphql:"user(id: $id)"`
	}

	vars := pageVariables(opts)
	vars["id"] = graphql.String(userID)
	if err := c.query(ctx, "list user posts", &q, vars); err != nil {
		return nil, err
	}
	return postPage(q.User.Posts.Nodes, q.User.Posts.Total), nil
}

func postPage(nodes []gqlPost, t *graphql.Int) *ListPage[Post] {
	page := &ListPage[Post]{Total: total(t), Items: make([]Post, 0, len(nodes))}
	for _, n := range nodes {
		page.Items = append(page.Items, n.post())
	}
	return page
}

// ListComments implements Client.
func (c *GraphQLClient) ListComments(ctx context.Context, postID int64, opts PageOptions) (*ListPage[Comment], error) {
	var q struct {
		Post struct {
			Comments struct {
				Total *graphql.Int
				Nodes []struct {
					ID        Long
					ParentID  *Long `graphql:"parentId"`
					Content   graphql.String
					Author    gqlUser
					CreatedAt Long
				}
			} `graphql:"comments(page: $page, pageSize: $pageSize)"`
		} `graphql:"post(id: $id)"`
	}

	vars := pageVariables(opts)
	vars["id"] = Long(postID)
	if err := c.query(ctx, "list comments", &q, vars); err != nil {
		return nil, err
	}

	nodes := q.Post.Comments.Nodes
	page := &ListPage[Comment]{Total: total(q.Post.Comments.Total), Items: make([]Comment, 0, len(nodes))}
	for _, n := range nodes {
		cm := Comment{
			ID:        int64(n.ID),
			PostID:    postID,
			Content:   string(n.Content),
			Author:    n.Author.user(),
			CreatedAt: int64(n.CreatedAt),
		}
		if n.ParentID != nil {
			cm.ParentID = int64(*n.ParentID)
		}
		page.Items = append(page.Items, cm)
	}
	return page, nil
}

// ListGroupMembers implements Client.
func (c *GraphQLClient) ListGroupMembers(ctx context.Context, groupID int64, opts PageOptions) (*ListPage[GroupMember], error) {
	var q struct {
		Group struct {
			Members struct {
				Total *graphql.Int
				Nodes []struct {
					User     gqlUser
					Role     graphql.String
					JoinedAt Long
				}
			} `graphql:"members(page: $page, pageSize: $pageSize)"`
		} `graphql:"group(id: $id)"`
	}

	vars := pageVariables(opts)
	vars["id"] = Long(groupID)
	if err := c.query(ctx, "list group members", &q, vars); err != nil {
		return nil, err
	}

	nodes := q.Group.Members.Nodes
	page := &ListPage[GroupMember]{Total: total(q.Group.Members.Total), Items: make([]GroupMember, 0, len(nodes))}
	for _, n := range nodes {
		page.Items = append(page.Items, GroupMember{
			GroupID:  groupID,
			User:     n.User.user(),
			Role:     string(n.Role),
			JoinedAt: int64(n.JoinedAt),
		})
	}
	return page, nil
}

// SearchMessages implements Client.
func (c *GraphQLClient) SearchMessages(ctx context.Context, chatID string, opts SearchOptions) (*ListPage[ChatMessage], error) {
	var q struct {
		SearchMessages struct {
			Nodes []struct {
				MsgID    graphql.String `graphql:"msgId"`
				Sender   gqlUser
				Content  graphql.String
				SendTime Long
			}
		} `graphql:"searchMessages(chatId: $chatId, keyword: $keyword, before: $before, limit: $limit)"`
	}

	opts = opts.normalized()
	var before *Long
	if opts.bounded() {
		b := Long(opts.Before)
		before = &b
	}
	vars := map[string]interface{}{
		"chatId":  graphql.String(chatID),
		"keyword": graphql.String(opts.Keyword),
		"before":  before,
		"limit":   graphql.Int(int32(opts.Limit)), // #nosec G115 - capped at MaxPageSize
	}
	if err := c.query(ctx, "search messages", &q, vars); err != nil {
		return nil, err
	}

	nodes := q.SearchMessages.Nodes
	page := &ListPage[ChatMessage]{Items: make([]ChatMessage, 0, len(nodes))}
	for _, n := range nodes {
		page.Items = append(page.Items, ChatMessage{
			ID:       string(n.MsgID),
			ChatID:   chatID,
			Sender:   n.Sender.user(),
			Content:  string(n.Content),
			SendTime: int64(n.SendTime),
		})
	}
	return page, nil
}

func (c *GraphQLClient) query(ctx context.Context, op string, q interface{}, vars map[string]interface{}) error {
	err := c.breaker.run(op, func() error {
		if err := c.client.Query(ctx, q, vars); err != nil {
			return c.mapError(op, err)
		}
		return nil
	})
	if err != nil {
		c.log.WithField("op", op).WithError(err).Debug("graphql query failed")
	}
	return err
}

// mapError attaches a sentinel to a gateway error so that it classifies the
// same way as the REST transport's errors.
func (c *GraphQLClient) mapError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if status := gatewayStatus(err); status != 0 {
		return &apierror.StatusError{Op: op, Status: status}
	}
	if errors.Is(err, errResponseTooLarge) {
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrParse, err)
	}

	// Check rate limit first, as 403 can be both auth and rate limit
	switch {
	case c.inspector.IsRateLimitError(err):
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrRateLimit, err)
	case c.inspector.IsAuthError(err):
		return fmt.Errorf("%s: %w. Provide a valid token via --token or LISTSYNC_TOKEN: %w", op, apperrors.ErrInvalidToken, err)
	case c.inspector.IsNotFoundError(err):
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrNotFound, err)
	case c.inspector.IsNetworkError(err):
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrNetworkFailure, err)
	case c.inspector.IsParseError(err):
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrParse, err)
	default:
		// Anything else was reported by the gateway itself.
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrServer, err)
	}
}

// gatewayStatus extracts the HTTP status from the error the graphql package
// returns for non-200 responses, or 0 when err is not such an error.
func gatewayStatus(err error) int {
	const marker = "non-200 OK status code: "
	msg := err.Error()
	i := strings.Index(msg, marker)
	if i < 0 {
		return 0
	}
	var status int
	if _, scanErr := fmt.Sscanf(msg[i+len(marker):], "%d", &status); scanErr != nil {
		return 0
	}
	return status
}
