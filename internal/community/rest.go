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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/listsync/internal/apierror"
	apperrors "github.com/sirseerhq/listsync/internal/errors"
)

// RESTClient implements Client against the JSON API. Every response is
// wrapped in an envelope:
//
//	{"code": 200, "message": "ok", "data": {"list": [...], "total": 42}}
//
// A code other than 0 or 200 is a failure even when the HTTP status is 200.
type RESTClient struct {
	endpoint *url.URL
	http     *http.Client
	breaker  *breaker
	log      *logrus.Entry
}

// NewRESTClient creates a client for the API rooted at endpoint, for
// example "https://api.example.com/v1".
func NewRESTClient(endpoint string, opts ...Option) (*RESTClient, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api endpoint %q", endpoint)
	}

	cfg := newClientConfig(opts)
	log := cfg.logger.WithField("transport", "rest")

	return &RESTClient{
		endpoint: u,
		http:     cfg.client(),
		breaker:  newBreaker("community-rest", cfg.breaker, log),
		log:      log,
	}, nil
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *struct {
		List  []T  `json:"list"`
		Total *int `json:"total"`
	} `json:"data"`
}

type searchQuery struct {
	Keyword string `url:"keyword"`
	Before  *int64 `url:"before,omitempty"`
	Limit   int    `url:"limit"`
}

// ListBoards implements Client.
func (c *RESTClient) ListBoards(ctx context.Context, opts PageOptions) (*ListPage[Board], error) {
	return restList[Board](ctx, c, "list boards", opts.normalized(), "boards")
}

// ListPosts implements Client.
func (c *RESTClient) ListPosts(ctx context.Context, boardID int64, opts PageOptions) (*ListPage[Post], error) {
	return restList[Post](ctx, c, "list posts", opts.normalized(), "boards", strconv.FormatInt(boardID, 10), "posts")
}

// ListUserPosts implements Client.
func (c *RESTClient) ListUserPosts(ctx context.Context, userID string, opts PageOptions) (*ListPage[Post], error) {
	return restList[Post](ctx, c, "list user posts", opts.normalized(), "users", userID, "posts")
}

// ListComments implements Client.
func (c *RESTClient) ListComments(ctx context.Context, postID int64, opts PageOptions) (*ListPage[Comment], error) {
	return restList[Comment](ctx, c, "list comments", opts.normalized(), "posts", strconv.FormatInt(postID, 10), "comments")
}

// ListGroupMembers implements Client.
func (c *RESTClient) ListGroupMembers(ctx context.Context, groupID int64, opts PageOptions) (*ListPage[GroupMember], error) {
	return restList[GroupMember](ctx, c, "list group members", opts.normalized(), "groups", strconv.FormatInt(groupID, 10), "members")
}

// SearchMessages implements Client.
func (c *RESTClient) SearchMessages(ctx context.Context, chatID string, opts SearchOptions) (*ListPage[ChatMessage], error) {
	opts = opts.normalized()
	q := searchQuery{Keyword: opts.Keyword, Limit: opts.Limit}
	if opts.bounded() {
		before := opts.Before
		q.Before = &before
	}
	return restList[ChatMessage](ctx, c, "search messages", q, "chats", chatID, "messages", "search")
}

// restList performs one GET through the breaker and decodes the envelope.
func restList[T any](ctx context.Context, c *RESTClient, op string, params interface{}, path ...string) (*ListPage[T], error) {
	values, err := query.Values(params)
	if err != nil {
		return nil, fmt.Errorf("%s: encode query: %w", op, err)
	}

	u := c.endpoint.JoinPath(path...)
	u.RawQuery = values.Encode()

	var page *ListPage[T]
	err = c.breaker.run(op, func() error {
		var callErr error
		page, callErr = getEnvelope[T](ctx, c, op, u.String())
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func getEnvelope[T any](ctx context.Context, c *RESTClient, op, target string) (*ListPage[T], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, mapTransportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, mapTransportError(op, err)
	}

	c.log.WithFields(logrus.Fields{
		"op":       op,
		"status":   resp.StatusCode,
		"bytes":    len(body),
		"duration": time.Since(start),
	}).Debug("api request")

	var env envelope[T]
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode != http.StatusOK {
		se := &apierror.StatusError{Op: op, Status: resp.StatusCode}
		if decodeErr == nil {
			se.Code = env.Code
			se.Message = env.Message
		}
		return nil, se
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrParse, decodeErr)
	}
	if env.Code != 0 && env.Code != http.StatusOK {
		return nil, &apierror.StatusError{Op: op, Code: env.Code, Message: env.Message}
	}

	page := &ListPage[T]{}
	if env.Data != nil {
		page.Items = env.Data.List
		page.Total = env.Data.Total
	}
	return page, nil
}

// mapTransportError classifies a failure that produced no usable response.
// Cancellation is passed through so callers can tell it from an outage.
func mapTransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, errResponseTooLarge) {
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrParse, err)
	}
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrNetworkFailure, err)
}
