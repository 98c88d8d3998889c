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
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/listsync/internal/apierror"
	"github.com/sirseerhq/listsync/internal/logging"
)

// RetryConfig holds configuration for retry behavior
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts
	MaxRetries int
	// InitialBackoff is the initial backoff duration
	InitialBackoff time.Duration
	// MaxBackoff is the maximum backoff duration
	MaxBackoff time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// backoffJitter spreads each wait by up to 10% either way.
const backoffJitter = 0.1

// RetryClient wraps a Client and retries failures that apierror.IsRetryable
// accepts, backing off exponentially with jitter between attempts.
type RetryClient struct {
	client Client
	config *RetryConfig
	log    *logrus.Entry

	// newTimer supplies the wait timer for one call; nil uses a real timer.
	// Tests replace it.
	newTimer func() backoff.Timer
}

// NewRetryClient creates a new client with retry logic. A nil config uses
// DefaultRetryConfig and a nil logger discards output.
func NewRetryClient(client Client, config *RetryConfig, log *logrus.Entry) *RetryClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &RetryClient{
		client: client,
		config: config,
		log:    log,
	}
}

// ListBoards implements Client.
func (r *RetryClient) ListBoards(ctx context.Context, opts PageOptions) (*ListPage[Board], error) {
	return withRetry(ctx, r, "list boards", func() (*ListPage[Board], error) {
		return r.client.ListBoards(ctx, opts)
	})
}

// ListPosts implements Client.
func (r *RetryClient) ListPosts(ctx context.Context, boardID int64, opts PageOptions) (*ListPage[Post], error) {
	return withRetry(ctx, r, "list posts", func() (*ListPage[Post], error) {
		return r.client.ListPosts(ctx, boardID, opts)
	})
}

// ListUserPosts implements Client.
func (r *RetryClient) ListUserPosts(ctx context.Context, userID string, opts PageOptions) (*ListPage[Post], error) {
	return withRetry(ctx, r, "list user posts", func() (*ListPage[Post], error) {
		return r.client.ListUserPosts(ctx, userID, opts)
	})
}

// ListComments implements Client.
func (r *RetryClient) ListComments(ctx context.Context, postID int64, opts PageOptions) (*ListPage[Comment], error) {
	return withRetry(ctx, r, "list comments", func() (*ListPage[Comment], error) {
		return r.client.ListComments(ctx, postID, opts)
	})
}

// ListGroupMembers implements Client.
func (r *RetryClient) ListGroupMembers(ctx context.Context, groupID int64, opts PageOptions) (*ListPage[GroupMember], error) {
	return withRetry(ctx, r, "list group members", func() (*ListPage[GroupMember], error) {
		return r.client.ListGroupMembers(ctx, groupID, opts)
	})
}

// SearchMessages implements Client.
func (r *RetryClient) SearchMessages(ctx context.Context, chatID string, opts SearchOptions) (*ListPage[ChatMessage], error) {
	return withRetry(ctx, r, "search messages", func() (*ListPage[ChatMessage], error) {
		return r.client.SearchMessages(ctx, chatID, opts)
	})
}

// newBackOff builds the exponential schedule for one call. Waits grow from
// InitialBackoff by BackoffMultiplier up to MaxBackoff, each jittered.
func (r *RetryClient) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.config.InitialBackoff
	b.MaxInterval = r.config.MaxBackoff
	b.Multiplier = r.config.BackoffMultiplier
	b.RandomizationFactor = backoffJitter
	// Attempts are bounded by MaxRetries alone.
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func withRetry[T any](ctx context.Context, r *RetryClient, op string, call func() (*ListPage[T], error)) (*ListPage[T], error) {
	var (
		page     *ListPage[T]
		attempts int
	)
	operation := func() error {
		attempts++
		p, err := call()
		if err != nil {
			// Don't retry on non-retryable errors
			if !apierror.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		page = p
		return nil
	}

	notify := func(err error, wait time.Duration) {
		r.log.WithFields(logrus.Fields{
			"op":      op,
			"kind":    apierror.KindOf(err),
			"attempt": attempts,
			"max":     r.config.MaxRetries,
			"backoff": wait,
		}).WithError(err).Warn("retrying request")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.config.MaxRetries)), ctx)

	var timer backoff.Timer
	if r.newTimer != nil {
		timer = r.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(operation, policy, notify, timer)
	switch {
	case err == nil:
		return page, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case attempts > r.config.MaxRetries && apierror.IsRetryable(err):
		return nil, fmt.Errorf("failed after %d retries: %w", r.config.MaxRetries, err)
	default:
		return nil, err
	}
}
