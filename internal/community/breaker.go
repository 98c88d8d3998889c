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
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/sirseerhq/listsync/internal/apierror"
	apperrors "github.com/sirseerhq/listsync/internal/errors"
)

// BreakerSettings configures the circuit breaker. The breaker opens once at
// least MinRequests calls were made in the current Interval and the share of
// failures reaches FailureRatio. After Timeout it lets MaxRequests probe
// calls through.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerSettings returns the settings used unless overridden.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	}
}

// breaker runs calls through a gobreaker.CircuitBreaker. A nil breaker runs
// calls directly.
type breaker struct {
	cb *gobreaker.CircuitBreaker
}

// breakerFailure reports whether err says something about backend health.
// Rejected requests, bad input and cancellations do not count.
func breakerFailure(err error) bool {
	return apierror.IsRetryable(err) && !apierror.Default.IsRateLimitError(err)
}

func newBreaker(name string, s *BreakerSettings, log *logrus.Entry) *breaker {
	if s == nil {
		return nil
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return !breakerFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	return &breaker{cb: cb}
}

func (b *breaker) run(op string, call func() error) error {
	if b == nil {
		return call()
	}

	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, call()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrCircuitOpen)
	}
	return err
}

// state returns the breaker state for logs and tests.
func (b *breaker) state() gobreaker.State {
	if b == nil {
		return gobreaker.StateClosed
	}
	return b.cb.State()
}
