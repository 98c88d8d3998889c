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
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/listsync/internal/community"
	"github.com/sirseerhq/listsync/internal/config"
	"github.com/sirseerhq/listsync/internal/logging"
)

// clientFactory builds the API client for a run.
type clientFactory func(cfg *config.Config, token string, log *logrus.Logger) (community.Client, error)

// buildClient creates the transport named in cfg, guarded by the rate
// limiter and circuit breaker, and wraps it with retries when enabled.
func buildClient(cfg *config.Config, token string, log *logrus.Logger) (community.Client, error) {
	opts := []community.Option{
		community.WithToken(token),
		community.WithTimeout(cfg.API.Timeout),
		community.WithRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		community.WithLogger(logging.WithComponent(log, "client")),
	}
	if cfg.Breaker.Enabled {
		opts = append(opts, community.WithBreaker(community.BreakerSettings{
			MaxRequests:  cfg.Breaker.MaxRequests,
			Interval:     cfg.Breaker.Interval,
			Timeout:      cfg.Breaker.Timeout,
			FailureRatio: cfg.Breaker.FailureRatio,
			MinRequests:  cfg.Breaker.MinRequests,
		}))
	} else {
		opts = append(opts, community.WithoutBreaker())
	}

	var base community.Client
	switch cfg.API.Transport {
	case config.TransportGraphQL:
		base = community.NewGraphQLClient(cfg.API.GraphQLEndpoint, opts...)
	case config.TransportREST, "":
		rest, err := community.NewRESTClient(cfg.API.Endpoint, opts...)
		if err != nil {
			return nil, err
		}
		base = rest
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.API.Transport)
	}

	if cfg.Retry.MaxRetries <= 0 {
		return base, nil
	}
	return community.NewRetryClient(base, &community.RetryConfig{
		MaxRetries:        cfg.Retry.MaxRetries,
		InitialBackoff:    cfg.Retry.InitialBackoff,
		MaxBackoff:        cfg.Retry.MaxBackoff,
		BackoffMultiplier: cfg.Retry.BackoffMultiplier,
	}, logging.WithComponent(log, "retry")), nil
}
