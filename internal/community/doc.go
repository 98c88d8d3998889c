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

// Package community provides clients for the chat/community backend: boards,
// posts, comments, group members and chat message search.
//
// Every list endpoint is paged. Board, post, comment and member lists take a
// 1-based page number; message search pages backwards in time with a
// "before" bound on the send time. The Client interface exposes both shapes
// so that each call can back a listsync.FetchFunc directly.
//
// Three implementations are provided:
//   - RESTClient talks to the JSON API, with a client-side rate limiter and
//     a circuit breaker in front of the network.
//   - GraphQLClient talks to the GraphQL gateway exposing the same lists.
//   - MockClient serves an in-memory dataset for tests.
//
// RetryClient wraps any of them with exponential backoff for failures that
// apierror.IsRetryable accepts.
package community
