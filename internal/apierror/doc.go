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

// Package apierror classifies failures returned by the community API clients.
//
// Errors reach the synchronizer from several places: the REST transport,
// the GraphQL transport, the circuit breaker and plain network stacks. Each
// of them reports problems differently, so classification is layered. The
// sentinels from internal/errors are checked first with errors.Is, typed
// errors in the chain are consulted through IsXxx() bool methods, and the
// error text is inspected last.
//
// KindOf folds the result into one of a small set of kinds (network, server,
// parse, auth, not found, rate limit) that the CLI maps to exit codes and the
// retry client uses to decide whether another attempt can help.
package apierror
