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

// Package testutil provides common test helpers for listsync
package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirseerhq/listsync/internal/community"
	apperrors "github.com/sirseerhq/listsync/internal/errors"
)

// MockServer serves the community REST API from an in-memory dataset. Every
// route answers with the {code, message, data: {list, total}} envelope the
// real backend uses.
type MockServer struct {
	*httptest.Server

	// Data backs the responses. Tests may change its fields between runs.
	Data *community.MockClient

	// Token, when set, is the only bearer token accepted.
	Token string

	requests int32

	mu         sync.Mutex
	failNext   int
	failStatus int
	paths      []string
}

// NewMockServer starts a server over the mock client's sample dataset and
// closes it when the test ends.
func NewMockServer(t *testing.T) *MockServer {
	t.Helper()
	m := &MockServer{Data: community.NewMockClient()}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Close)
	return m
}

// FailNext makes the next n requests answer with status.
func (m *MockServer) FailNext(n, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
	m.failStatus = status
}

// RequestCount returns the number of requests received.
func (m *MockServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requests))
}

// Paths returns the request URIs received, in order.
func (m *MockServer) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

func (m *MockServer) serve(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requests, 1)

	m.mu.Lock()
	m.paths = append(m.paths, r.URL.RequestURI())
	if m.failNext > 0 {
		m.failNext--
		status := m.failStatus
		m.mu.Unlock()
		writeEnvelope(w, status, status, http.StatusText(status), nil)
		return
	}
	m.mu.Unlock()

	if m.Token != "" && r.Header.Get("Authorization") != "Bearer "+m.Token {
		writeEnvelope(w, http.StatusUnauthorized, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	page, err := m.dispatch(r)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeEnvelope(w, http.StatusOK, http.StatusNotFound, "not found", nil)
	case errors.Is(err, errBadRoute):
		writeEnvelope(w, http.StatusNotFound, http.StatusNotFound, "no such route", nil)
	case err != nil:
		writeEnvelope(w, http.StatusInternalServerError, http.StatusInternalServerError, err.Error(), nil)
	default:
		writeEnvelope(w, http.StatusOK, 0, "ok", page)
	}
}

var errBadRoute = errors.New("unknown route")

// listData is the data member of the envelope.
type listData struct {
	List  interface{} `json:"list"`
	Total *int        `json:"total,omitempty"`
}

func (m *MockServer) dispatch(r *http.Request) (*listData, error) {
	ctx := r.Context()
	q := r.URL.Query()
	opts := community.PageOptions{Page: intParam(q.Get("page")), PageSize: intParam(q.Get("pageSize"))}
	seg := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(seg) == 1 && seg[0] == "boards":
		return wrap(m.Data.ListBoards(ctx, opts))
	case len(seg) == 3 && seg[0] == "boards" && seg[2] == "posts":
		id, err := strconv.ParseInt(seg[1], 10, 64)
		if err != nil {
			return nil, errBadRoute
		}
		return wrap(m.Data.ListPosts(ctx, id, opts))
	case len(seg) == 3 && seg[0] == "users" && seg[2] == "posts":
		return wrap(m.Data.ListUserPosts(ctx, seg[1], opts))
	case len(seg) == 3 && seg[0] == "posts" && seg[2] == "comments":
		id, err := strconv.ParseInt(seg[1], 10, 64)
		if err != nil {
			return nil, errBadRoute
		}
		return wrap(m.Data.ListComments(ctx, id, opts))
	case len(seg) == 3 && seg[0] == "groups" && seg[2] == "members":
		id, err := strconv.ParseInt(seg[1], 10, 64)
		if err != nil {
			return nil, errBadRoute
		}
		return wrap(m.Data.ListGroupMembers(ctx, id, opts))
	case len(seg) == 4 && seg[0] == "chats" && seg[2] == "messages" && seg[3] == "search":
		before, _ := strconv.ParseInt(q.Get("before"), 10, 64)
		return wrap(m.Data.SearchMessages(ctx, seg[1], community.SearchOptions{
			Keyword: q.Get("keyword"),
			Before:  before,
			Limit:   intParam(q.Get("limit")),
		}))
	default:
		return nil, errBadRoute
	}
}

func wrap[T any](page *community.ListPage[T], err error) (*listData, error) {
	if err != nil {
		return nil, err
	}
	return &listData{List: page.Items, Total: page.Total}, nil
}

func intParam(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func writeEnvelope(w http.ResponseWriter, status, code int, message string, data *listData) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": message,
		"data":    data,
	})
}
