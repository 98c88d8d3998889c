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
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirseerhq/listsync/internal/apierror"
	apperrors "github.com/sirseerhq/listsync/internal/errors"
	"github.com/sirseerhq/listsync/internal/listsync"
)

func newTestREST(t *testing.T, handler http.HandlerFunc, opts ...Option) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewRESTClient(srv.URL+"/v1", append([]Option{WithToken("secret"), WithoutBreaker()}, opts...)...)
	if err != nil {
		t.Fatalf("NewRESTClient() error = %v", err)
	}
	return client
}

func TestNewRESTClient(t *testing.T) {
	tests := []struct {
		endpoint string
		wantErr  bool
	}{
		{"https://api.example.com/v1", false},
		{"http://localhost:8080", false},
		{"api.example.com", true},
		{"", true},
		{"://bad", true},
	}

	for _, tt := range tests {
		_, err := NewRESTClient(tt.endpoint)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewRESTClient(%q) error = %v, wantErr %v", tt.endpoint, err, tt.wantErr)
		}
	}
}

func TestRESTClient_ListPosts(t *testing.T) {
	client := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/12/posts" {
			t.Errorf("path = %q, want /v1/boards/12/posts", r.URL.Path)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %q, want 2", got)
		}
		if got := r.URL.Query().Get("pageSize"); got != "10" {
			t.Errorf("pageSize = %q, want 10", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{"code":200,"message":"ok","data":{"total":12,"list":[
			{"id":5,"boardId":12,"title":"hello","author":{"id":"u1","nickname":"ann"},"createdAt":1700000000000},
			{"id":4,"boardId":12,"title":"older","author":{"id":"u2","nickname":"ben"},"createdAt":1690000000000}
		]}}`)
	})

	page, err := client.ListPosts(context.Background(), 12, PageOptions{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("got %d posts, want 2", len(page.Items))
	}
	if page.Items[0].Title != "hello" || page.Items[0].Author.Nickname != "ann" {
		t.Errorf("first post = %+v", page.Items[0])
	}
	if page.Total == nil || *page.Total != 12 {
		t.Errorf("Total = %v, want 12", page.Total)
	}
}

func TestRESTClient_Paths(t *testing.T) {
	var gotPath atomic.Value
	client := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		fmt.Fprint(w, `{"code":0,"data":{"list":[]}}`)
	})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"boards", func() error { _, err := client.ListBoards(ctx, PageOptions{}); return err }, "/v1/boards"},
		{"user posts", func() error { _, err := client.ListUserPosts(ctx, "u-9", PageOptions{}); return err }, "/v1/users/u-9/posts"},
		{"comments", func() error { _, err := client.ListComments(ctx, 77, PageOptions{}); return err }, "/v1/posts/77/comments"},
		{"members", func() error { _, err := client.ListGroupMembers(ctx, 3, PageOptions{}); return err }, "/v1/groups/3/members"},
		{"search", func() error { _, err := client.SearchMessages(ctx, "c-1", SearchOptions{Keyword: "x"}); return err }, "/v1/chats/c-1/messages/search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if got := gotPath.Load(); got != tt.want {
				t.Errorf("path = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestRESTClient_SearchMessagesQuery(t *testing.T) {
	tests := []struct {
		name       string
		opts       SearchOptions
		wantBefore string
		wantLimit  string
	}{
		{name: "unbounded", opts: SearchOptions{Keyword: "deploy", Before: listsync.Infinity, Limit: 30}, wantBefore: "", wantLimit: "30"},
		{name: "zero before is unbounded", opts: SearchOptions{Keyword: "deploy"}, wantBefore: "", wantLimit: "20"},
		{name: "bounded", opts: SearchOptions{Keyword: "deploy", Before: 1700000000000, Limit: 500}, wantBefore: "1700000000000", wantLimit: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if got := q.Get("keyword"); got != "deploy" {
					t.Errorf("keyword = %q", got)
				}
				if _, ok := q["before"]; ok != (tt.wantBefore != "") {
					t.Errorf("before present = %v, want %v", ok, tt.wantBefore != "")
				}
				if got := q.Get("before"); got != tt.wantBefore {
					t.Errorf("before = %q, want %q", got, tt.wantBefore)
				}
				if got := q.Get("limit"); got != tt.wantLimit {
					t.Errorf("limit = %q, want %q", got, tt.wantLimit)
				}
				fmt.Fprint(w, `{"code":200,"data":{"list":[{"msgId":"m1","chatId":"c-1","content":"deploy","sendTime":5}]}}`)
			})

			page, err := client.SearchMessages(context.Background(), "c-1", tt.opts)
			if err != nil {
				t.Fatalf("SearchMessages() error = %v", err)
			}
			if len(page.Items) != 1 || page.Items[0].Key() != "m1" || page.Items[0].OrderKey() != 5 {
				t.Errorf("items = %+v", page.Items)
			}
			if page.Total != nil {
				t.Errorf("Total = %v, want nil", *page.Total)
			}
		})
	}
}

func TestRESTClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		kind     apierror.Kind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"code":401,"message":"token expired"}`, apperrors.ErrInvalidToken, apierror.KindAuth},
		{"not found", http.StatusNotFound, `not found`, apperrors.ErrNotFound, apierror.KindNotFound},
		{"throttled", http.StatusTooManyRequests, ``, apperrors.ErrRateLimit, apierror.KindRateLimit},
		{"server failure", http.StatusInternalServerError, `<html>oops</html>`, apperrors.ErrServer, apierror.KindServer},
		{"envelope failure", http.StatusOK, `{"code":1001,"message":"invalid board"}`, apperrors.ErrServer, apierror.KindServer},
		{"malformed body", http.StatusOK, `{"code":200,"data":{"list":[{"id":"not-a-number"}]}}`, apperrors.ErrParse, apierror.KindParse},
		{"truncated body", http.StatusOK, `{"code":200,"data":`, apperrors.ErrParse, apierror.KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.ListBoards(context.Background(), PageOptions{})
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
			if got := apierror.KindOf(err); got != tt.kind {
				t.Errorf("KindOf() = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestRESTClient_EnvelopeMessage(t *testing.T) {
	client := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":1001,"message":"invalid board"}`)
	})

	_, err := client.ListPosts(context.Background(), 1, PageOptions{})

	var se *apierror.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error %v is not a StatusError", err)
	}
	if se.Code != 1001 || se.Message != "invalid board" || se.Op != "list posts" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestRESTClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewRESTClient(url, WithoutBreaker(), WithTimeout(time.Second))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.ListBoards(context.Background(), PageOptions{})
	if !errors.Is(err, apperrors.ErrNetworkFailure) {
		t.Errorf("error = %v, want ErrNetworkFailure", err)
	}
	if !apierror.IsRetryable(err) {
		t.Error("network failure should be retryable")
	}
}

func TestRESTClient_OversizedResponse(t *testing.T) {
	var hits atomic.Int32
	client := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"code":0,"data":{"list":["`)
		fmt.Fprint(w, strings.Repeat("x", maxResponseBytes))
		fmt.Fprint(w, `"]}}`)
	}, WithBreaker(BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.ListBoards(ctx, PageOptions{})
		if !errors.Is(err, apperrors.ErrParse) {
			t.Fatalf("call %d error = %v, want ErrParse", i, err)
		}
		if errors.Is(err, apperrors.ErrNetworkFailure) {
			t.Fatalf("call %d: oversized body reported as a network failure", i)
		}
		if apierror.IsRetryable(err) {
			t.Fatalf("call %d: oversized body should not be retried", i)
		}
	}
	if hits.Load() != 3 {
		t.Errorf("server saw %d requests, want 3; the breaker must stay closed", hits.Load())
	}
}

func TestRESTClient_CanceledContext(t *testing.T) {
	client := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListBoards(ctx, PageOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if errors.Is(err, apperrors.ErrNetworkFailure) {
		t.Error("cancellation must not be reported as a network failure")
	}
}

func TestRESTClient_CircuitBreaker(t *testing.T) {
	var hits atomic.Int32
	client := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithBreaker(BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.ListBoards(ctx, PageOptions{}); !errors.Is(err, apperrors.ErrServer) {
			t.Fatalf("call %d error = %v, want ErrServer", i, err)
		}
	}

	_, err := client.ListBoards(ctx, PageOptions{})
	if !errors.Is(err, apperrors.ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server saw %d requests, want 2", hits.Load())
	}
	if apierror.KindOf(err) != apierror.KindNetwork {
		t.Errorf("KindOf(open circuit) = %q, want network", apierror.KindOf(err))
	}
}

func TestRESTClient_RequestFailuresDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	client := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"code":1001,"message":"invalid board"}`)
	}, WithBreaker(BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}))

	for i := 0; i < 5; i++ {
		_, err := client.ListPosts(context.Background(), 1, PageOptions{})
		if errors.Is(err, apperrors.ErrCircuitOpen) {
			t.Fatalf("call %d: breaker opened on request errors", i)
		}
	}
	if hits.Load() != 5 {
		t.Errorf("server saw %d requests, want 5", hits.Load())
	}
}
