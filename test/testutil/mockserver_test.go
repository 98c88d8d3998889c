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

package testutil

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/sirseerhq/listsync/internal/community"
	apperrors "github.com/sirseerhq/listsync/internal/errors"
)

func newRESTClient(t *testing.T, server *MockServer, token string) *community.RESTClient {
	t.Helper()
	client, err := community.NewRESTClient(server.URL, community.WithToken(token), community.WithoutBreaker())
	if err != nil {
		t.Fatalf("NewRESTClient failed: %v", err)
	}
	return client
}

func TestMockServer_Routes(t *testing.T) {
	server := NewMockServer(t)
	client := newRESTClient(t, server, "")
	ctx := context.Background()

	boards, err := client.ListBoards(ctx, community.PageOptions{})
	if err != nil || len(boards.Items) != 2 {
		t.Fatalf("ListBoards = %v, %v; want 2 boards", boards, err)
	}

	posts, err := client.ListPosts(ctx, 1, community.PageOptions{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts.Items) != 1 || posts.Items[0].ID != 101 {
		t.Errorf("page 2 of board 1 = %+v, want post 101", posts.Items)
	}

	comments, err := client.ListComments(ctx, 101, community.PageOptions{})
	if err != nil || len(comments.Items) != 2 {
		t.Errorf("ListComments = %v, %v; want 2 comments", comments, err)
	}

	members, err := client.ListGroupMembers(ctx, 7, community.PageOptions{})
	if err != nil || len(members.Items) != 3 {
		t.Errorf("ListGroupMembers = %v, %v; want 3 members", members, err)
	}

	hits, err := client.SearchMessages(ctx, "c-1", community.SearchOptions{Keyword: "deploy", Limit: 2})
	if err != nil {
		t.Fatalf("SearchMessages failed: %v", err)
	}
	if len(hits.Items) != 2 || hits.Items[0].ID != "m1" {
		t.Errorf("search hits = %+v, want m1 first", hits.Items)
	}

	paths := server.Paths()
	if len(paths) != 5 {
		t.Fatalf("server saw %d requests, want 5", len(paths))
	}
	if !strings.HasPrefix(paths[1], "/boards/1/posts?") || !strings.Contains(paths[1], "page=2") {
		t.Errorf("posts request = %q", paths[1])
	}
	if strings.Contains(paths[4], "before=") {
		t.Errorf("unbounded search sent a before bound: %q", paths[4])
	}
}

func TestMockServer_NotFound(t *testing.T) {
	server := NewMockServer(t)
	client := newRESTClient(t, server, "")

	_, err := client.ListPosts(context.Background(), 42, community.PageOptions{})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("ListPosts(42) error = %v, want ErrNotFound", err)
	}
}

func TestMockServer_Token(t *testing.T) {
	server := NewMockServer(t)
	server.Token = "secret"

	_, err := newRESTClient(t, server, "wrong").ListBoards(context.Background(), community.PageOptions{})
	if !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("wrong token error = %v, want ErrInvalidToken", err)
	}

	if _, err := newRESTClient(t, server, "secret").ListBoards(context.Background(), community.PageOptions{}); err != nil {
		t.Errorf("valid token failed: %v", err)
	}
}

func TestMockServer_FailNext(t *testing.T) {
	server := NewMockServer(t)
	server.FailNext(2, http.StatusServiceUnavailable)
	client := newRESTClient(t, server, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := client.ListBoards(ctx, community.PageOptions{}); !errors.Is(err, apperrors.ErrServer) {
			t.Errorf("request %d error = %v, want ErrServer", i+1, err)
		}
	}
	if _, err := client.ListBoards(ctx, community.PageOptions{}); err != nil {
		t.Errorf("request after failures: %v", err)
	}
	if server.RequestCount() != 3 {
		t.Errorf("RequestCount = %d, want 3", server.RequestCount())
	}
}
