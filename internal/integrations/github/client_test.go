// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/tracker"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gh := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	gh.BaseURL = base
	return &Client{client: gh, logger: zap.NewNop()}
}

var issue12 = tracker.Reference{Project: "acme/api", Kind: tracker.KindIssue, IID: 12}

func TestCommentValidation(t *testing.T) {
	client := &Client{client: nil} // nil client for validation testing

	err := client.Comment(context.Background(), issue12, "")
	if err == nil {
		t.Error("Expected error for empty comment body")
	}

	err = client.Comment(context.Background(), issue12, "   ")
	if err == nil {
		t.Error("Expected error for whitespace-only comment body")
	}
}

func TestMergeRequestsUnsupported(t *testing.T) {
	client := &Client{client: nil}
	mr := tracker.Reference{Project: "acme/api", Kind: tracker.KindMergeRequest, IID: 3}

	if _, err := client.CurrentAssignee(context.Background(), mr); !errors.Is(err, tracker.ErrUnsupported) {
		t.Errorf("CurrentAssignee: expected ErrUnsupported, got %v", err)
	}
	if err := client.Assign(context.Background(), mr, "bob"); !errors.Is(err, tracker.ErrUnsupported) {
		t.Errorf("Assign: expected ErrUnsupported, got %v", err)
	}
}

func TestSplitRepo(t *testing.T) {
	tests := []struct {
		name       string
		project    string
		shouldFail bool
	}{
		{"valid format", "owner/repo", false},
		{"missing slash", "ownerrepo", true},
		{"empty owner", "/repo", true},
		{"empty repo", "owner/", true},
		{"empty string", "", true},
		{"too many slashes", "owner/repo/extra", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := splitRepo(tt.project)
			if tt.shouldFail && err == nil {
				t.Errorf("Expected error for project=%q", tt.project)
			}
			if !tt.shouldFail && err != nil {
				t.Errorf("Unexpected error for project=%q: %v", tt.project, err)
			}
		})
	}
}

func TestMembersPaginates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/api/collaborators" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id":3,"login":"carol"}]`)
			return
		}
		w.Header().Set("Link", `<`+"http://"+r.Host+`/repos/acme/api/collaborators?page=2>; rel="next"`)
		fmt.Fprint(w, `[{"id":1,"login":"alice"},{"id":2,"login":"bob"}]`)
	})

	members, err := client.Members(context.Background(), "acme/api")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 3 || members[2].Username != "carol" {
		t.Errorf("unexpected members: %+v", members)
	}
}

func TestCurrentAssigneeAndAssign(t *testing.T) {
	edits := make(chan string, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/acme/api/issues/12":
			fmt.Fprint(w, `{"number":12,"assignee":{"login":"alice"}}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/repos/acme/api/issues/12":
			b, _ := io.ReadAll(r.Body)
			edits <- string(b)
			fmt.Fprint(w, `{"number":12}`)
		case r.Method == http.MethodPost && r.URL.Path == "/repos/acme/api/issues/12/comments":
			fmt.Fprint(w, `{"id":1}`)
		default:
			http.NotFound(w, r)
		}
	})

	got, err := client.CurrentAssignee(context.Background(), issue12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alice" {
		t.Errorf("got %q, want alice", got)
	}

	if err := client.Assign(context.Background(), issue12, "bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body := <-edits; !strings.Contains(body, `"assignees":["bob"]`) {
		t.Errorf("unexpected edit body %s", body)
	}

	if err := client.Comment(context.Background(), issue12, "done"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user" {
			fmt.Fprint(w, `{"login":"monitor-bot"}`)
			return
		}
		http.NotFound(w, r)
	})

	if err := client.Health(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client, err := NewClient(context.Background(), "ghp-test", srv.URL, 100*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	start := time.Now()
	if _, err := client.CurrentAssignee(context.Background(), issue12); err == nil {
		t.Fatal("expected timeout error from unresponsive server")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("request not bounded by timeout, took %s", elapsed)
	}
}
