package comments_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kektor/gallery-images/internal/comments"
)

func TestHTTPClient_DeleteForImage(t *testing.T) {
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := comments.NewHTTPClient(srv.URL, time.Second)
	if err := client.DeleteForImage(context.Background(), 42); err != nil {
		t.Fatalf("DeleteForImage() error = %v", err)
	}

	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
	if gotPath != "/api/comments/image/42" {
		t.Errorf("path = %q, want /api/comments/image/42", gotPath)
	}
}

func TestHTTPClient_DeleteForImage_Upstream5xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client := comments.NewHTTPClient(srv.URL, time.Second)
	if err := client.DeleteForImage(context.Background(), 42); !errors.Is(err, comments.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
}

func TestHTTPClient_DeleteForImage_ConnectionFailure(t *testing.T) {
	client := comments.NewHTTPClient("http://127.0.0.1:1", 100*time.Millisecond)
	if err := client.DeleteForImage(context.Background(), 42); !errors.Is(err, comments.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
}
