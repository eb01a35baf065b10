package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kektor/gallery-images/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()

	handlers.RespondJSON(w, 201, map[string]int{"id": 7})

	if w.Code != 201 {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}

	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q is not JSON: %v", w.Body.String(), err)
	}
	if body["id"] != 7 {
		t.Errorf("body = %v, want id 7", body)
	}
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handlers.RespondError(w, logger, 404, errors.New("image not found"))

	if w.Code != 404 {
		t.Errorf("status = %d, want 404", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q is not JSON: %v", w.Body.String(), err)
	}
	if body["error"] != "image not found" {
		t.Errorf("body = %v, want the error message", body)
	}
}

// Client errors are routine and log at warn; only server errors log at error.
func TestRespondError_LogLevels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"client error", 400, "WARN"},
		{"server error", 500, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			handlers.RespondError(httptest.NewRecorder(), logger, tt.status, errors.New("boom"))

			if !strings.Contains(buf.String(), "level="+tt.wantLevel) {
				t.Errorf("log = %q, want level %s", buf.String(), tt.wantLevel)
			}
		})
	}
}
