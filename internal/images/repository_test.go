package images

import (
	"strings"
	"testing"
	"time"

	"github.com/kektor/gallery-images/pkg/query"
	"github.com/kektor/gallery-images/pkg/scroll"
)

func testRows(n int) []Image {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := make([]Image, n)
	for i := range rows {
		rows[i] = Image{
			ID:         int64(100 - i),
			UserID:     7,
			StorageKey: "users/7/key",
			UploadedAt: base.Add(-time.Duration(i) * time.Hour),
			LikesCount: n - i,
		}
	}
	return rows
}

func defaultSort() []query.SortField {
	return []query.SortField{
		{Field: scroll.FieldUploadedAt, Descending: true},
		{Field: scroll.FieldID, Descending: true},
	}
}

func TestBuildWindow_FullPageWithMore(t *testing.T) {
	req := scroll.Request{Sort: defaultSort(), Limit: 3}
	rows := testRows(4) // limit+1 overfetch came back full

	w := buildWindow(rows, req)

	if len(w.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(w.Items))
	}
	if !w.HasMore {
		t.Error("HasMore = false, want true")
	}
	if w.Next == nil {
		t.Fatal("Next = nil, want continuation cursor")
	}

	// The cursor points at the last returned row, not the overfetched one.
	last := w.Items[2]
	if got := w.Next["cursor-last-id"]; got != "98" {
		t.Errorf("cursor id = %q, want 98 (last row id %d)", got, last.ID)
	}
	if _, ok := w.Next["cursor-last-uploadedAt"]; !ok {
		t.Error("cursor missing uploadedAt value")
	}
	if _, ok := w.Next["cursor-last-likesCount"]; ok {
		t.Error("cursor carries likesCount, which is not an active sort field")
	}
}

func TestBuildWindow_PartialPage(t *testing.T) {
	req := scroll.Request{Sort: defaultSort(), Limit: 3}
	rows := testRows(2)

	w := buildWindow(rows, req)

	if len(w.Items) != 2 {
		t.Errorf("items = %d, want 2", len(w.Items))
	}
	if w.HasMore {
		t.Error("HasMore = true, want false")
	}
	if w.Next != nil {
		t.Errorf("Next = %v, want nil", w.Next)
	}
}

func TestBuildWindow_ExactPage(t *testing.T) {
	req := scroll.Request{Sort: defaultSort(), Limit: 3}
	rows := testRows(3) // exactly limit rows: the store had no extra row

	w := buildWindow(rows, req)

	if len(w.Items) != 3 {
		t.Errorf("items = %d, want 3", len(w.Items))
	}
	if w.HasMore {
		t.Error("HasMore = true, want false")
	}
}

func TestBuildWindow_Empty(t *testing.T) {
	req := scroll.Request{Sort: defaultSort(), Limit: 3}

	w := buildWindow(nil, req)

	if w.Items == nil || len(w.Items) != 0 {
		t.Errorf("items = %v, want empty non-nil slice", w.Items)
	}
	if w.HasMore {
		t.Error("HasMore = true, want false")
	}
}

func TestUploadCommand_Validate(t *testing.T) {
	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name    string
		cmd     UploadCommand
		wantErr bool
	}{
		{
			name: "valid upload accepted",
			cmd:  UploadCommand{Data: strings.NewReader("data"), Size: 4, Description: "a trip"},
		},
		{
			name:    "missing data rejected",
			cmd:     UploadCommand{Size: 10},
			wantErr: true,
		},
		{
			name:    "zero size rejected",
			cmd:     UploadCommand{Data: strings.NewReader("data"), Size: 0},
			wantErr: true,
		},
		{
			name:    "overlong description rejected",
			cmd:     UploadCommand{Data: strings.NewReader("data"), Size: 4, Description: string(long)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateCommand_Validate(t *testing.T) {
	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'a'
	}

	ok := UpdateCommand{Description: "short"}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	bad := UpdateCommand{Description: string(long)}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() = nil, want error for overlong description")
	}
}
