package images

import (
	"net/url"
	"sort"
	"testing"
	"time"

	"github.com/kektor/gallery-images/pkg/query"
	"github.com/kektor/gallery-images/pkg/scroll"
)

// fakeStore simulates the store layer for keyset scrolling: it orders rows by
// the sort spec, applies the cursor predicate with the same tuple-expansion
// semantics the SQL builder generates, and overfetches limit+1.
type fakeStore struct {
	rows []Image
}

func (s *fakeStore) fetch(req scroll.Request) []Image {
	ordered := make([]Image, len(s.rows))
	copy(ordered, s.rows)
	sort.SliceStable(ordered, func(a, b int) bool {
		return compareRows(ordered[a], ordered[b], req.Sort) < 0
	})

	out := make([]Image, 0, req.Limit+1)
	for _, row := range ordered {
		if !req.Position.IsEmpty() && !afterPosition(row, req.Position, req.Sort) {
			continue
		}
		out = append(out, row)
		if len(out) == req.Limit+1 {
			break
		}
	}
	return out
}

// compareRows orders a before b when a comes earlier under the sort spec.
func compareRows(a, b Image, spec []query.SortField) int {
	av, bv := a.cursorValues(), b.cursorValues()
	for _, sf := range spec {
		c := compareValues(av[sf.Field], bv[sf.Field])
		if c == 0 {
			continue
		}
		if sf.Descending {
			return -c
		}
		return c
	}
	return 0
}

// afterPosition reports whether row sits strictly beyond the cursor position.
func afterPosition(row Image, pos scroll.Position, spec []query.SortField) bool {
	rv := row.cursorValues()
	for _, sf := range spec {
		c := compareValues(rv[sf.Field], pos[sf.Field])
		if c == 0 {
			continue
		}
		if sf.Descending {
			return c < 0
		}
		return c > 0
	}
	return false
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		bt := b.(time.Time)
		switch {
		case av.Before(bt):
			return -1
		case av.After(bt):
			return 1
		}
		return 0
	case int:
		return av - toInt(b)
	case int64:
		bi := int64(toInt(b))
		switch {
		case av < bi:
			return -1
		case av > bi:
			return 1
		}
		return 0
	}
	return 0
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	}
	return 0
}

// walk scrolls the whole store, re-decoding each continuation cursor the way
// a client would, and returns the ids in page order.
func walk(t *testing.T, store *fakeStore, params url.Values, pageSize int) []int64 {
	t.Helper()

	cfg := scroll.Config{DefaultPageSize: pageSize, MaxPageSize: 100}
	var ids []int64

	for range len(store.rows) + 1 {
		req, err := scroll.ParseRequest(params, cfg)
		if err != nil {
			t.Fatalf("ParseRequest() error = %v", err)
		}

		w := buildWindow(store.fetch(req), req)
		for _, row := range w.Items {
			ids = append(ids, row.ID)
		}
		if !w.HasMore {
			return ids
		}

		next := url.Values{}
		for _, v := range params["sort"] {
			next.Add("sort", v)
		}
		for k, v := range w.Next {
			next.Set(k, v)
		}
		params = next
	}

	t.Fatal("scroll did not terminate")
	return nil
}

// Scrolling the full set must visit every row exactly once regardless of
// duplicate sort-key values, because the id tie-breaker makes the order total.
func TestKeysetScroll_PartitionsResultSet(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	for i := range 17 {
		store.rows = append(store.rows, Image{
			ID:         int64(i + 1),
			UserID:     7,
			UploadedAt: base.Add(time.Duration(i/3) * time.Hour), // duplicates
			LikesCount: i % 4,                                    // duplicates
		})
	}

	sorts := []url.Values{
		{},
		{"sort": {"uploadedAt,asc"}},
		{"sort": {"likesCount,desc"}},
		{"sort": {"likesCount,desc", "uploadedAt,desc"}},
	}

	for _, params := range sorts {
		ids := walk(t, store, params, 5)

		if len(ids) != len(store.rows) {
			t.Fatalf("sort %v: visited %d rows, want %d", params, len(ids), len(store.rows))
		}
		seen := make(map[int64]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				t.Errorf("sort %v: row %d returned twice", params, id)
			}
			seen[id] = true
		}
	}
}

// Page size 2 over rows (id=5, likes=3, t=T3) and (id=4, likes=3, t=T2)
// sorted by likes desc, uploadedAt desc: page 2 starts strictly after the
// (3, T2, 4) tuple and must not re-return either row.
func TestKeysetScroll_TieBreakExample(t *testing.T) {
	t2 := time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)
	t3 := t2.Add(time.Hour)
	store := &fakeStore{rows: []Image{
		{ID: 5, LikesCount: 3, UploadedAt: t3},
		{ID: 4, LikesCount: 3, UploadedAt: t2},
		{ID: 3, LikesCount: 3, UploadedAt: t2},
		{ID: 2, LikesCount: 1, UploadedAt: t3},
	}}

	params := url.Values{"sort": {"likesCount,desc", "uploadedAt,desc"}}
	ids := walk(t, store, params, 2)

	want := []int64{5, 4, 3, 2}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

// Equal primary sort values order purely by id, in both directions.
func TestKeysetScroll_TieBreakBothDirections(t *testing.T) {
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{rows: []Image{
		{ID: 1, LikesCount: 3, UploadedAt: ts},
		{ID: 2, LikesCount: 3, UploadedAt: ts},
		{ID: 3, LikesCount: 3, UploadedAt: ts},
	}}

	desc := walk(t, store, url.Values{"sort": {"likesCount,desc"}}, 1)
	asc := walk(t, store, url.Values{"sort": {"likesCount,asc"}}, 1)

	if desc[0] != 3 || desc[1] != 2 || desc[2] != 1 {
		t.Errorf("desc order = %v, want [3 2 1]", desc)
	}
	if asc[0] != 1 || asc[1] != 2 || asc[2] != 3 {
		t.Errorf("asc order = %v, want [1 2 3]", asc)
	}
}
