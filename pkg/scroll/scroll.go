// Package scroll implements keyset (cursor-based) pagination primitives:
// parsing scroll requests from query parameters, encoding continuation
// cursors from the last row of a page, and the Window page result.
package scroll

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kektor/gallery-images/pkg/query"
)

// CursorParamPrefix prefixes every cursor query parameter, followed by the
// sort field name the value belongs to.
const CursorParamPrefix = "cursor-last-"

// Recognized sort/cursor field names.
const (
	FieldUploadedAt = "uploadedAt"
	FieldLikesCount = "likesCount"
	FieldID         = "id"
)

// Request parameter names.
const (
	ParamSize     = "size"
	ParamSort     = "sort"
	ParamTillDate = "tillDate"
)

// Errors reported while decoding scroll parameters. Both are
// caller-correctable.
var (
	ErrInvalidCursor   = errors.New("invalid cursor parameter")
	ErrInvalidTillDate = errors.New("invalid tillDate parameter")
)

// cursorParsers is the allow-list of cursor fields and their exact parsers.
// Parameters outside this list are ignored for forward compatibility.
var cursorParsers = map[string]func(string) (any, error){
	FieldUploadedAt: func(s string) (any, error) {
		return time.Parse(time.RFC3339, s)
	},
	FieldLikesCount: func(s string) (any, error) {
		return strconv.Atoi(s)
	},
	FieldID: func(s string) (any, error) {
		return strconv.ParseInt(s, 10, 64)
	},
}

// Position is a decoded cursor: the last-seen value per sort field. An empty
// Position means the first page.
type Position map[string]any

// IsEmpty reports whether the position denotes the start of the result set.
func (p Position) IsEmpty() bool {
	return len(p) == 0
}

// ValuesFor aligns the position values with the given sort specification.
// A non-empty position missing any active sort field is rejected: such a
// cursor cannot locate a unique row under that ordering.
func (p Position) ValuesFor(sort []query.SortField) ([]any, error) {
	values := make([]any, len(sort))
	for i, sf := range sort {
		v, ok := p[sf.Field]
		if !ok {
			return nil, fmt.Errorf("%w: missing value for sort field %q", ErrInvalidCursor, sf.Field)
		}
		values[i] = v
	}
	return values, nil
}

// Request carries everything needed to plan one page of a scroll: the sort
// specification (with the id tie-breaker appended), the page size, an
// optional uploaded-after bound, and the cursor position.
type Request struct {
	Sort     []query.SortField
	Limit    int
	TillDate *time.Time
	Position Position
}

// ParseRequest decodes a scroll request from URL query values.
//
// Recognized parameters: size (clamped to cfg bounds), sort (field,dir; may
// repeat), tillDate (RFC 3339, strictly-after filter), and one cursor value
// per recognized sort field under the cursor-last- prefix. Unrecognized
// cursor parameter names are ignored; recognized-but-unparseable values fail
// with ErrInvalidCursor. Absent cursor parameters mean the first page.
func ParseRequest(values url.Values, cfg Config) (Request, error) {
	req := Request{
		Sort:  parseSort(values),
		Limit: parseSize(values, cfg),
	}

	if raw := values.Get(ParamTillDate); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Request{}, fmt.Errorf("%w: %q", ErrInvalidTillDate, raw)
		}
		req.TillDate = &t
	}

	pos, err := decodePosition(values)
	if err != nil {
		return Request{}, err
	}
	req.Position = pos

	return req, nil
}

func decodePosition(values url.Values) (Position, error) {
	pos := make(Position)
	for name := range values {
		if !strings.HasPrefix(name, CursorParamPrefix) {
			continue
		}

		field := strings.TrimPrefix(name, CursorParamPrefix)
		parse, ok := cursorParsers[field]
		if !ok {
			continue
		}

		raw := values.Get(name)
		if raw == "" {
			continue
		}

		v, err := parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidCursor, name, raw)
		}
		pos[field] = v
	}

	return pos, nil
}

func parseSize(values url.Values, cfg Config) int {
	size := cfg.DefaultPageSize
	if raw := values.Get(ParamSize); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			size = n
		}
	}

	if size < 1 {
		size = cfg.DefaultPageSize
	}
	if size > cfg.MaxPageSize {
		size = cfg.MaxPageSize
	}

	return size
}

// parseSort reads sort parameters in "field" or "field,desc" form, restricted
// to the recognized field allow-list, and appends the id tie-breaker so every
// ordering is total. The tie-breaker follows the leading field's direction,
// keeping cursor comparison consistent across pages.
func parseSort(values url.Values) []query.SortField {
	var sort []query.SortField
	seen := make(map[string]bool)

	for _, raw := range values[ParamSort] {
		field, dir, _ := strings.Cut(raw, ",")
		if _, ok := cursorParsers[field]; !ok || seen[field] {
			continue
		}
		seen[field] = true
		sort = append(sort, query.SortField{
			Field:      field,
			Descending: strings.EqualFold(dir, "desc"),
		})
	}

	if len(sort) == 0 {
		sort = append(sort, query.SortField{Field: FieldUploadedAt, Descending: true})
		seen[FieldUploadedAt] = true
	}

	if !seen[FieldID] {
		sort = append(sort, query.SortField{Field: FieldID, Descending: sort[0].Descending})
	}

	return sort
}

// EncodeCursor serializes the continuation cursor for the page ending at the
// given row values, one parameter per sort field in specification order.
// last maps field name to the row's value for that field.
func EncodeCursor(sort []query.SortField, last map[string]any) map[string]string {
	cursor := make(map[string]string, len(sort))
	for _, sf := range sort {
		v, ok := last[sf.Field]
		if !ok {
			continue
		}
		cursor[CursorParamPrefix+sf.Field] = FormatValue(v)
	}
	return cursor
}

// FormatValue renders a cursor value in its canonical wire form, matching
// what the cursor parsers accept.
func FormatValue(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Window holds one page of a scrolled result set. Next carries the encoded
// continuation cursor when more rows exist beyond this page.
type Window[T any] struct {
	Items   []T               `json:"items"`
	HasMore bool              `json:"has_more"`
	Next    map[string]string `json:"next_cursor,omitempty"`
}
