package scroll_test

import (
	"testing"

	"github.com/kektor/gallery-images/pkg/scroll"
)

func TestConfig_FinalizeDefaults(t *testing.T) {
	var c scroll.Config
	if err := c.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if c.DefaultPageSize != 10 {
		t.Errorf("DefaultPageSize = %d, want 10", c.DefaultPageSize)
	}
	if c.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100", c.MaxPageSize)
	}
}

func TestConfig_FinalizeRejectsInvertedBounds(t *testing.T) {
	c := scroll.Config{DefaultPageSize: 50, MaxPageSize: 20}
	if err := c.Finalize(nil); err == nil {
		t.Error("Finalize() = nil, want error when default exceeds max")
	}
}

func TestConfig_Merge(t *testing.T) {
	c := scroll.Config{DefaultPageSize: 10, MaxPageSize: 100}
	c.Merge(&scroll.Config{MaxPageSize: 50})

	if c.DefaultPageSize != 10 {
		t.Errorf("DefaultPageSize = %d, want 10 unchanged", c.DefaultPageSize)
	}
	if c.MaxPageSize != 50 {
		t.Errorf("MaxPageSize = %d, want 50", c.MaxPageSize)
	}
}
