package images

import (
	"fmt"
	"io"
	"time"

	"github.com/kektor/gallery-images/pkg/scroll"
)

const maxDescriptionLength = 1000

// Image is a stored catalog record. The storage key is unique and immutable
// after creation; the likes counter is mutated only through Toggle.
type Image struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	StorageKey  string    `json:"storage_key"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at"`
	LikesCount  int       `json:"likes_count"`
}

// cursorValues exposes the row's sort-key values for cursor encoding.
func (i Image) cursorValues() map[string]any {
	return map[string]any{
		scroll.FieldUploadedAt: i.UploadedAt,
		scroll.FieldLikesCount: i.LikesCount,
		scroll.FieldID:         i.ID,
	}
}

// ImageDto is the enriched representation returned to callers: the stored
// row joined with the owner identity, a signed access URL, and the viewer's
// like state.
type ImageDto struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at"`
	LikesCount  int       `json:"likes_count"`
	Liked       bool      `json:"is_liked"`
}

// UploadCommand carries a new image upload.
type UploadCommand struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
	Description string
}

// Validate checks the upload payload.
func (c *UploadCommand) Validate() error {
	if c.Data == nil || c.Size <= 0 {
		return fmt.Errorf("%w: image file required", ErrInvalidPayload)
	}
	return validateDescription(c.Description)
}

// UpdateCommand carries a description change.
type UpdateCommand struct {
	Description string `json:"description"`
}

// Validate checks the update payload.
func (c *UpdateCommand) Validate() error {
	return validateDescription(c.Description)
}

func validateDescription(d string) error {
	if len(d) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidPayload, maxDescriptionLength)
	}
	return nil
}
