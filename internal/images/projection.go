package images

import (
	"github.com/kektor/gallery-images/pkg/query"
	"github.com/kektor/gallery-images/pkg/repository"
	"github.com/kektor/gallery-images/pkg/scroll"
)

var projection = query.NewProjectionMap("gallery", "images", "i").
	Project("id", scroll.FieldID).
	Project("user_id", "userId").
	Project("s3_key", "storageKey").
	Project("description", "description").
	Project("uploaded_at", scroll.FieldUploadedAt).
	Project("likes_count", scroll.FieldLikesCount)

func scanImage(s repository.Scanner) (Image, error) {
	var i Image
	err := s.Scan(
		&i.ID,
		&i.UserID,
		&i.StorageKey,
		&i.Description,
		&i.UploadedAt,
		&i.LikesCount,
	)
	return i, err
}
