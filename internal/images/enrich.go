package images

import (
	"context"
	"fmt"

	"github.com/kektor/gallery-images/internal/users"
	"github.com/kektor/gallery-images/pkg/scroll"
)

// enrichWindow hydrates one page of raw rows. External calls are bounded per
// page: exactly one batched like-membership lookup, and one identity lookup
// per distinct owner through the cached client, independent of page size.
func (r *repo) enrichWindow(ctx context.Context, w *scroll.Window[Image], viewerID int64) (*scroll.Window[ImageDto], error) {
	ids := make([]int64, len(w.Items))
	for i, img := range w.Items {
		ids[i] = img.ID
	}

	liked, err := r.likes.FindLiked(ctx, r.db, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("batch like lookup: %w", err)
	}

	owners := make(map[int64]*users.User)
	for _, img := range w.Items {
		if _, ok := owners[img.UserID]; ok {
			continue
		}
		// An unresolvable owner is a referential inconsistency, never
		// silently hidden.
		owner, err := r.users.FetchByID(ctx, img.UserID)
		if err != nil {
			return nil, err
		}
		owners[img.UserID] = owner
	}

	dtos := make([]ImageDto, len(w.Items))
	for i, img := range w.Items {
		_, isLiked := liked[img.ID]
		dto, err := r.toDto(ctx, &img, owners[img.UserID], isLiked)
		if err != nil {
			return nil, err
		}
		dtos[i] = *dto
	}

	return &scroll.Window[ImageDto]{
		Items:   dtos,
		HasMore: w.HasMore,
		Next:    w.Next,
	}, nil
}

func (r *repo) enrich(ctx context.Context, img *Image, liked bool) (*ImageDto, error) {
	owner, err := r.users.FetchByID(ctx, img.UserID)
	if err != nil {
		return nil, err
	}
	return r.toDto(ctx, img, owner, liked)
}

func (r *repo) toDto(ctx context.Context, img *Image, owner *users.User, liked bool) (*ImageDto, error) {
	url, err := r.storage.SignedURL(ctx, img.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("sign url for %s: %w", img.StorageKey, err)
	}

	return &ImageDto{
		ID:          img.ID,
		UserID:      img.UserID,
		Username:    owner.Username,
		URL:         url,
		Description: img.Description,
		UploadedAt:  img.UploadedAt,
		LikesCount:  img.LikesCount,
		Liked:       liked,
	}, nil
}
