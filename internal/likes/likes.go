// Package likes persists like-existence records: at most one row per
// (image, user) pair, enforced by a storage-level unique constraint so
// concurrent toggles cannot both create a like.
package likes

import (
	"context"
	"errors"

	"github.com/kektor/gallery-images/pkg/repository"
)

// Domain errors for like operations.
var (
	ErrNotFound  = errors.New("like not found")
	ErrDuplicate = errors.New("like already exists")
)

// Like is one user's like on one image. Rows are created and destroyed,
// never updated.
type Like struct {
	ID      int64
	ImageID int64
	UserID  int64
}

// Store provides like persistence. Every method takes an Executor so calls
// can participate in the caller's transaction.
type Store interface {
	// Find returns the like id for the (image, user) pair, or ErrNotFound.
	Find(ctx context.Context, ex repository.Executor, imageID, userID int64) (int64, error)

	// Insert creates a like, returning ErrDuplicate when the pair already
	// exists (a concurrent toggle won the race). A lost race is absorbed with
	// ON CONFLICT DO NOTHING rather than raised as a constraint violation, so
	// the caller's transaction stays usable.
	Insert(ctx context.Context, ex repository.Executor, imageID, userID int64) error

	// Delete removes a like by id and returns the number of rows affected.
	// Zero means a concurrent unlike got there first.
	Delete(ctx context.Context, ex repository.Executor, likeID int64) (int64, error)

	// Exists reports whether the user has liked the image.
	Exists(ctx context.Context, ex repository.Executor, imageID, userID int64) (bool, error)

	// FindLiked returns which of imageIDs the user has liked, in a single
	// round-trip regardless of page size.
	FindLiked(ctx context.Context, ex repository.Executor, userID int64, imageIDs []int64) (map[int64]struct{}, error)
}

// NewStore creates the Postgres-backed like store.
func NewStore() Store {
	return &store{}
}

type store struct{}

func (s *store) Find(ctx context.Context, ex repository.Executor, imageID, userID int64) (int64, error) {
	var id int64
	err := ex.QueryRowContext(
		ctx,
		`SELECT id FROM gallery.likes WHERE image_id = $1 AND user_id = $2`,
		imageID, userID,
	).Scan(&id)
	if err != nil {
		return 0, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return id, nil
}

func (s *store) Insert(ctx context.Context, ex repository.Executor, imageID, userID int64) error {
	// A raised unique violation would abort the surrounding transaction and
	// break the in-tx counter read-back, so the conflict is absorbed and
	// detected through the affected-row count instead.
	res, err := ex.ExecContext(
		ctx,
		`INSERT INTO gallery.likes (image_id, user_id) VALUES ($1, $2)
		ON CONFLICT (image_id, user_id) DO NOTHING`,
		imageID, userID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *store) Delete(ctx context.Context, ex repository.Executor, likeID int64) (int64, error) {
	res, err := ex.ExecContext(ctx, `DELETE FROM gallery.likes WHERE id = $1`, likeID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *store) Exists(ctx context.Context, ex repository.Executor, imageID, userID int64) (bool, error) {
	var exists bool
	err := ex.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM gallery.likes WHERE image_id = $1 AND user_id = $2)`,
		imageID, userID,
	).Scan(&exists)
	return exists, err
}

func (s *store) FindLiked(ctx context.Context, ex repository.Executor, userID int64, imageIDs []int64) (map[int64]struct{}, error) {
	liked := make(map[int64]struct{}, len(imageIDs))
	if len(imageIDs) == 0 {
		return liked, nil
	}

	ids, err := repository.QueryMany(
		ctx, ex,
		`SELECT image_id FROM gallery.likes WHERE user_id = $1 AND image_id = ANY($2)`,
		[]any{userID, imageIDs},
		func(s repository.Scanner) (int64, error) {
			var id int64
			err := s.Scan(&id)
			return id, err
		},
	)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		liked[id] = struct{}{}
	}
	return liked, nil
}
