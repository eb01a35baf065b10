package images

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kektor/gallery-images/internal/likes"
	"github.com/kektor/gallery-images/internal/relay"
	"github.com/kektor/gallery-images/pkg/repository"
)

type toggleOutcome struct {
	image Image
	liked bool
}

func (r *repo) Toggle(ctx context.Context, imageID, userID int64) (*ImageDto, error) {
	out, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (toggleOutcome, error) {
		if _, err := r.find(ctx, tx, imageID); err != nil {
			return toggleOutcome{}, err
		}

		liked, err := toggleState(ctx, r.likes, tx, imageID, userID, func(delta int) error {
			return adjustLikes(ctx, tx, imageID, delta)
		})
		if err != nil {
			return toggleOutcome{}, err
		}

		// The counter returned to the caller and carried on the event is the
		// post-toggle value read back inside the same transaction.
		img, err := r.find(ctx, tx, imageID)
		if err != nil {
			return toggleOutcome{}, err
		}

		return toggleOutcome{image: *img, liked: liked}, nil
	})
	if err != nil {
		return nil, err
	}

	r.publishToggle(ctx, out, userID)

	return r.enrich(ctx, &out.image, out.liked)
}

// toggleState flips the like row for (image, user) and reports the resulting
// liked state. bump receives the exact counter delta to apply; it is invoked
// only for state transitions that actually occurred, so racing toggles can
// never double-count:
//
//   - an insert absorbed by the unique constraint means a concurrent like
//     already exists and already bumped the counter;
//   - a delete affecting zero rows means a concurrent unlike already removed
//     the row and already decremented.
func toggleState(
	ctx context.Context,
	store likes.Store,
	ex repository.Executor,
	imageID, userID int64,
	bump func(delta int) error,
) (bool, error) {
	likeID, err := store.Find(ctx, ex, imageID, userID)
	switch {
	case err == nil:
		affected, err := store.Delete(ctx, ex, likeID)
		if err != nil {
			return false, err
		}
		if affected == 1 {
			if err := bump(-1); err != nil {
				return false, err
			}
		}
		return false, nil

	case errors.Is(err, likes.ErrNotFound):
		err := store.Insert(ctx, ex, imageID, userID)
		if errors.Is(err, likes.ErrDuplicate) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if err := bump(1); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, err
	}
}

// adjustLikes applies an atomic store-level delta; the counter is never
// read-modified-written at the application layer.
func adjustLikes(ctx context.Context, ex repository.Executor, imageID int64, delta int) error {
	_, err := ex.ExecContext(
		ctx,
		`UPDATE gallery.images SET likes_count = likes_count + $1 WHERE id = $2`,
		delta, imageID,
	)
	return err
}

func (r *repo) publishToggle(ctx context.Context, out toggleOutcome, userID int64) {
	// The event describes committed state; a caller that disconnects right
	// after the commit must not degrade the username lookup.
	ctx = context.WithoutCancel(ctx)

	kind := relay.EventUnlike
	if out.liked {
		kind = relay.EventLike
	}

	var username string
	if u, err := r.users.FetchByID(ctx, userID); err == nil {
		username = u.Username
	} else {
		r.logger.Warn("acting user lookup failed for like event", "user_id", userID, "error", err)
	}

	r.relay.Enqueue(relay.LikeEvent{
		Kind:       kind,
		ImageID:    out.image.ID,
		OwnerID:    out.image.UserID,
		UserID:     userID,
		Username:   username,
		LikesCount: out.image.LikesCount,
		At:         time.Now().UTC(),
	})
}
