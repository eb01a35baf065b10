package images

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kektor/gallery-images/internal/comments"
	"github.com/kektor/gallery-images/internal/likes"
	"github.com/kektor/gallery-images/internal/relay"
	"github.com/kektor/gallery-images/internal/storage"
	"github.com/kektor/gallery-images/internal/users"
	"github.com/kektor/gallery-images/pkg/query"
	"github.com/kektor/gallery-images/pkg/repository"
	"github.com/kektor/gallery-images/pkg/scroll"
)

type repo struct {
	db       *sql.DB
	likes    likes.Store
	users    users.Client
	storage  storage.System
	comments comments.Client
	relay    *relay.Relay
	logger   *slog.Logger
	scroll   scroll.Config
}

// New creates the image catalog system.
func New(
	db *sql.DB,
	likeStore likes.Store,
	userClient users.Client,
	store storage.System,
	commentClient comments.Client,
	eventRelay *relay.Relay,
	logger *slog.Logger,
	scrollCfg scroll.Config,
) System {
	return &repo{
		db:       db,
		likes:    likeStore,
		users:    userClient,
		storage:  store,
		comments: commentClient,
		relay:    eventRelay,
		logger:   logger.With("system", "images"),
		scroll:   scrollCfg,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.scroll)
}

func (r *repo) List(ctx context.Context, req scroll.Request, viewerID int64) (*scroll.Window[ImageDto], error) {
	w, err := r.page(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	return r.enrichWindow(ctx, w, viewerID)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64, req scroll.Request, viewerID int64) (*scroll.Window[ImageDto], error) {
	w, err := r.page(ctx, req, &ownerID)
	if err != nil {
		return nil, err
	}
	return r.enrichWindow(ctx, w, viewerID)
}

func (r *repo) ListByUsername(ctx context.Context, username string, req scroll.Request, viewerID int64) (*scroll.Window[ImageDto], error) {
	owner, err := r.users.FetchByName(ctx, username)
	if err != nil {
		return nil, err
	}
	return r.ListByOwner(ctx, owner.ID, req, viewerID)
}

// page plans and runs one keyset query: scope and time bound compose with
// AND, the cursor position continues strictly after the last returned row,
// and one extra row is fetched so HasMore is authoritative at the store.
func (r *repo) page(ctx context.Context, req scroll.Request, ownerID *int64) (*scroll.Window[Image], error) {
	qb := query.NewBuilder(projection)

	if ownerID != nil {
		qb.WhereEquals("userId", *ownerID)
	}
	if req.TillDate != nil {
		qb.WhereAfter(scroll.FieldUploadedAt, *req.TillDate)
	}
	if !req.Position.IsEmpty() {
		values, err := req.Position.ValuesFor(req.Sort)
		if err != nil {
			return nil, err
		}
		qb.WhereKeyset(req.Sort, values)
	}
	qb.OrderByFields(req.Sort)

	q, args := qb.BuildKeyset(req.Limit + 1)
	rows, err := repository.QueryMany(ctx, r.db, q, args, scanImage)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}

	return buildWindow(rows, req), nil
}

func buildWindow(rows []Image, req scroll.Request) *scroll.Window[Image] {
	w := &scroll.Window[Image]{Items: rows}

	if len(rows) > req.Limit {
		w.Items = rows[:req.Limit]
		w.HasMore = true
		last := w.Items[len(w.Items)-1]
		w.Next = scroll.EncodeCursor(req.Sort, last.cursorValues())
	}

	if w.Items == nil {
		w.Items = []Image{}
	}
	return w
}

func (r *repo) Find(ctx context.Context, id, viewerID int64) (*ImageDto, error) {
	img, err := r.find(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	liked, err := r.likes.Exists(ctx, r.db, id, viewerID)
	if err != nil {
		return nil, fmt.Errorf("like lookup: %w", err)
	}

	return r.enrich(ctx, img, liked)
}

func (r *repo) Upload(ctx context.Context, cmd UploadCommand, userID int64) (*ImageDto, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	key := storage.Key(userID, cmd.Filename)

	img, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Image, error) {
		img, err := r.insert(ctx, tx, userID, key, cmd.Description)
		if err != nil {
			return nil, err
		}

		// Object upload happens before the metadata row commits: an upload
		// failure rolls the row back, so no committed row ever references a
		// key with no bytes behind it.
		if err := r.storage.Upload(ctx, key, cmd.Data, cmd.Size, cmd.ContentType); err != nil {
			return nil, err
		}

		return img, nil
	})
	if err != nil {
		// A commit failure after a successful upload can orphan the object.
		if removeErr := r.storage.Remove(context.WithoutCancel(ctx), key); removeErr != nil {
			r.logger.Warn("failed to remove orphaned object", "key", key, "error", removeErr)
		}
		return nil, err
	}

	return r.enrich(ctx, img, false)
}

func (r *repo) Update(ctx context.Context, id int64, cmd UpdateCommand, userID int64) (*ImageDto, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	img, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Image, error) {
		img, err := r.findAuthorized(ctx, tx, id, userID)
		if err != nil {
			return nil, err
		}

		err = repository.ExecExpectOne(
			ctx, tx,
			`UPDATE gallery.images SET description = $1 WHERE id = $2`,
			cmd.Description, id,
		)
		if err != nil {
			return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		img.Description = cmd.Description
		return img, nil
	})
	if err != nil {
		return nil, err
	}

	liked, err := r.likes.Exists(ctx, r.db, id, userID)
	if err != nil {
		return nil, fmt.Errorf("like lookup: %w", err)
	}

	return r.enrich(ctx, img, liked)
}

func (r *repo) Delete(ctx context.Context, id, userID int64) error {
	img, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Image, error) {
		img, err := r.findAuthorized(ctx, tx, id, userID)
		if err != nil {
			return nil, err
		}

		// Likes cascade at the storage layer.
		err = repository.ExecExpectOne(ctx, tx, `DELETE FROM gallery.images WHERE id = $1`, id)
		if err != nil {
			return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		return img, nil
	})
	if err != nil {
		return err
	}

	// Both cleanups run after the delete has committed and are best-effort
	// from the catalog's perspective.
	go r.cleanupAfterDelete(context.WithoutCancel(ctx), img)

	return nil
}

func (r *repo) cleanupAfterDelete(ctx context.Context, img *Image) {
	if err := r.comments.DeleteForImage(ctx, img.ID); err != nil {
		r.logger.Error("orphan comment cleanup failed", "image_id", img.ID, "error", err)
	}
	if err := r.storage.Remove(ctx, img.StorageKey); err != nil {
		r.logger.Warn("failed to delete stored object", "key", img.StorageKey, "error", err)
	}
}

func (r *repo) find(ctx context.Context, ex repository.Executor, id int64) (*Image, error) {
	q, args := query.NewBuilder(projection).BuildSingle(scroll.FieldID, id)
	img, err := repository.QueryOne(ctx, ex, q, args, scanImage)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &img, nil
}

func (r *repo) findAuthorized(ctx context.Context, ex repository.Executor, id, userID int64) (*Image, error) {
	img, err := r.find(ctx, ex, id)
	if err != nil {
		return nil, err
	}
	if img.UserID != userID {
		return nil, fmt.Errorf("%w: image %d, user %d", ErrForbidden, id, userID)
	}
	return img, nil
}

func (r *repo) insert(ctx context.Context, ex repository.Executor, userID int64, key, description string) (*Image, error) {
	img := &Image{
		UserID:      userID,
		StorageKey:  key,
		Description: description,
	}

	err := ex.QueryRowContext(
		ctx,
		`INSERT INTO gallery.images (user_id, s3_key, description)
		VALUES ($1, $2, $3)
		RETURNING id, uploaded_at, likes_count`,
		userID, key, description,
	).Scan(&img.ID, &img.UploadedAt, &img.LikesCount)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return img, nil
}
