package images

import (
	"context"

	"github.com/kektor/gallery-images/pkg/scroll"
)

// System defines the image catalog operations. Every operation takes the
// acting user id explicitly; there is no ambient request context.
type System interface {
	Handler() *Handler

	// List returns one page of the catalog scrolled by req, enriched for the
	// viewing user.
	List(ctx context.Context, req scroll.Request, viewerID int64) (*scroll.Window[ImageDto], error)

	// ListByOwner returns one page of a single owner's images.
	ListByOwner(ctx context.Context, ownerID int64, req scroll.Request, viewerID int64) (*scroll.Window[ImageDto], error)

	// ListByUsername resolves username through the identity service and
	// returns that owner's page.
	ListByUsername(ctx context.Context, username string, req scroll.Request, viewerID int64) (*scroll.Window[ImageDto], error)

	// Find retrieves a single enriched image.
	Find(ctx context.Context, id, viewerID int64) (*ImageDto, error)

	// Upload stores image metadata and the object as one unit: the object is
	// uploaded before the metadata row commits, so a failed upload leaves no
	// dangling row.
	Upload(ctx context.Context, cmd UploadCommand, userID int64) (*ImageDto, error)

	// Update changes the description. Only the owner may update.
	Update(ctx context.Context, id int64, cmd UpdateCommand, userID int64) (*ImageDto, error)

	// Delete removes the image and its likes, then clears downstream
	// comments and the stored object after the delete commits.
	Delete(ctx context.Context, id, userID int64) error

	// Toggle flips the user's like on the image and returns the enriched
	// post-toggle state. A like event is relayed after the transaction
	// commits.
	Toggle(ctx context.Context, imageID, userID int64) (*ImageDto, error)
}
