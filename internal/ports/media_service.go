package ports

import (
	"context"

	"github.com/Vovarama1992/media-api/internal/models"
)

type MediaService interface {
	Get(ctx context.Context, id string) (*models.Envelope, error)
	List(ctx context.Context, page, perPage int) (*models.Envelope, error)
	Search(ctx context.Context, query string) (*models.Envelope, error)
	Create(ctx context.Context, payload models.CreateMedia) (*models.Envelope, error)
	Update(ctx context.Context, id string, patch models.MediaPatch) (*models.Envelope, error)
	Delete(ctx context.Context, id string) (*models.Envelope, error)
}

type MediaEventKind string

const (
	MediaCreated MediaEventKind = "media.created"
	MediaUpdated MediaEventKind = "media.updated"
	MediaDeleted MediaEventKind = "media.deleted"
)

type MediaEvent struct {
	Kind    MediaEventKind
	MediaID string
	Media   *models.Media
}

// MediaEventPublisher must not block the caller.
type MediaEventPublisher interface {
	Publish(ev MediaEvent)
}
