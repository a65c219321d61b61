package domain

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/media-api/internal/models"
	"github.com/Vovarama1992/media-api/internal/ports"
	"github.com/google/uuid"
)

const (
	msgFound      = "Operation successfull"
	msgListed     = "Operation successful"
	msgCreated    = "Created successfully"
	msgUpdated    = "Update successfully"
	msgDeleted    = "Deleted successfully"
	msgNoField    = "No valid field"
	msgNoUpdate   = "Nothing to update"
	msgNotFoundID = "No media found with the specified Id, %s"
)

type MediaService struct {
	repo   ports.MediaRepository
	log    *logger.ZapLogger
	events ports.MediaEventPublisher

	now   func() time.Time
	newID func() string
}

type Option func(*MediaService)

// WithEvents makes the service publish lifecycle events after successful writes.
func WithEvents(p ports.MediaEventPublisher) Option {
	return func(s *MediaService) { s.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *MediaService) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *MediaService) { s.newID = gen }
}

func NewMediaService(repo ports.MediaRepository, log *logger.ZapLogger, opts ...Option) *MediaService {
	s := &MediaService{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.MediaService = (*MediaService)(nil)

func (s *MediaService) Get(ctx context.Context, id string) (*models.Envelope, error) {
	media, err := s.repo.FindUnique(ctx, id)
	if err != nil {
		return nil, s.fail(models.FaultServer, ports.Cause(err), err)
	}
	if media == nil {
		return nil, s.fail(models.FaultNotFound, fmt.Sprintf(msgNotFoundID, id), nil)
	}

	return models.Success(msgFound, media), nil
}

func (s *MediaService) List(ctx context.Context, page, perPage int) (*models.Envelope, error) {
	// A page whose offset does not fit in an int lies past any stored row.
	if page-1 > math.MaxInt/perPage {
		return models.Success(msgListed, []models.Media{}), nil
	}

	active := models.StatusActive

	medias, err := s.repo.FindMany(ctx, ports.MediaFilter{
		Status: &active,
		Skip:   (page - 1) * perPage,
		Take:   perPage,
	})
	if err != nil {
		return nil, s.fail(models.FaultServer, ports.Cause(err), err)
	}

	return models.Success(msgListed, nonNil(medias)), nil
}

func (s *MediaService) Search(ctx context.Context, query string) (*models.Envelope, error) {
	active := models.StatusActive

	medias, err := s.repo.FindMany(ctx, ports.MediaFilter{
		Status: &active,
		Search: &query,
	})
	if err != nil {
		return nil, s.fail(models.FaultServer, ports.Cause(err), err)
	}

	return models.Success(msgListed, nonNil(medias)), nil
}

func (s *MediaService) Create(ctx context.Context, payload models.CreateMedia) (*models.Envelope, error) {
	if payload.IsEmpty() {
		return nil, s.fail(models.FaultBadRequest, msgNoField, nil)
	}

	status := models.StatusActive
	if payload.Status != nil {
		status = *payload.Status
	}

	media, err := s.repo.Create(ctx, &models.Media{
		ID:          s.newID(),
		Type:        payload.Type,
		URL:         payload.URL,
		Title:       payload.Title,
		Description: payload.Description,
		Status:      status,
	})
	if err != nil {
		return nil, s.fail(models.FaultBadRequest, ports.Cause(err), err)
	}

	s.publish(ports.MediaCreated, media.ID, media)
	return models.Success(msgCreated, media), nil
}

func (s *MediaService) Update(ctx context.Context, id string, patch models.MediaPatch) (*models.Envelope, error) {
	if patch.IsEmpty() {
		return nil, s.fail(models.FaultBadRequest, msgNoUpdate, nil)
	}

	media, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.fail(models.FaultBadRequest, ports.Cause(err), err)
	}

	s.publish(ports.MediaUpdated, media.ID, media)
	return models.Success(msgUpdated, media), nil
}

// Delete is a soft delete: the row stays and is still reachable through Get.
func (s *MediaService) Delete(ctx context.Context, id string) (*models.Envelope, error) {
	inactive := models.StatusInactive
	deletedAt := s.now().UTC()

	if _, err := s.repo.Update(ctx, id, models.MediaPatch{
		Status:    &inactive,
		DeletedAt: &deletedAt,
	}); err != nil {
		return nil, s.fail(models.FaultBadRequest, ports.Cause(err), err)
	}

	s.publish(ports.MediaDeleted, id, nil)
	return models.Success(msgDeleted, models.EmptyData()), nil
}

func (s *MediaService) fail(kind models.FaultKind, message string, err error) *models.Fault {
	f := models.NewFault(kind, message, err)

	s.log.Log(logger.LogEntry{
		Level:   "error",
		Message: "media operation failed",
		Error:   err,
		Fields: map[string]any{
			"status":  models.OperationError,
			"message": message,
			"kind":    kind.String(),
		},
	})

	return f
}

func (s *MediaService) publish(kind ports.MediaEventKind, id string, media *models.Media) {
	if s.events == nil {
		return
	}
	s.events.Publish(ports.MediaEvent{Kind: kind, MediaID: id, Media: media})
}

func nonNil(medias []models.Media) []models.Media {
	if medias == nil {
		return []models.Media{}
	}
	return medias
}
