package ports

import (
	"context"
	"errors"

	"github.com/Vovarama1992/media-api/internal/models"
)

// MediaFilter narrows FindMany. Results are always ordered by created_at DESC.
type MediaFilter struct {
	Status *models.Status
	// Search matches title OR description as a case-sensitive substring.
	Search *string
	Skip   int
	Take   int // 0 means no limit
}

type MediaRepository interface {
	// FindUnique returns (nil, nil) when no row has the given id.
	FindUnique(ctx context.Context, id string) (*models.Media, error)
	FindMany(ctx context.Context, filter MediaFilter) ([]models.Media, error)
	Create(ctx context.Context, media *models.Media) (*models.Media, error)
	Update(ctx context.Context, id string, patch models.MediaPatch) (*models.Media, error)
}

const CauseRecordNotFound = "Record to update not found."

// StoreError is returned by MediaRepository implementations. Cause is safe to
// show to API clients.
type StoreError struct {
	Op    string
	Cause string
	Err   error
}

func (e *StoreError) Error() string {
	if e.Cause == "" && e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Op + ": " + e.Cause + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Cause
}

func (e *StoreError) Unwrap() error { return e.Err }

// Cause extracts the human readable cause of a store failure.
func Cause(err error) string {
	if err == nil {
		return ""
	}
	var se *StoreError
	if errors.As(err, &se) && se.Cause != "" {
		return se.Cause
	}
	return err.Error()
}
