package models

import "time"

type MediaType string

const (
	MediaTypeAudio MediaType = "audio"
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Media struct {
	ID          string     `db:"id" json:"id"`
	Type        *MediaType `db:"type" json:"type"` // nullable
	URL         string     `db:"url" json:"url"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Status      Status     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deletedAt"`
}

// CreateMedia is the payload accepted by the create operation.
type CreateMedia struct {
	Type        *MediaType
	URL         string
	Title       string
	Description string
	Status      *Status
}

func (c CreateMedia) IsEmpty() bool {
	return c.Type == nil && c.Status == nil &&
		c.URL == "" && c.Title == "" && c.Description == ""
}

// MediaPatch holds a partial update. Nil fields are left untouched.
type MediaPatch struct {
	Type        *MediaType
	URL         *string
	Title       *string
	Description *string
	Status      *Status
	DeletedAt   *time.Time
}

func (p MediaPatch) IsEmpty() bool {
	return p.Type == nil && p.URL == nil && p.Title == nil &&
		p.Description == nil && p.Status == nil && p.DeletedAt == nil
}
