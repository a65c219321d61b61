package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vovarama1992/media-api/internal/models"
	"github.com/Vovarama1992/media-api/internal/ports"
)

func newTestSQLiteRepo(t *testing.T) *SQLiteMediaRepo {
	t.Helper()

	repo, err := NewSQLiteMediaRepo(context.Background(), filepath.Join(t.TempDir(), "media.db"))
	if err != nil {
		t.Fatalf("NewSQLiteMediaRepo() failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	// deterministic, strictly increasing timestamps
	base := time.Date(2023, 3, 18, 15, 13, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	return repo
}

func seedMedia(t *testing.T, repo *SQLiteMediaRepo, id, title, description string) *models.Media {
	t.Helper()

	audio := models.MediaTypeAudio
	m, err := repo.Create(context.Background(), &models.Media{
		ID:          id,
		Type:        &audio,
		URL:         "https://gaudio.com",
		Title:       title,
		Description: description,
		Status:      models.StatusActive,
	})
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", id, err)
	}
	return m
}

func TestSQLite_CreateAndFindUnique(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	created := seedMedia(t, repo, "67eb6236-f78d-402f-a044-69b4d2909873", "Sulaa", "The souls music")

	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("timestamps not set: %+v", created)
	}

	got, err := repo.FindUnique(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindUnique() failed: %v", err)
	}
	if got == nil {
		t.Fatal("FindUnique() returned nil")
	}
	if got.Title != "Sulaa" || got.Type == nil || *got.Type != models.MediaTypeAudio || got.DeletedAt != nil {
		t.Errorf("FindUnique() = %+v", got)
	}
}

func TestSQLite_FindUniqueMissing(t *testing.T) {
	repo := newTestSQLiteRepo(t)

	got, err := repo.FindUnique(context.Background(), "missing")
	if err != nil || got != nil {
		t.Errorf("FindUnique() = %v, %v; want nil, nil", got, err)
	}
}

func TestSQLite_CreateNullType(t *testing.T) {
	repo := newTestSQLiteRepo(t)

	m, err := repo.Create(context.Background(), &models.Media{
		ID: "a", URL: "https://x.io", Title: "t", Description: "d", Status: models.StatusActive,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if m.Type != nil {
		t.Errorf("type = %v, want nil", *m.Type)
	}
}

func TestSQLite_CreateDuplicateID(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	seedMedia(t, repo, "dup", "a", "b")

	_, err := repo.Create(context.Background(), &models.Media{
		ID: "dup", URL: "https://x.io", Title: "t", Description: "d", Status: models.StatusActive,
	})
	var se *ports.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if se.Cause != "Unique constraint failed on the fields: (`id`)" {
		t.Errorf("cause = %q", se.Cause)
	}
}

func TestSQLite_CheckConstraints(t *testing.T) {
	repo := newTestSQLiteRepo(t)

	_, err := repo.Create(context.Background(), &models.Media{
		ID: "a", URL: "https://x.io", Title: "", Description: "d", Status: models.StatusActive,
	})
	if err == nil {
		t.Fatal("expected empty title to be rejected")
	}
}

func TestSQLite_FindManyOrderingAndPaging(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	for i := 0; i < 5; i++ {
		seedMedia(t, repo, fmt.Sprintf("id-%d", i), fmt.Sprintf("title-%d", i), "desc")
	}

	active := models.StatusActive
	page1, err := repo.FindMany(context.Background(), ports.MediaFilter{Status: &active, Take: 2})
	if err != nil {
		t.Fatalf("FindMany() failed: %v", err)
	}
	page2, err := repo.FindMany(context.Background(), ports.MediaFilter{Status: &active, Skip: 2, Take: 2})
	if err != nil {
		t.Fatalf("FindMany() failed: %v", err)
	}
	page3, err := repo.FindMany(context.Background(), ports.MediaFilter{Status: &active, Skip: 4, Take: 2})
	if err != nil {
		t.Fatalf("FindMany() failed: %v", err)
	}

	var ids []string
	for _, p := range [][]models.Media{page1, page2, page3} {
		for _, m := range p {
			ids = append(ids, m.ID)
		}
	}
	want := []string{"id-4", "id-3", "id-2", "id-1", "id-0"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}

	empty, err := repo.FindMany(context.Background(), ports.MediaFilter{Status: &active, Skip: 10, Take: 2})
	if err != nil {
		t.Fatalf("FindMany() failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("FindMany() past the end = %#v, want empty slice", empty)
	}
}

func TestSQLite_FindManySearch(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	seedMedia(t, repo, "a", "Sulaa", "The souls music")
	seedMedia(t, repo, "b", "Jazz", "a Sulaa remix")
	seedMedia(t, repo, "c", "Rock", "100% guitars")

	tests := []struct {
		query string
		want  int
	}{
		{"Sulaa", 2},
		{"sulaa", 0},
		{"%", 1},
		{"_", 0},
		{"music", 1},
	}

	active := models.StatusActive
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q := tt.query
			got, err := repo.FindMany(context.Background(), ports.MediaFilter{Status: &active, Search: &q})
			if err != nil {
				t.Fatalf("FindMany() failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d results, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSQLite_UpdateAndSoftDelete(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	created := seedMedia(t, repo, "a", "Sulaa", "The souls music")

	title := "Sulaa (live)"
	updated, err := repo.Update(context.Background(), "a", models.MediaPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Title != title || updated.Description != created.Description {
		t.Errorf("Update() = %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("updatedAt not refreshed: %v <= %v", updated.UpdatedAt, created.UpdatedAt)
	}

	inactive := models.StatusInactive
	deletedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := repo.Update(context.Background(), "a", models.MediaPatch{Status: &inactive, DeletedAt: &deletedAt}); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	got, err := repo.FindUnique(context.Background(), "a")
	if err != nil || got == nil {
		t.Fatalf("FindUnique() = %v, %v", got, err)
	}
	if got.Status != models.StatusInactive || got.DeletedAt == nil || !got.DeletedAt.Equal(deletedAt) {
		t.Errorf("after soft delete = %+v", got)
	}

	active := models.StatusActive
	listed, err := repo.FindMany(context.Background(), ports.MediaFilter{Status: &active})
	if err != nil {
		t.Fatalf("FindMany() failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("soft-deleted media listed: %+v", listed)
	}
}

func TestSQLite_UpdateMissing(t *testing.T) {
	repo := newTestSQLiteRepo(t)

	title := "x"
	_, err := repo.Update(context.Background(), "missing", models.MediaPatch{Title: &title})
	if got := ports.Cause(err); got != ports.CauseRecordNotFound {
		t.Errorf("Cause() = %q, want %q", got, ports.CauseRecordNotFound)
	}
}

func TestSQLite_BusyTimeoutOnEveryConnection(t *testing.T) {
	repo := newTestSQLiteRepo(t)
	ctx := context.Background()

	// hold several connections at once so the pool has to open new ones
	conns := make([]*sql.Conn, 3)
	for i := range conns {
		c, err := repo.db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn() failed: %v", err)
		}
		defer c.Close()
		conns[i] = c
	}

	for i, c := range conns {
		var timeout int
		if err := c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		if timeout != 5000 {
			t.Errorf("conn %d busy_timeout = %d, want 5000", i, timeout)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"var/media.db", "var/media.db?_pragma=busy_timeout(5000)"},
		{"file:media.db?mode=rwc", "file:media.db?mode=rwc&_pragma=busy_timeout(5000)"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.path); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
