package repository

import (
	"context"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
)

// ProfileRepository persists profiles. Lookups of a missing record return
// domain.ErrProfileNotFound and identifiers the backend cannot parse return
// domain.ErrMalformedID. Every write bumps Version.
type ProfileRepository interface {
	// Create stores profile and fills in ID, Version and timestamps.
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	ListActive(ctx context.Context) ([]*domain.Profile, error)
	// Update applies changes and returns the stored profile after the write.
	Update(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.Profile, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) (*domain.Profile, error)
	// ReplaceInstruments overwrites the instrument list only if the stored version
	// still equals expectedVersion, otherwise it returns domain.ErrVersionConflict.
	ReplaceInstruments(ctx context.Context, id string, expectedVersion int64, instruments []domain.Instrument) (*domain.Profile, error)
	// Delete removes the profile and returns it as it was before removal.
	Delete(ctx context.Context, id string) (*domain.Profile, error)
	DeleteMany(ctx context.Context, filter domain.ProfileFilter) (int64, error)
}

// SchemaMigrator prepares backend storage: indexes, tables, constraints.
type SchemaMigrator interface {
	Migrate(ctx context.Context) error
}
