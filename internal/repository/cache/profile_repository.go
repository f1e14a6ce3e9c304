// Package cache wraps a ProfileRepository with a read-through cache keyed by profile id.
// Cache failures are logged and never fail the underlying call.
//
// Every write evicts the cached entry and sets a short-lived fence for the id. Fills are
// conditional on no fence being set, so a read that raced a write cannot put its stale
// snapshot back after the eviction.
package cache

import (
	"context"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
	"github.com/gdugdh24/bandmate-backend/internal/logger"
	"github.com/gdugdh24/bandmate-backend/internal/repository"
)

const (
	keyPrefix   = "profile:"
	fencePrefix = "profile-fence:"
	flushFence  = fencePrefix + "all"
)

// Store is the key-value cache the decorator reads and invalidates.
type Store interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSONUnlessFenced(ctx context.Context, key string, value any, fences ...string) (bool, error)
	Fence(ctx context.Context, fence string, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// entry keeps the password hash, which Profile omits from its JSON form.
type entry struct {
	Profile      *domain.Profile `json:"profile"`
	PasswordHash string          `json:"password_hash"`
}

type profileRepository struct {
	next   repository.ProfileRepository
	store  Store
	logger *logger.Logger
}

func NewProfileRepository(next repository.ProfileRepository, store Store, log *logger.Logger) repository.ProfileRepository {
	return &profileRepository{next: next, store: store, logger: log}
}

func key(id string) string {
	return keyPrefix + id
}

func fence(id string) string {
	return fencePrefix + id
}

// Migrate forwards to the wrapped repository when it supports migrations.
func (r *profileRepository) Migrate(ctx context.Context) error {
	if m, ok := r.next.(repository.SchemaMigrator); ok {
		return m.Migrate(ctx)
	}
	return nil
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if err := r.next.Create(ctx, profile); err != nil {
		return err
	}
	r.put(ctx, profile)
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var cached entry
	found, err := r.store.GetJSON(ctx, key(id), &cached)
	if err != nil {
		r.logger.Warn("Profile cache: read failed", "id", id, "error", err)
	}
	if found && cached.Profile != nil {
		cached.Profile.Password = cached.PasswordHash
		return cached.Profile, nil
	}

	profile, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.put(ctx, profile)
	return profile, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.next.GetByEmail(ctx, email)
}

func (r *profileRepository) ListActive(ctx context.Context) ([]*domain.Profile, error) {
	return r.next.ListActive(ctx)
}

func (r *profileRepository) Update(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.Profile, error) {
	profile, err := r.next.Update(ctx, id, changes)
	r.invalidate(ctx, id)
	return profile, err
}

func (r *profileRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) (*domain.Profile, error) {
	profile, err := r.next.UpdatePassword(ctx, id, passwordHash)
	r.invalidate(ctx, id)
	return profile, err
}

// ReplaceInstruments invalidates on any outcome, including a version conflict, so the
// retry reads the backend.
func (r *profileRepository) ReplaceInstruments(ctx context.Context, id string, expectedVersion int64, instruments []domain.Instrument) (*domain.Profile, error) {
	profile, err := r.next.ReplaceInstruments(ctx, id, expectedVersion, instruments)
	r.invalidate(ctx, id)
	return profile, err
}

func (r *profileRepository) Delete(ctx context.Context, id string) (*domain.Profile, error) {
	profile, err := r.next.Delete(ctx, id)
	r.invalidate(ctx, id)
	return profile, err
}

func (r *profileRepository) DeleteMany(ctx context.Context, filter domain.ProfileFilter) (int64, error) {
	n, err := r.next.DeleteMany(ctx, filter)
	if n > 0 || err != nil {
		if cerr := r.store.Fence(ctx, flushFence); cerr != nil {
			r.logger.Warn("Profile cache: fence failed", "error", cerr)
		}
		if cerr := r.store.DeleteByPattern(ctx, keyPrefix+"*"); cerr != nil {
			r.logger.Warn("Profile cache: flush failed", "error", cerr)
		}
	}
	return n, err
}

// put fills the cache unless a write to this id, or a flush, happened within the fence window.
func (r *profileRepository) put(ctx context.Context, profile *domain.Profile) {
	written, err := r.store.SetJSONUnlessFenced(ctx, key(profile.ID),
		entry{Profile: profile, PasswordHash: profile.Password}, fence(profile.ID), flushFence)
	if err != nil {
		r.logger.Warn("Profile cache: write failed", "id", profile.ID, "error", err)
		return
	}
	if !written {
		r.logger.Debug("Profile cache: fill skipped, recent write", "id", profile.ID)
	}
}

func (r *profileRepository) invalidate(ctx context.Context, id string) {
	if err := r.store.Fence(ctx, fence(id), key(id)); err != nil {
		r.logger.Warn("Profile cache: evict failed", "id", id, "error", err)
	}
}
