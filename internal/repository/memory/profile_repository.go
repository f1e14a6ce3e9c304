package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
	"github.com/gdugdh24/bandmate-backend/internal/repository"
)

type profileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile
	order    []string
	now      func() time.Time
}

// NewProfileRepository returns a process-local repository for tests and development.
func NewProfileRepository() repository.ProfileRepository {
	return &profileRepository{
		profiles: make(map[string]*domain.Profile),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *profileRepository) Migrate(ctx context.Context) error {
	return nil
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.profiles {
		if existing.Email == profile.Email {
			return domain.ErrProfileAlreadyExists
		}
	}

	now := r.now()
	profile.ID = uuid.NewString()
	profile.Version = 1
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.Instruments == nil {
		profile.Instruments = []domain.Instrument{}
	}

	r.profiles[profile.ID] = profile.Clone()
	r.order = append(r.order, profile.ID)
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return profile.Clone(), nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if profile := r.profiles[id]; profile.Email == email {
			return profile.Clone(), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (r *profileRepository) ListActive(ctx context.Context) ([]*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]*domain.Profile, 0, len(r.order))
	for _, id := range r.order {
		if profile := r.profiles[id]; profile.Status {
			profiles = append(profiles, profile.Clone())
		}
	}
	return profiles, nil
}

func (r *profileRepository) Update(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.Profile, error) {
	return r.modify(id, func(profile *domain.Profile) error {
		if changes.Email != nil && *changes.Email != profile.Email {
			for otherID, other := range r.profiles {
				if otherID != id && other.Email == *changes.Email {
					return domain.ErrProfileAlreadyExists
				}
			}
		}
		changes.Apply(profile)
		return nil
	})
}

func (r *profileRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) (*domain.Profile, error) {
	return r.modify(id, func(profile *domain.Profile) error {
		profile.Password = passwordHash
		return nil
	})
}

func (r *profileRepository) ReplaceInstruments(ctx context.Context, id string, expectedVersion int64, instruments []domain.Instrument) (*domain.Profile, error) {
	return r.modify(id, func(profile *domain.Profile) error {
		if profile.Version != expectedVersion {
			return domain.ErrVersionConflict
		}
		profile.Instruments = append([]domain.Instrument{}, instruments...)
		return nil
	})
}

func (r *profileRepository) Delete(ctx context.Context, id string) (*domain.Profile, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	r.remove(id)
	return profile, nil
}

func (r *profileRepository) DeleteMany(ctx context.Context, filter domain.ProfileFilter) (int64, error) {
	for _, id := range filter.IDs {
		if err := validateID(id); err != nil {
			return 0, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, id := range append([]string{}, r.order...) {
		if filter.Matches(r.profiles[id]) {
			r.remove(id)
			deleted++
		}
	}
	return deleted, nil
}

// modify runs fn on a copy of the stored profile and commits it with a bumped version.
func (r *profileRepository) modify(id string, fn func(profile *domain.Profile) error) (*domain.Profile, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	profile := stored.Clone()
	if err := fn(profile); err != nil {
		return nil, err
	}
	profile.Version++
	profile.UpdatedAt = r.now()

	r.profiles[id] = profile
	return profile.Clone(), nil
}

func (r *profileRepository) remove(id string) {
	delete(r.profiles, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrMalformedID
	}
	return nil
}
