package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
	"github.com/gdugdh24/bandmate-backend/internal/logger"
	"github.com/gdugdh24/bandmate-backend/internal/repository"
)

const DefaultMaxRetries = 3

// PasswordHasher turns a plaintext password into its stored form.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	hasher      PasswordHasher
	logger      *logger.Logger
	maxRetries  int
	newID       func() string
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	hasher PasswordHasher,
	log *logger.Logger,
	maxRetries int,
) *ProfileUseCase {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &ProfileUseCase{
		profileRepo: profileRepo,
		hasher:      hasher,
		logger:      log,
		maxRetries:  maxRetries,
		newID:       uuid.NewString,
	}
}

// CreateProfileInput represents profile creation request
type CreateProfileInput struct {
	Email       string            `json:"email"`
	Password    string            `json:"password"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Description string            `json:"description"`
	City        string            `json:"city"`
	ZipCode     string            `json:"zip_code"`
	Status      bool              `json:"status"`
	Newsletter  bool              `json:"newsletter"`
	Instruments []InstrumentInput `json:"instruments"`
}

// ProfileUpdate represents a partial profile update; nil fields are left untouched
type ProfileUpdate struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Description *string `json:"description"`
	City        *string `json:"city"`
	ZipCode     *string `json:"zip_code"`
	Status      *bool   `json:"status"`
}

// NewsletterUpdate represents newsletter preference update request
type NewsletterUpdate struct {
	Newsletter *bool `json:"newsletter"`
}

// UpdatePasswordInput represents password change request
type UpdatePasswordInput struct {
	Password string `json:"password"`
}

func (u ProfileUpdate) changes() domain.ProfileChanges {
	return domain.ProfileChanges{
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Description: u.Description,
		City:        u.City,
		ZipCode:     u.ZipCode,
		Status:      u.Status,
	}
}

// FindOneByEmail returns the profile with exactly this email
func (uc *ProfileUseCase) FindOneByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return uc.profileRepo.GetByEmail(ctx, email)
}

// FindAll returns every active profile
func (uc *ProfileUseCase) FindAll(ctx context.Context) ([]*domain.Profile, error) {
	return uc.profileRepo.ListActive(ctx)
}

// FindSpecific returns the profile with the given id
func (uc *ProfileUseCase) FindSpecific(ctx context.Context, id string) (*domain.Profile, error) {
	return uc.profileRepo.GetByID(ctx, id)
}

// Create hashes the password and stores a new profile. Instruments sharing a name are rejected.
func (uc *ProfileUseCase) Create(ctx context.Context, input CreateProfileInput) (*domain.Profile, error) {
	instruments := make([]domain.Instrument, 0, len(input.Instruments))
	for _, inst := range input.Instruments {
		var outcome domain.InstrumentOutcome
		instruments, outcome = domain.AddInstrument(instruments, domain.Instrument{
			ID:             uc.newID(),
			InstrumentName: inst.InstrumentName,
			SkillLevel:     inst.SkillLevel,
		})
		if outcome == domain.OutcomeDuplicate {
			return nil, fmt.Errorf("%w: instrument %q listed more than once", domain.ErrInvalidInput, inst.InstrumentName)
		}
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		uc.logger.Error("Profile service: failed to hash password", "email", input.Email, "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &domain.Profile{
		Email:       input.Email,
		Password:    hash,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Description: input.Description,
		City:        input.City,
		ZipCode:     input.ZipCode,
		Status:      input.Status,
		Newsletter:  input.Newsletter,
		Instruments: instruments,
	}

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	uc.logger.Info("Profile service: profile created", "id", profile.ID)
	return profile, nil
}

// Update applies a partial update and returns the profile as stored afterwards
func (uc *ProfileUseCase) Update(ctx context.Context, id string, update ProfileUpdate) (*domain.Profile, error) {
	return uc.applyChanges(ctx, id, update.changes())
}

// UpdateNewsletter changes only the newsletter preference
func (uc *ProfileUseCase) UpdateNewsletter(ctx context.Context, id string, update NewsletterUpdate) (*domain.Profile, error) {
	return uc.applyChanges(ctx, id, domain.ProfileChanges{Newsletter: update.Newsletter})
}

func (uc *ProfileUseCase) applyChanges(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.Profile, error) {
	if changes.IsEmpty() {
		return uc.profileRepo.GetByID(ctx, id)
	}

	profile, err := uc.profileRepo.Update(ctx, id, changes)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// Delete removes the profile and returns it
func (uc *ProfileUseCase) Delete(ctx context.Context, id string) (*domain.Profile, error) {
	profile, err := uc.profileRepo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete profile: %w", err)
	}

	uc.logger.Info("Profile service: profile deleted", "id", id)
	return profile, nil
}

// DeleteMany removes every profile matching filter; an empty filter removes all of them
func (uc *ProfileUseCase) DeleteMany(ctx context.Context, filter domain.ProfileFilter) (int64, error) {
	n, err := uc.profileRepo.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete profiles: %w", err)
	}

	uc.logger.Info("Profile service: profiles deleted", "count", n)
	return n, nil
}

// UpdatePassword checks the profile exists, hashes the new password and stores only the hash
func (uc *ProfileUseCase) UpdatePassword(ctx context.Context, id string, input UpdatePasswordInput) (*domain.Profile, error) {
	if _, err := uc.profileRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		uc.logger.Error("Profile service: failed to hash password", "id", id, "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile, err := uc.profileRepo.UpdatePassword(ctx, id, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	uc.logger.Info("Profile service: password updated", "id", id)
	return profile, nil
}
