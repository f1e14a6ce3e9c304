package profile

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
	"github.com/gdugdh24/bandmate-backend/internal/repository"
)

var _ repository.ProfileRepository = (*MockProfileRepository)(nil)
var _ PasswordHasher = (*MockPasswordHasher)(nil)

// MockProfileRepository mocks the ProfileRepository interface
type MockProfileRepository struct {
	mock.Mock
}

func profileArg(args mock.Arguments) *domain.Profile {
	if p, ok := args.Get(0).(*domain.Profile); ok {
		return p
	}
	return nil
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	return profileArg(args), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	return profileArg(args), args.Error(1)
}

func (m *MockProfileRepository) ListActive(ctx context.Context) ([]*domain.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.Profile, error) {
	args := m.Called(ctx, id, changes)
	return profileArg(args), args.Error(1)
}

func (m *MockProfileRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) (*domain.Profile, error) {
	args := m.Called(ctx, id, passwordHash)
	return profileArg(args), args.Error(1)
}

func (m *MockProfileRepository) ReplaceInstruments(ctx context.Context, id string, expectedVersion int64, instruments []domain.Instrument) (*domain.Profile, error) {
	args := m.Called(ctx, id, expectedVersion, instruments)
	return profileArg(args), args.Error(1)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	return profileArg(args), args.Error(1)
}

func (m *MockProfileRepository) DeleteMany(ctx context.Context, filter domain.ProfileFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordHasher mocks the PasswordHasher interface
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}
