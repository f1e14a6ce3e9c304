package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
	"github.com/gdugdh24/bandmate-backend/internal/repository"
	"github.com/gdugdh24/bandmate-backend/internal/repository/postgres/migrations"
)

const profileColumns = `id, email, password, first_name, last_name, description, city, zip_code,
	status, newsletter, instruments, version, created_at, updated_at`

const uniqueViolation = "23505"

type profileRow struct {
	ID          string         `db:"id"`
	Email       string         `db:"email"`
	Password    string         `db:"password"`
	FirstName   string         `db:"first_name"`
	LastName    string         `db:"last_name"`
	Description string         `db:"description"`
	City        string         `db:"city"`
	ZipCode     string         `db:"zip_code"`
	Status      bool           `db:"status"`
	Newsletter  bool           `db:"newsletter"`
	Instruments instrumentList `db:"instruments"`
	Version     int64          `db:"version"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *profileRow) toDomain() *domain.Profile {
	instruments := []domain.Instrument(r.Instruments)
	if instruments == nil {
		instruments = []domain.Instrument{}
	}
	return &domain.Profile{
		ID:          r.ID,
		Email:       r.Email,
		Password:    r.Password,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Description: r.Description,
		City:        r.City,
		ZipCode:     r.ZipCode,
		Status:      r.Status,
		Newsletter:  r.Newsletter,
		Instruments: instruments,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded goose migrations.
func (r *profileRepository) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, r.db.DB, "."); err != nil {
		return storageError("run migrations", err)
	}
	return nil
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (
			id, email, password, first_name, last_name, description, city, zip_code,
			status, newsletter, instruments
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING version, created_at, updated_at
	`
	id := uuid.NewString()
	err := r.db.QueryRowContext(
		ctx, query,
		id, profile.Email, profile.Password, profile.FirstName, profile.LastName,
		profile.Description, profile.City, profile.ZipCode,
		profile.Status, profile.Newsletter, instrumentList(profile.Instruments),
	).Scan(&profile.Version, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProfileAlreadyExists
		}
		return storageError("create profile", err)
	}

	profile.ID = id
	if profile.Instruments == nil {
		profile.Instruments = []domain.Instrument{}
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, domain.ErrProfileNotFound, id)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, domain.ErrProfileNotFound, email)
}

func (r *profileRepository) ListActive(ctx context.Context) ([]*domain.Profile, error) {
	var rows []profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE status = TRUE ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, storageError("list active profiles", err)
	}

	profiles := make([]*domain.Profile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].toDomain())
	}
	return profiles, nil
}

func (r *profileRepository) Update(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.Profile, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []interface{}{}
	argCount := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
		argCount++
	}

	if changes.Email != nil {
		add("email", *changes.Email)
	}
	if changes.FirstName != nil {
		add("first_name", *changes.FirstName)
	}
	if changes.LastName != nil {
		add("last_name", *changes.LastName)
	}
	if changes.Description != nil {
		add("description", *changes.Description)
	}
	if changes.City != nil {
		add("city", *changes.City)
	}
	if changes.ZipCode != nil {
		add("zip_code", *changes.ZipCode)
	}
	if changes.Status != nil {
		add("status", *changes.Status)
	}
	if changes.Newsletter != nil {
		add("newsletter", *changes.Newsletter)
	}

	sets = append(sets, "version = version + 1", "updated_at = CURRENT_TIMESTAMP")
	query := fmt.Sprintf(
		`UPDATE profiles SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argCount, profileColumns,
	)
	args = append(args, id)

	return r.getOne(ctx, query, domain.ErrProfileNotFound, args...)
}

func (r *profileRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) (*domain.Profile, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	query := `
		UPDATE profiles
		SET password = $1, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING ` + profileColumns
	return r.getOne(ctx, query, domain.ErrProfileNotFound, passwordHash, id)
}

func (r *profileRepository) ReplaceInstruments(ctx context.Context, id string, expectedVersion int64, instruments []domain.Instrument) (*domain.Profile, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	query := `
		UPDATE profiles
		SET instruments = $1, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND version = $3
		RETURNING ` + profileColumns
	return r.getOne(ctx, query, domain.ErrVersionConflict, instrumentList(instruments), id, expectedVersion)
}

func (r *profileRepository) Delete(ctx context.Context, id string) (*domain.Profile, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return r.getOne(ctx, `DELETE FROM profiles WHERE id = $1 RETURNING `+profileColumns, domain.ErrProfileNotFound, id)
}

func (r *profileRepository) DeleteMany(ctx context.Context, filter domain.ProfileFilter) (int64, error) {
	query := `DELETE FROM profiles WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.IDs != nil {
		for _, id := range filter.IDs {
			if err := validateID(id); err != nil {
				return 0, err
			}
		}
		query += fmt.Sprintf(" AND id = ANY($%d)", argCount)
		args = append(args, pq.Array(filter.IDs))
		argCount++
	}

	if filter.Email != nil {
		query += fmt.Sprintf(" AND email = $%d", argCount)
		args = append(args, *filter.Email)
		argCount++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.Newsletter != nil {
		query += fmt.Sprintf(" AND newsletter = $%d", argCount)
		args = append(args, *filter.Newsletter)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageError("delete profiles", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, storageError("count deleted profiles", err)
	}
	return rows, nil
}

// getOne runs a single-row query and maps an empty result to notFound.
func (r *profileRepository) getOne(ctx context.Context, query string, notFound error, args ...interface{}) (*domain.Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrProfileAlreadyExists
		}
		return nil, storageError("query profile", err)
	}
	return row.toDomain(), nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrMalformedID, id)
	}
	return nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrStorage, err)
}
