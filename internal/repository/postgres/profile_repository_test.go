package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
	"github.com/gdugdh24/bandmate-backend/internal/repository"
)

var _ repository.ProfileRepository = (*profileRepository)(nil)
var _ repository.SchemaMigrator = (*profileRepository)(nil)

var columns = []string{
	"id", "email", "password", "first_name", "last_name", "description", "city", "zip_code",
	"status", "newsletter", "instruments", "version", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*profileRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewProfileRepository(sqlx.NewDb(db, "postgres")).(*profileRepository), mock
}

func profileRows(id string, version int64, instruments string) *sqlmock.Rows {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(columns).AddRow(
		id, "jane@example.com", "hash", "Jane", "Doe", "", "Oslo", "0150",
		true, false, []byte(instruments), version, ts, ts,
	)
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+profiles.*RETURNING\s+version,\s*created_at,\s*updated_at\s*$`).
		WithArgs(sqlmock.AnyArg(), "jane@example.com", "hash", "Jane", "", "", "", "", true, false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"version", "created_at", "updated_at"}).AddRow(1, ts, ts))

	p := &domain.Profile{Email: "jane@example.com", Password: "hash", FirstName: "Jane", Status: true}
	require.NoError(t, repo.Create(context.Background(), p))

	_, err := uuid.Parse(p.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.Version)
	assert.Equal(t, ts, p.CreatedAt)
	assert.NotNil(t, p.Instruments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+profiles`).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &domain.Profile{Email: "jane@example.com"})
	assert.ErrorIs(t, err, domain.ErrProfileAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+profiles`).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.Profile{Email: "jane@example.com"})
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Contains(t, err.Error(), "db down")
}

func TestGetByID(t *testing.T) {
	id := uuid.NewString()
	q := `(?s)^SELECT\s+id,.*FROM\s+profiles\s+WHERE\s+id\s*=\s*\$1\s*$`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(id).
			WillReturnRows(profileRows(id, 2, `[{"id":"i1","instrument_name":"Guitar","skill_level":"Beginner"}]`))

		p, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, p.ID)
		assert.Equal(t, "hash", p.Password)
		assert.Equal(t, int64(2), p.Version)
		assert.Equal(t, []domain.Instrument{{ID: "i1", InstrumentName: "Guitar", SkillLevel: "Beginner"}}, p.Instruments)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(id).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})

	t.Run("malformed id never reaches the database", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		_, err := repo.GetByID(context.Background(), "42")
		assert.ErrorIs(t, err, domain.ErrMalformedID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListActive(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	first, second := uuid.NewString(), uuid.NewString()
	ts := time.Now().UTC()

	rows := sqlmock.NewRows(columns).
		AddRow(first, "a@b.c", "h", "", "", "", "", "", true, false, []byte(`[]`), 1, ts, ts).
		AddRow(second, "x@b.c", "h", "", "", "", "", "", true, true, nil, 1, ts, ts)
	mock.ExpectQuery(`(?s)FROM\s+profiles\s+WHERE\s+status\s*=\s*TRUE`).WillReturnRows(rows)

	profiles, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, first, profiles[0].ID)
	assert.Equal(t, second, profiles[1].ID)
	assert.NotNil(t, profiles[1].Instruments)
}

func TestUpdate_BuildsSetClause(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	id := uuid.NewString()
	city := "Oslo"
	newsletter := true

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE profiles SET city = $1, newsletter = $2, version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $3 RETURNING`)).
		WithArgs("Oslo", true, id).
		WillReturnRows(profileRows(id, 3, `[]`))

	p, err := repo.Update(context.Background(), id, domain.ProfileChanges{City: &city, Newsletter: &newsletter})
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_EmailTaken(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	email := "taken@example.com"

	mock.ExpectQuery(`UPDATE\s+profiles`).WillReturnError(&pq.Error{Code: uniqueViolation})

	_, err := repo.Update(context.Background(), uuid.NewString(), domain.ProfileChanges{Email: &email})
	assert.ErrorIs(t, err, domain.ErrProfileAlreadyExists)
}

func TestUpdatePassword(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	id := uuid.NewString()

	mock.ExpectQuery(`(?s)UPDATE\s+profiles\s+SET\s+password\s*=\s*\$1.*WHERE\s+id\s*=\s*\$2`).
		WithArgs("new-hash", id).
		WillReturnRows(profileRows(id, 4, `[]`))

	p, err := repo.UpdatePassword(context.Background(), id, "new-hash")
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.Version)
}

func TestReplaceInstruments(t *testing.T) {
	id := uuid.NewString()
	q := `(?s)UPDATE\s+profiles\s+SET\s+instruments\s*=\s*\$1.*WHERE\s+id\s*=\s*\$2\s+AND\s+version\s*=\s*\$3`

	t.Run("version matches", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).
			WithArgs([]byte(`[{"id":"i1","instrument_name":"Piano","skill_level":"Advanced"}]`), id, int64(5)).
			WillReturnRows(profileRows(id, 6, `[{"id":"i1","instrument_name":"Piano","skill_level":"Advanced"}]`))

		p, err := repo.ReplaceInstruments(context.Background(), id, 5, []domain.Instrument{
			{ID: "i1", InstrumentName: "Piano", SkillLevel: "Advanced"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(6), p.Version)
		assert.Equal(t, "Piano", p.Instruments[0].InstrumentName)
	})

	t.Run("stale version", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

		_, err := repo.ReplaceInstruments(context.Background(), id, 5, nil)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	})
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	id := uuid.NewString()

	mock.ExpectQuery(`(?s)^DELETE\s+FROM\s+profiles\s+WHERE\s+id\s*=\s*\$1\s+RETURNING`).
		WithArgs(id).
		WillReturnRows(profileRows(id, 1, `[]`))

	p, err := repo.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)

	mock.ExpectQuery(`DELETE\s+FROM\s+profiles`).WithArgs(id).WillReturnError(sql.ErrNoRows)
	_, err = repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestDeleteMany(t *testing.T) {
	t.Run("empty filter removes everything", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(`^DELETE FROM profiles WHERE 1=1$`).
			WillReturnResult(sqlmock.NewResult(0, 7))

		n, err := repo.DeleteMany(context.Background(), domain.ProfileFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})

	t.Run("combined filter", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		inactive := false
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM profiles WHERE 1=1 AND id = ANY($1) AND status = $2`)).
			WithArgs(sqlmock.AnyArg(), false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := repo.DeleteMany(context.Background(), domain.ProfileFilter{
			IDs:    []string{uuid.NewString()},
			Status: &inactive,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("empty id list matches nothing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM profiles WHERE 1=1 AND id = ANY($1)`)).
			WithArgs(sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		n, err := repo.DeleteMany(context.Background(), domain.ProfileFilter{IDs: []string{}})
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id", func(t *testing.T) {
		repo, _ := newRepoWithMock(t)

		_, err := repo.DeleteMany(context.Background(), domain.ProfileFilter{IDs: []string{"nope"}})
		assert.ErrorIs(t, err, domain.ErrMalformedID)
	})
}

func TestMigrate(t *testing.T) {
	repo, _ := newRepoWithMock(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, repo.Migrate(context.Background()))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	err := repo.Migrate(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestInstrumentList_Scan(t *testing.T) {
	var l instrumentList

	require.NoError(t, l.Scan(`[{"id":"1","instrument_name":"Bass","skill_level":"Pro"}]`))
	assert.Equal(t, instrumentList{{ID: "1", InstrumentName: "Bass", SkillLevel: "Pro"}}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, instrumentList{}, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan([]byte("{")))
}
