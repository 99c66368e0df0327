package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPullCursorRepository creates a GormPullCursorRepository with a mocked SQL connection
func newMockPullCursorRepository(t *testing.T) (*GormPullCursorRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPullCursorRepository(gormDB), mock, mockDB
}

func cursorColumns() []string {
	return []string{
		"fingerprint", "kind", "next_token", "total_pulled", "completed",
		"last_activity_at", "filters", "created_at", "updated_at",
	}
}

func TestGormPullCursorRepository_FindByFingerprint(t *testing.T) {
	t.Run("finds existing cursor", func(t *testing.T) {
		repo, mock, mockDB := newMockPullCursorRepository(t)
		defer mockDB.Close()

		now := time.Now()

		rows := sqlmock.NewRows(cursorColumns()).
			AddRow("fp-1", "PULL_CUSTOMERS", "tok-3", 150, false, now, `{"group":"vip"}`, now, now)

		mock.ExpectQuery(`SELECT \* FROM "pull_cursors" WHERE fingerprint = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("fp-1", 1).
			WillReturnRows(rows)

		cursor, err := repo.FindByFingerprint(context.Background(), "fp-1")

		assert.NoError(t, err)
		assert.NotNil(t, cursor)
		assert.Equal(t, "tok-3", cursor.NextToken)
		assert.Equal(t, 150, cursor.TotalPulled)
		assert.False(t, cursor.Completed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns domain error for missing cursor", func(t *testing.T) {
		repo, mock, mockDB := newMockPullCursorRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "pull_cursors" WHERE fingerprint = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("fp-missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		cursor, err := repo.FindByFingerprint(context.Background(), "fp-missing")

		assert.Nil(t, cursor)
		assert.ErrorIs(t, err, syncdomain.ErrCursorNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPullCursorRepository_Delete(t *testing.T) {
	t.Run("deletes existing cursor", func(t *testing.T) {
		repo, mock, mockDB := newMockPullCursorRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "pull_cursors" WHERE fingerprint = \$1`).
			WithArgs("fp-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), "fp-1")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns domain error when nothing deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockPullCursorRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "pull_cursors" WHERE fingerprint = \$1`).
			WithArgs("fp-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), "fp-missing")

		assert.ErrorIs(t, err, syncdomain.ErrCursorNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPullCursorRepository_DeleteByKind(t *testing.T) {
	t.Run("deletes all cursors for a kind", func(t *testing.T) {
		repo, mock, mockDB := newMockPullCursorRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "pull_cursors" WHERE kind = \$1`).
			WithArgs(syncdomain.JobKindPullProducts).
			WillReturnResult(sqlmock.NewResult(0, 3))

		err := repo.DeleteByKind(context.Background(), syncdomain.JobKindPullProducts)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPullCursorRepository_FindAll(t *testing.T) {
	t.Run("lists cursors most recently active first", func(t *testing.T) {
		repo, mock, mockDB := newMockPullCursorRepository(t)
		defer mockDB.Close()

		now := time.Now()

		rows := sqlmock.NewRows(cursorColumns()).
			AddRow("fp-2", "PULL_PRODUCTS", "", 300, true, now, "{}", now, now).
			AddRow("fp-1", "PULL_CUSTOMERS", "tok-9", 80, false, now.Add(-time.Hour), "{}", now, now)

		mock.ExpectQuery(`SELECT \* FROM "pull_cursors" ORDER BY last_activity_at DESC`).
			WillReturnRows(rows)

		cursors, err := repo.FindAll(context.Background())

		assert.NoError(t, err)
		require.Len(t, cursors, 2)
		assert.Equal(t, "fp-2", cursors[0].Fingerprint)
		assert.True(t, cursors[0].Completed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
