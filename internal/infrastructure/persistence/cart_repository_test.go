package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared"
)

// newMockCartRepository creates a GormCartRepository with a mocked SQL connection
func newMockCartRepository(t *testing.T) (*GormCartRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormCartRepository(gormDB), mock, mockDB
}

func TestGormCartRepository_FindBySession(t *testing.T) {
	t.Run("returns session lines oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockCartRepository(t)
		defer mockDB.Close()

		lineID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "session_id", "product_id", "product_name", "quantity",
			"width_in", "height_in", "unit_price", "price_snapshot", "created_at", "updated_at",
		}).AddRow(
			lineID, "sess-1", "roller-shade-std", "Roller Shade", 2,
			decimal.NewFromInt(36), decimal.NewFromInt(48), decimal.NewFromFloat(49.99),
			[]byte(`{"capturedAt":"2026-08-01T10:00:00Z","manufacturerPrice":{"unitCost":30,"source":"database"},"margin":{"value":40,"amount":20,"percentage":40},"customerPrice":{"unitPrice":49.99,"lineTotal":99.98,"optionsTotal":0,"accessoriesTotal":0}}`),
			time.Now(), time.Now(),
		)

		mock.ExpectQuery(`SELECT \* FROM "cart_lines" WHERE session_id = \$1 ORDER BY created_at ASC`).
			WithArgs("sess-1").
			WillReturnRows(rows)

		lines, err := repo.FindBySession(context.Background(), "sess-1")

		assert.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, lineID, lines[0].ID)
		assert.Equal(t, "sess-1", lines[0].SessionID)
		assert.True(t, lines[0].HasSnapshot())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice for unknown session", func(t *testing.T) {
		repo, mock, mockDB := newMockCartRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "cart_lines" WHERE session_id = \$1 ORDER BY created_at ASC`).
			WithArgs("sess-missing").
			WillReturnRows(sqlmock.NewRows([]string{"id", "session_id"}))

		lines, err := repo.FindBySession(context.Background(), "sess-missing")

		assert.NoError(t, err)
		assert.Empty(t, lines)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCartRepository_FindLineByID(t *testing.T) {
	t.Run("returns ErrNotFound for missing line", func(t *testing.T) {
		repo, mock, mockDB := newMockCartRepository(t)
		defer mockDB.Close()

		lineID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cart_lines" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(lineID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		line, err := repo.FindLineByID(context.Background(), lineID)

		assert.Error(t, err)
		assert.Nil(t, line)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCartRepository_SaveLine(t *testing.T) {
	t.Run("updates an existing line", func(t *testing.T) {
		repo, mock, mockDB := newMockCartRepository(t)
		defer mockDB.Close()

		line, err := ordering.NewCartLine("sess-1", "roller-shade-std", "Roller Shade", 2,
			decimal.NewFromInt(36), decimal.NewFromInt(48), decimal.NewFromFloat(49.99))
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "cart_lines" SET .* WHERE "id" = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SaveLine(context.Background(), line)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCartRepository_DeleteLine(t *testing.T) {
	t.Run("deletes existing line", func(t *testing.T) {
		repo, mock, mockDB := newMockCartRepository(t)
		defer mockDB.Close()

		lineID := uuid.New()

		mock.ExpectExec(`DELETE FROM "cart_lines" WHERE id = \$1`).
			WithArgs(lineID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteLine(context.Background(), lineID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockCartRepository(t)
		defer mockDB.Close()

		lineID := uuid.New()

		mock.ExpectExec(`DELETE FROM "cart_lines" WHERE id = \$1`).
			WithArgs(lineID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteLine(context.Background(), lineID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCartRepository_ClearSession(t *testing.T) {
	t.Run("removes every line for the session", func(t *testing.T) {
		repo, mock, mockDB := newMockCartRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "cart_lines" WHERE session_id = \$1`).
			WithArgs("sess-1").
			WillReturnResult(sqlmock.NewResult(0, 3))

		err := repo.ClearSession(context.Background(), "sess-1")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCartRepository_CountBySession(t *testing.T) {
	t.Run("counts session lines", func(t *testing.T) {
		repo, mock, mockDB := newMockCartRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "cart_lines" WHERE session_id = \$1`).
			WithArgs("sess-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountBySession(context.Background(), "sess-1")

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
