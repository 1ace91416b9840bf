package sql_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
	"github.com/iyhunko/inventory-dashboard/internal/repository/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRepository_SaleLines(t *testing.T) {
	columns := []string{"sale_id", "product_id", "description", "categories", "quantity", "sale_value_brl", "sale_date"}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewReportRepository(db, "sqlmock")
	ctx := context.Background()

	t.Run("joined lines oldest first", func(t *testing.T) {
		productA, productB := uuid.New(), uuid.New()
		first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(columns).
			AddRow(uuid.NewString(), productA.String(), "Notebook Dell Inspiron", "{Eletrônicos}", 1, 4500.0, first).
			AddRow(uuid.NewString(), productB.String(), "", "{}", 2, 119.8, first.Add(time.Hour))

		mock.ExpectQuery("LEFT JOIN dashboard_products d ON d.original_id = s.product_id AND d.owner = s.owner\\s+WHERE s.owner = \\$1 ORDER BY s.sale_date ASC").
			WithArgs("user@example.com").
			WillReturnRows(rows)

		lines, err := repo.SaleLines(ctx, *repository.NewQuery().With(repository.OwnerField, "user@example.com"))
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, productA, lines[0].ProductID)
		assert.Equal(t, []string{"Eletrônicos"}, lines[0].Categories)
		assert.Equal(t, 4500.0, lines[0].ValueBRL)
		assert.Empty(t, lines[1].Description)
		assert.Empty(t, lines[1].Categories)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bounded range", func(t *testing.T) {
		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)

		mock.ExpectQuery("WHERE s.owner = \\$1 AND s.sale_date >= \\$2 AND s.sale_date <= \\$3 ORDER BY").
			WithArgs("user@example.com", from, to).
			WillReturnRows(sqlmock.NewRows(columns))

		query := repository.NewQuery().With(repository.OwnerField, "user@example.com").Between(&from, &to)
		lines, err := repo.SaleLines(ctx, *query)
		require.NoError(t, err)
		assert.Empty(t, lines)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
