package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListByCategory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	updated := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM skus WHERE category_id=\$1 AND is_launched`).
		WithArgs(int64(115)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY price DESC, id LIMIT \$2 OFFSET \$3`).
		WithArgs(int64(115), 1, 1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "category_id", "name", "default_image_url", "price", "stock", "sales", "updated_at"}).
			AddRow(int64(3), int64(115), "Laptop", "http://img/3.jpg", "6999.00", 4, 12, updated))

	page, err := (&Repo{DB: mock}).ListByCategory(context.Background(), 115, "-price", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "6999", page.Results[0].Price.String())
	assert.Equal(t, updated, page.Results[0].UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByCategory_RejectsUnknownOrdering(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = (&Repo{DB: mock}).ListByCategory(context.Background(), 1, "name; DROP TABLE skus", 1, 20)
	assert.ErrorIs(t, err, ErrBadOrdering)
	assert.NoError(t, mock.ExpectationsWereMet())
}
