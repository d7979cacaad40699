package address

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := &Repo{DB: mock}

	mock.ExpectQuery(`FROM addresses WHERE id=\$1 AND user_id=\$2`).
		WithArgs(int64(5), int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := repo.Owns(context.Background(), 7, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`FROM addresses`).
		WithArgs(int64(5), int64(8)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	ok, err = repo.Owns(context.Background(), 8, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectQuery(`FROM addresses`).WillReturnError(errors.New("conn reset"))
	_, err = repo.Owns(context.Background(), 8, 5)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var addressColumns = []string{"id", "user_id", "title", "receiver", "province_id", "city_id", "district_id", "place", "mobile", "tel", "email"}

func TestList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM default_addresses WHERE user_id=\$1`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(12)))
	mock.ExpectQuery(`FROM addresses WHERE user_id=\$1 AND NOT is_deleted ORDER BY id`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(addressColumns).
			AddRow(int64(11), int64(7), "Home", "Ana", int64(1), int64(2), int64(3), "Jl. Mawar 1", "13800000000", "", "").
			AddRow(int64(12), int64(7), "Office", "Ana", int64(1), int64(2), int64(4), "Jl. Melati 2", "13800000000", "", "ana@example.com"))

	list, defaultID, err := (&Repo{DB: mock}).List(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(12), defaultID)
	require.Len(t, list, 2)
	assert.Equal(t, "Office", list[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := &Repo{DB: mock}

	a := &Address{UserID: 7, Receiver: "Ana", ProvinceID: 1, CityID: 2, DistrictID: 3, Place: "Jl. Mawar 1", Mobile: "13800000000"}
	mock.ExpectQuery(`INSERT INTO addresses.+WHERE \(SELECT COUNT\(\*\) FROM addresses WHERE user_id=\$1 AND NOT is_deleted\) < \$11`).
		WithArgs(int64(7), "Ana", "Ana", int64(1), int64(2), int64(3), "Jl. Mawar 1", "13800000000", "", "", MaxPerUser).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(21)))
	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, int64(21), a.ID)
	assert.Equal(t, "Ana", a.Title)

	// penuh: INSERT ... SELECT tidak menghasilkan baris
	mock.ExpectQuery(`INSERT INTO addresses`).WillReturnError(pgx.ErrNoRows)
	err = repo.Create(context.Background(), &Address{UserID: 7, Receiver: "Budi"})
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := &Repo{DB: mock}

	mock.ExpectExec(`UPDATE addresses SET title=\$3`).
		WithArgs(int64(11), int64(7), "Home", "Ana", int64(1), int64(2), int64(3), "Jl. Mawar 9", "13800000000", "", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Update(context.Background(), &Address{
		ID: 11, UserID: 7, Title: "Home", Receiver: "Ana", ProvinceID: 1, CityID: 2, DistrictID: 3,
		Place: "Jl. Mawar 9", Mobile: "13800000000",
	}))

	mock.ExpectExec(`UPDATE addresses`).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err = repo.Update(context.Background(), &Address{ID: 11, UserID: 8, Receiver: "Eve"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := &Repo{DB: mock}

	mock.ExpectExec(`UPDATE addresses SET is_deleted=TRUE`).
		WithArgs(int64(11), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM default_addresses WHERE user_id=\$1 AND address_id=\$2`).
		WithArgs(int64(7), int64(11)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(context.Background(), 7, 11))

	mock.ExpectExec(`UPDATE addresses SET is_deleted=TRUE`).
		WithArgs(int64(11), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 7, 11), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDefaultAndTitle(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := &Repo{DB: mock}

	mock.ExpectExec(`INSERT INTO default_addresses.+ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs(int64(7), int64(11)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.SetDefault(context.Background(), 7, 11))

	mock.ExpectExec(`INSERT INTO default_addresses`).
		WithArgs(int64(8), int64(11)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	assert.ErrorIs(t, repo.SetDefault(context.Background(), 8, 11), ErrNotFound)

	mock.ExpectExec(`UPDATE addresses SET title=\$3, updated_at=now\(\)`).
		WithArgs(int64(11), int64(7), "Rumah").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.SetTitle(context.Background(), 7, 11, "Rumah"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
