package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-realtime-checkout/internal/orders"
	"github.com/jackc/pgx/v5"
)

// MaxPerUser caps live (not deleted) addresses of one user.
const MaxPerUser = 20

var (
	ErrNotFound     = errors.New("address not found")
	ErrLimitReached = errors.New("address limit reached")
)

type Address struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Title      string `json:"title"`
	Receiver   string `json:"receiver"`
	ProvinceID int64  `json:"province_id"`
	CityID     int64  `json:"city_id"`
	DistrictID int64  `json:"district_id"`
	Place      string `json:"place"`
	Mobile     string `json:"mobile"`
	Tel        string `json:"tel"`
	Email      string `json:"email"`
}

type Repo struct{ DB orders.DBTX }

// Owns reports whether addressID is a live address of userID.
func (r *Repo) Owns(ctx context.Context, userID, addressID int64) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM addresses WHERE id=$1 AND user_id=$2 AND NOT is_deleted)`,
		addressID, userID).Scan(&ok)
	return ok, err
}

// List returns the live addresses of userID and its default address id, 0 if unset.
func (r *Repo) List(ctx context.Context, userID int64) ([]Address, int64, error) {
	var defaultID int64
	if err := r.DB.QueryRow(ctx, `
		SELECT COALESCE((SELECT address_id FROM default_addresses WHERE user_id=$1), 0)`, userID).
		Scan(&defaultID); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, title, receiver, province_id, city_id, district_id, place, mobile, tel, email
		FROM addresses WHERE user_id=$1 AND NOT is_deleted ORDER BY id`, userID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Address{}
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Receiver, &a.ProvinceID, &a.CityID, &a.DistrictID,
			&a.Place, &a.Mobile, &a.Tel, &a.Email); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, defaultID, rows.Err()
}

// Create inserts a for a.UserID unless the user already has MaxPerUser live
// addresses. The count and the insert are one statement. An empty title
// defaults to the receiver.
func (r *Repo) Create(ctx context.Context, a *Address) error {
	if a.Title == "" {
		a.Title = a.Receiver
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO addresses(user_id, title, receiver, province_id, city_id, district_id, place, mobile, tel, email)
		SELECT $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
		WHERE (SELECT COUNT(*) FROM addresses WHERE user_id=$1 AND NOT is_deleted) < $11
		RETURNING id`,
		a.UserID, a.Title, a.Receiver, a.ProvinceID, a.CityID, a.DistrictID, a.Place, a.Mobile, a.Tel, a.Email,
		MaxPerUser).Scan(&a.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLimitReached
	}
	return err
}

func (r *Repo) Update(ctx context.Context, a *Address) error {
	if a.Title == "" {
		a.Title = a.Receiver
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE addresses SET title=$3, receiver=$4, province_id=$5, city_id=$6, district_id=$7,
		       place=$8, mobile=$9, tel=$10, email=$11, updated_at=now()
		WHERE id=$1 AND user_id=$2 AND NOT is_deleted`,
		a.ID, a.UserID, a.Title, a.Receiver, a.ProvinceID, a.CityID, a.DistrictID, a.Place, a.Mobile, a.Tel, a.Email)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, a.ID)
	}
	return nil
}

// Delete is a soft delete; a default pointing at the address is cleared.
func (r *Repo) Delete(ctx context.Context, userID, addressID int64) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE addresses SET is_deleted=TRUE, updated_at=now()
		WHERE id=$1 AND user_id=$2 AND NOT is_deleted`, addressID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, addressID)
	}
	_, err = r.DB.Exec(ctx, `DELETE FROM default_addresses WHERE user_id=$1 AND address_id=$2`, userID, addressID)
	return err
}

func (r *Repo) SetDefault(ctx context.Context, userID, addressID int64) error {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO default_addresses(user_id, address_id)
		SELECT user_id, id FROM addresses WHERE id=$2 AND user_id=$1 AND NOT is_deleted
		ON CONFLICT (user_id) DO UPDATE SET address_id=EXCLUDED.address_id`, userID, addressID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, addressID)
	}
	return nil
}

func (r *Repo) SetTitle(ctx context.Context, userID, addressID int64, title string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE addresses SET title=$3, updated_at=now()
		WHERE id=$1 AND user_id=$2 AND NOT is_deleted`, addressID, userID, title)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, addressID)
	}
	return nil
}
