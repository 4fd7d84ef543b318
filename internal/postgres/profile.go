package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/pixelpalace/storefront-api/internal/domain/profile"
)

const (
	getProfileSQL = `SELECT user_id, first_name, last_name, phone, email, address, city, state, zip
		FROM profiles WHERE user_id = $1`

	createProfileSQL = `INSERT INTO profiles (user_id, first_name, last_name, phone, email, address, city, state, zip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateProfileSQL = `UPDATE profiles
		SET first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			phone = COALESCE($4, phone),
			email = COALESCE($5, email),
			address = COALESCE($6, address),
			city = COALESCE($7, city),
			state = COALESCE($8, state),
			zip = COALESCE($9, zip)
		WHERE user_id = $1`
)

var _ profile.Repository = (*ProfileRepository)(nil)

// ProfileRepository implements profile.Repository backed by PostgreSQL.
type ProfileRepository struct {
	db Querier
}

// NewProfileRepository returns a ProfileRepository using the given Querier.
func NewProfileRepository(db Querier) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID returns the profile for a user id.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int) (*profile.Profile, error) {
	rows, err := r.db.Query(ctx, getProfileSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("getting profile for user %d: %w", userID, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProfile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrNotFound
		}
		return nil, fmt.Errorf("getting profile for user %d: %w", userID, err)
	}
	return &p, nil
}

// Create inserts a new profile record.
func (r *ProfileRepository) Create(ctx context.Context, p profile.Profile) error {
	_, err := r.db.Exec(ctx, createProfileSQL,
		p.UserID, p.FirstName, p.LastName, p.Phone, p.Email, p.Address, p.City, p.State, p.Zip,
	)
	if err != nil {
		return fmt.Errorf("creating profile for user %d: %w", p.UserID, err)
	}
	return nil
}

// Update applies a partial update; nil fields keep their stored values.
func (r *ProfileRepository) Update(ctx context.Context, userID int, upd profile.Update) error {
	tag, err := r.db.Exec(ctx, updateProfileSQL, userID,
		upd.FirstName, upd.LastName, upd.Phone, upd.Email, upd.Address, upd.City, upd.State, upd.Zip,
	)
	if err != nil {
		return fmt.Errorf("updating profile for user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.CollectableRow) (profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(
		&p.UserID, &p.FirstName, &p.LastName, &p.Phone, &p.Email,
		&p.Address, &p.City, &p.State, &p.Zip,
	)
	return p, err
}
