// Package profile holds the user shipping/contact profile domain.
package profile

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a user has no profile record.
var ErrNotFound = errors.New("profile not found")

// Profile is the shipping and contact record for a user, one-to-one with the
// user id. Checkout reads it to snapshot the shipping address into the order.
type Profile struct {
	UserID    int
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string
	City      string
	State     string
	Zip       string
}

// Update describes a partial profile update. Nil fields keep the stored value.
type Update struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	Address   *string
	City      *string
	State     *string
	Zip       *string
}

// Repository defines persistence operations for profiles.
type Repository interface {
	GetByUserID(ctx context.Context, userID int) (*Profile, error)
	Create(ctx context.Context, p Profile) error
	Update(ctx context.Context, userID int, upd Update) error
}
