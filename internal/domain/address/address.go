package address

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a referenced address does not exist.
	ErrNotFound = errors.New("address not found")
	// ErrProvinceNotFound is returned for an unknown province ID.
	ErrProvinceNotFound = errors.New("province not found")
	// ErrPermissionDenied is returned when the requester does not own the address.
	ErrPermissionDenied = errors.New("permission denied")
)

// Type distinguishes home and office delivery addresses.
type Type string

const (
	TypeHome   Type = "home"
	TypeOffice Type = "office"
)

// Address is a user delivery address pointing into the geographic reference
// data by ID.
type Address struct {
	ID          string
	UserID      string
	FullName    string
	PhoneNumber string
	Type        Type
	ProvinceID  string
	DistrictID  string
	WardID      string
	StreetID    string
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Province is a top-level geographic division. Districts, wards, and streets
// hang off it; the whole dataset is read-only reference material loaded in
// bulk by the geo-ingest tool.
type Province struct {
	ID   string
	Name string
}

// District is a second-level division inside a province.
type District struct {
	ID         string
	ProvinceID string
	Name       string
}

// Ward is a third-level division inside a district.
type Ward struct {
	ID         string
	DistrictID string
	Name       string
}

// Street is a named street inside a district.
type Street struct {
	ID         string
	DistrictID string
	Name       string
}

// Repository defines persistence operations for delivery addresses.
type Repository interface {
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) (*Address, error)
	Delete(ctx context.Context, userID, id string) error
	GetByID(ctx context.Context, id string) (*Address, error)
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	// SetDefault marks one address as the user's default and clears the
	// flag on every other address of the user in the same transaction.
	SetDefault(ctx context.Context, userID, id string) error
}

// GeoRepository provides read-only lookups over the geographic reference
// data for cascading pickers.
type GeoRepository interface {
	Provinces(ctx context.Context) ([]Province, error)
	Districts(ctx context.Context, provinceID string) ([]District, error)
	Wards(ctx context.Context, districtID string) ([]Ward, error)
	Streets(ctx context.Context, districtID string) ([]Street, error)
}
