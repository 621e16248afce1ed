package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/address"
)

const (
	createAddressSQL = `INSERT INTO addresses
		(id, user_id, full_name, phone_number, type, province_id, district_id,
		 ward_id, street_id, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	addressColumnsSQL = `id, user_id, full_name, phone_number, type, province_id, district_id,
		ward_id, street_id, is_default, created_at, updated_at`

	updateAddressSQL = `UPDATE addresses SET full_name = $3, phone_number = $4, type = $5,
		province_id = $6, district_id = $7, ward_id = $8, street_id = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + addressColumnsSQL

	deleteAddressSQL = `DELETE FROM addresses WHERE user_id = $1 AND id = $2`

	getAddressByIDSQL = `SELECT ` + addressColumnsSQL + ` FROM addresses WHERE id = $1`

	listAddressesByUserSQL = `SELECT ` + addressColumnsSQL + ` FROM addresses
		WHERE user_id = $1 ORDER BY is_default DESC, created_at`

	clearDefaultAddressSQL = `UPDATE addresses SET is_default = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_default`

	setDefaultAddressSQL = `UPDATE addresses SET is_default = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND id = $2`

	listProvincesSQL = `SELECT id, name FROM provinces ORDER BY name`
	listDistrictsSQL = `SELECT id, province_id, name FROM districts
		WHERE province_id = $1 ORDER BY name`
	listWardsSQL = `SELECT id, district_id, name FROM wards
		WHERE district_id = $1 ORDER BY name`
	listStreetsSQL = `SELECT id, district_id, name FROM streets
		WHERE district_id = $1 ORDER BY name`
)

var _ address.Repository = (*AddressRepository)(nil)

// AddressRepository implements address.Repository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// Create persists a new delivery address. Foreign-key failures on the geo
// references are reported as address.ErrProvinceNotFound.
func (r *AddressRepository) Create(ctx context.Context, a *address.Address) error {
	_, err := r.pool.Exec(ctx, createAddressSQL,
		a.ID, a.UserID, a.FullName, a.PhoneNumber, a.Type,
		a.ProvinceID, a.DistrictID, a.WardID, a.StreetID, a.IsDefault,
	)
	if err != nil {
		if pgErrCode(err, codeForeignKeyViolation) {
			return address.ErrProvinceNotFound
		}
		return fmt.Errorf("creating address %q: %w", a.ID, err)
	}
	return nil
}

// Update overwrites an address owned by the user and returns the result.
func (r *AddressRepository) Update(ctx context.Context, a *address.Address) (*address.Address, error) {
	rows, err := r.pool.Query(ctx, updateAddressSQL,
		a.ID, a.UserID, a.FullName, a.PhoneNumber, a.Type,
		a.ProvinceID, a.DistrictID, a.WardID, a.StreetID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating address %q: %w", a.ID, err)
	}

	updated, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		if pgErrCode(err, codeForeignKeyViolation) {
			return nil, address.ErrProvinceNotFound
		}
		return nil, fmt.Errorf("updating address %q: %w", a.ID, err)
	}
	return &updated, nil
}

// Delete removes an address owned by the user.
func (r *AddressRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, deleteAddressSQL, userID, id)
	if err != nil {
		return fmt.Errorf("deleting address %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}
	return nil
}

// GetByID returns a single address by its identifier.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*address.Address, error) {
	rows, err := r.pool.Query(ctx, getAddressByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}
	return &a, nil
}

// ListByUser returns every address of the user, default first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]address.Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses: %w", err)
	}
	return pgx.CollectRows(rows, scanAddress)
}

// SetDefault makes one address the user's default, clearing the flag on every
// other address in the same transaction.
func (r *AddressRepository) SetDefault(ctx context.Context, userID, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning default-address transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, clearDefaultAddressSQL, userID); err != nil {
		return fmt.Errorf("clearing default address: %w", err)
	}

	tag, err := tx.Exec(ctx, setDefaultAddressSQL, userID, id)
	if err != nil {
		return fmt.Errorf("setting default address %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing default-address transaction: %w", err)
	}
	return nil
}

func scanAddress(row pgx.CollectableRow) (address.Address, error) {
	var a address.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.FullName, &a.PhoneNumber, &a.Type,
		&a.ProvinceID, &a.DistrictID, &a.WardID, &a.StreetID, &a.IsDefault,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

var _ address.GeoRepository = (*GeoRepository)(nil)

// GeoRepository implements address.GeoRepository over the reference tables
// loaded by the geo-ingest tool.
type GeoRepository struct {
	pool *pgxpool.Pool
}

// NewGeoRepository returns a GeoRepository that uses the given pool.
func NewGeoRepository(pool *pgxpool.Pool) *GeoRepository {
	return &GeoRepository{pool: pool}
}

// Provinces returns every province, sorted by name.
func (r *GeoRepository) Provinces(ctx context.Context) ([]address.Province, error) {
	rows, err := r.pool.Query(ctx, listProvincesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing provinces: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (address.Province, error) {
		var p address.Province
		err := row.Scan(&p.ID, &p.Name)
		return p, err
	})
}

// Districts returns the districts of one province, sorted by name.
func (r *GeoRepository) Districts(ctx context.Context, provinceID string) ([]address.District, error) {
	rows, err := r.pool.Query(ctx, listDistrictsSQL, provinceID)
	if err != nil {
		return nil, fmt.Errorf("listing districts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (address.District, error) {
		var d address.District
		err := row.Scan(&d.ID, &d.ProvinceID, &d.Name)
		return d, err
	})
}

// Wards returns the wards of one district, sorted by name.
func (r *GeoRepository) Wards(ctx context.Context, districtID string) ([]address.Ward, error) {
	rows, err := r.pool.Query(ctx, listWardsSQL, districtID)
	if err != nil {
		return nil, fmt.Errorf("listing wards: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (address.Ward, error) {
		var w address.Ward
		err := row.Scan(&w.ID, &w.DistrictID, &w.Name)
		return w, err
	})
}

// Streets returns the streets of one district, sorted by name.
func (r *GeoRepository) Streets(ctx context.Context, districtID string) ([]address.Street, error) {
	rows, err := r.pool.Query(ctx, listStreetsSQL, districtID)
	if err != nil {
		return nil, fmt.Errorf("listing streets: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (address.Street, error) {
		var s address.Street
		err := row.Scan(&s.ID, &s.DistrictID, &s.Name)
		return s, err
	})
}
