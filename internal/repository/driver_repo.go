package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"driver_dashboard/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DriverRepository defines operations for driver data
type DriverRepository interface {
	FindAll(ctx context.Context) ([]model.Driver, error)
	FindByID(ctx context.Context, id int64) (*model.Driver, error)
	Create(ctx context.Context, driver *model.Driver) error
	Update(ctx context.Context, driver *model.Driver) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// DBTX is the subset of *pgxpool.Pool the postgres repositories need.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const driverColumns = `id, vorname, nachname, email, rufnummer, status, fahrzeugtyp, kennzeichen, sticker, app, joined_date, created_at`

type driverRepository struct {
	db  DBTX
	now func() time.Time
}

// NewDriverRepository creates a postgres-backed DriverRepository
func NewDriverRepository(db DBTX) DriverRepository {
	return &driverRepository{db: db, now: time.Now}
}

// FindAll returns every driver ordered by id
func (r *driverRepository) FindAll(ctx context.Context) ([]model.Driver, error) {
	rows, err := r.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	drivers := []model.Driver{}
	for rows.Next() {
		var d model.Driver
		if err := scanDriver(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan driver row: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating driver rows: %w", err)
	}
	return drivers, nil
}

// FindByID retrieves a driver by its ID
func (r *driverRepository) FindByID(ctx context.Context, id int64) (*model.Driver, error) {
	d := &model.Driver{}
	err := scanDriver(r.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id), d)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find driver by ID: %w", err)
	}
	return d, nil
}

// Create inserts a new driver; the identity column assigns the ID
func (r *driverRepository) Create(ctx context.Context, d *model.Driver) error {
	stampNew(d, r.now())
	sql := `INSERT INTO drivers (vorname, nachname, email, rufnummer, status, fahrzeugtyp, kennzeichen, sticker, app, joined_date, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := r.db.QueryRow(ctx, sql,
		d.Vorname, d.Nachname, d.Email, d.Rufnummer, d.Status,
		d.Fahrzeugtyp, d.Kennzeichen, d.Sticker, d.App, d.JoinedDate, d.CreatedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an existing driver
func (r *driverRepository) Update(ctx context.Context, d *model.Driver) error {
	sql := `UPDATE drivers
            SET vorname = $1, nachname = $2, email = $3, rufnummer = $4, status = $5,
                fahrzeugtyp = $6, kennzeichen = $7, sticker = $8, app = $9
            WHERE id = $10`
	cmdTag, err := r.db.Exec(ctx, sql,
		d.Vorname, d.Nachname, d.Email, d.Rufnummer, d.Status,
		d.Fahrzeugtyp, d.Kennzeichen, d.Sticker, d.App, d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a driver and reports whether it existed
func (r *driverRepository) Delete(ctx context.Context, id int64) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete driver: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
