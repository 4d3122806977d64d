package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"driver_dashboard/internal/model"
)

type sqliteDriverRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDriverRepository creates a sqlite-backed DriverRepository
func NewSQLiteDriverRepository(db *sql.DB) DriverRepository {
	return &sqliteDriverRepository{db: db, now: time.Now}
}

func (r *sqliteDriverRepository) FindAll(ctx context.Context) ([]model.Driver, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY id`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating driver rows: %w", err)
	}
	return drivers, nil
}

func (r *sqliteDriverRepository) FindByID(ctx context.Context, id int64) (*model.Driver, error) {
	d := &model.Driver{}
	err := scanDriver(r.db.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = ?`, id), d)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find driver by ID: %w", err)
	}
	return d, nil
}

// Create relies on AUTOINCREMENT, so ids of deleted rows are never handed out again.
func (r *sqliteDriverRepository) Create(ctx context.Context, d *model.Driver) error {
	stampNew(d, r.now())
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO drivers (vorname, nachname, email, rufnummer, status, fahrzeugtyp, kennzeichen, sticker, app, joined_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.Vorname, d.Nachname, d.Email, d.Rufnummer, d.Status,
		d.Fahrzeugtyp, d.Kennzeichen, d.Sticker, d.App, d.JoinedDate, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read driver id: %w", err)
	}
	d.ID = id
	return nil
}

func (r *sqliteDriverRepository) Update(ctx context.Context, d *model.Driver) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE drivers
		SET vorname = ?, nachname = ?, email = ?, rufnummer = ?, status = ?,
		    fahrzeugtyp = ?, kennzeichen = ?, sticker = ?, app = ?
		WHERE id = ?
	`,
		d.Vorname, d.Nachname, d.Email, d.Rufnummer, d.Status,
		d.Fahrzeugtyp, d.Kennzeichen, d.Sticker, d.App, d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteDriverRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drivers WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete driver: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete driver: %w", err)
	}
	return n > 0, nil
}
