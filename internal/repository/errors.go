package repository

import (
	"errors"
	"time"

	"driver_dashboard/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// rowScanner is satisfied by pgx.Row(s) and *sql.Row(s).
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner, d *model.Driver) error {
	return row.Scan(
		&d.ID, &d.Vorname, &d.Nachname, &d.Email, &d.Rufnummer, &d.Status,
		&d.Fahrzeugtyp, &d.Kennzeichen, &d.Sticker, &d.App, &d.JoinedDate, &d.CreatedAt,
	)
}

// stampNew sets the creation timestamp and join date on a record about to be inserted.
func stampNew(d *model.Driver, now time.Time) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now.UTC().Truncate(time.Microsecond)
	}
	if d.JoinedDate == "" {
		d.JoinedDate = d.CreatedAt.Format(model.JoinedDateLayout)
	}
}
