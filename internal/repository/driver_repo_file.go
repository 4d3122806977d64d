package repository

import (
	"context"
	"sync"
	"time"

	"driver_dashboard/internal/model"
)

// driverDocument is the on-disk shape of the file backend.
// LastID remembers the highest id ever assigned so deleted ids are not reused.
type driverDocument struct {
	Drivers []model.Driver `json:"drivers" yaml:"drivers"`
	LastID  int64          `json:"last_id,omitempty" yaml:"last_id,omitempty"`
}

type fileDriverRepository struct {
	path string
	// mu serializes read-modify-write cycles on the document within this process.
	mu  sync.Mutex
	now func() time.Time
}

// NewFileDriverRepository creates a DriverRepository persisted as a single JSON document.
// The whole document is re-read on every call and rewritten on every mutation.
func NewFileDriverRepository(path string) DriverRepository {
	return &fileDriverRepository{path: path, now: time.Now}
}

func (r *fileDriverRepository) load() (*driverDocument, error) {
	doc := &driverDocument{}
	if err := readDocument(r.path, doc); err != nil {
		return nil, err
	}
	if doc.Drivers == nil {
		doc.Drivers = []model.Driver{}
	}
	return doc, nil
}

func (r *fileDriverRepository) FindAll(ctx context.Context) ([]model.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	return doc.Drivers, nil
}

func (r *fileDriverRepository) FindByID(ctx context.Context, id int64) (*model.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Drivers {
		if doc.Drivers[i].ID == id {
			d := doc.Drivers[i]
			return &d, nil
		}
	}
	return nil, nil
}

// Create assigns max(existing ids, last assigned id) + 1.
func (r *fileDriverRepository) Create(ctx context.Context, d *model.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}

	next := doc.LastID
	for _, existing := range doc.Drivers {
		if existing.ID > next {
			next = existing.ID
		}
	}
	d.ID = next + 1
	stampNew(d, r.now())

	doc.Drivers = append(doc.Drivers, *d)
	doc.LastID = d.ID
	return writeDocument(r.path, doc)
}

func (r *fileDriverRepository) Update(ctx context.Context, d *model.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	for i := range doc.Drivers {
		if doc.Drivers[i].ID == d.ID {
			// id, joined_date and created_at are immutable
			d.JoinedDate = doc.Drivers[i].JoinedDate
			d.CreatedAt = doc.Drivers[i].CreatedAt
			doc.Drivers[i] = *d
			return writeDocument(r.path, doc)
		}
	}
	return ErrNotFound
}

func (r *fileDriverRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return false, err
	}
	kept := make([]model.Driver, 0, len(doc.Drivers))
	for _, d := range doc.Drivers {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(doc.Drivers) {
		return false, nil
	}
	if id > doc.LastID {
		doc.LastID = id
	}
	doc.Drivers = kept
	if err := writeDocument(r.path, doc); err != nil {
		return false, err
	}
	return true, nil
}
