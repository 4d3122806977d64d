package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"driver_dashboard/internal/logger"
	"driver_dashboard/internal/model"
	"driver_dashboard/internal/repository"
)

// DriverService defines operations for drivers
type DriverService interface {
	CreateDriver(ctx context.Context, in model.CreateDriverInput) (*model.Driver, error)
	GetDriver(ctx context.Context, id int64) (*model.Driver, error)
	ListDrivers(ctx context.Context, filter model.DriverFilter) ([]model.Driver, error)
	UpdateDriver(ctx context.Context, id int64, patch model.DriverPatch, role string) (*model.Driver, error)
	DeleteDriver(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (*model.DriverStats, error)
	ExportCSV(ctx context.Context, filter model.DriverFilter) (*bytes.Buffer, error)
	ExportXLSX(ctx context.Context, filter model.DriverFilter) (*bytes.Buffer, error)
}

type driverService struct {
	repo repository.DriverRepository
	log  logger.ILogger
}

// NewDriverService creates a new DriverService
func NewDriverService(repo repository.DriverRepository, log logger.ILogger) DriverService {
	return &driverService{repo: repo, log: log}
}

func (s *driverService) CreateDriver(ctx context.Context, in model.CreateDriverInput) (*model.Driver, error) {
	d := &model.Driver{
		Vorname:     strings.TrimSpace(in.Vorname),
		Nachname:    strings.TrimSpace(in.Nachname),
		Email:       strings.TrimSpace(in.Email),
		Rufnummer:   strings.TrimSpace(in.Rufnummer),
		Status:      strings.TrimSpace(in.Status),
		Fahrzeugtyp: strings.TrimSpace(in.Fahrzeugtyp),
		Kennzeichen: strings.TrimSpace(in.Kennzeichen),
		Sticker:     in.Sticker,
		App:         in.App,
	}

	required := []struct {
		field string
		value string
	}{
		{"vorname", d.Vorname},
		{"nachname", d.Nachname},
		{"email", d.Email},
		{"rufnummer", d.Rufnummer},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, newValidationError(r.field, r.field+" is required")
		}
	}

	if d.Status == "" {
		d.Status = model.StatusNeu
	}
	if !model.ValidStatus(d.Status) {
		return nil, invalidStatus(d.Status)
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create driver in repo: %w", err)
	}
	s.log.Info("driver created", logger.Int64("driver_id", d.ID))
	return d, nil
}

func (s *driverService) GetDriver(ctx context.Context, id int64) (*model.Driver, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find driver by ID: %w", err)
	}
	if d == nil {
		return nil, ErrDriverNotFound
	}
	return d, nil
}

func (s *driverService) ListDrivers(ctx context.Context, filter model.DriverFilter) ([]model.Driver, error) {
	drivers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers from repo: %w", err)
	}
	return filterDrivers(drivers, filter), nil
}

// UpdateDriver merges patch into the stored driver according to role.
// Partners may only change the status; admins may change every mutable field.
func (s *driverService) UpdateDriver(ctx context.Context, id int64, patch model.DriverPatch, role string) (*model.Driver, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find driver for update: %w", err)
	}
	if existing == nil {
		return nil, ErrDriverNotFound
	}

	updated := *existing
	switch role {
	case model.RolePartner:
		if err := applyPartnerPatch(&updated, patch); err != nil {
			return nil, err
		}
	case model.RoleAdmin:
		applyAdminPatch(&updated, patch)
	default:
		return nil, fmt.Errorf("%w: role %q may not edit drivers", ErrForbidden, role)
	}

	if !model.ValidStatus(updated.Status) {
		return nil, invalidStatus(updated.Status)
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to update driver in repo: %w", err)
	}
	s.log.Info("driver updated", logger.Int64("driver_id", id), logger.String("role", role))
	return &updated, nil
}

func (s *driverService) DeleteDriver(ctx context.Context, id int64) error {
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete driver in repo: %w", err)
	}
	if !existed {
		return ErrDriverNotFound
	}
	s.log.Info("driver deleted", logger.Int64("driver_id", id))
	return nil
}

func (s *driverService) GetStats(ctx context.Context) (*model.DriverStats, error) {
	drivers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load drivers for stats: %w", err)
	}
	stats := &model.DriverStats{Total: len(drivers)}
	for _, d := range drivers {
		switch d.Status {
		case model.StatusAktiv:
			stats.Aktiv++
		case model.StatusInaktiv:
			stats.Inaktiv++
		case model.StatusNeu:
			stats.Neu++
		}
	}
	return stats, nil
}

// applyPartnerPatch changes only the status. Any other supplied field that would
// alter the record is rejected; values equal to the stored ones are tolerated since
// edit forms resend the whole record.
func applyPartnerPatch(d *model.Driver, p model.DriverPatch) error {
	if p.Status == nil || strings.TrimSpace(*p.Status) == "" {
		return fmt.Errorf("%w: partners can only change status", ErrForbidden)
	}

	changes := []bool{
		stringChanged(p.Vorname, d.Vorname),
		stringChanged(p.Nachname, d.Nachname),
		stringChanged(p.Email, d.Email),
		stringChanged(p.Rufnummer, d.Rufnummer),
		stringChanged(p.Fahrzeugtyp, d.Fahrzeugtyp),
		stringChanged(p.Kennzeichen, d.Kennzeichen),
		p.Sticker != nil && *p.Sticker != d.Sticker,
		p.App != nil && *p.App != d.App,
	}
	for _, changed := range changes {
		if changed {
			return fmt.Errorf("%w: partners can only change status", ErrForbidden)
		}
	}

	d.Status = strings.TrimSpace(*p.Status)
	return nil
}

// applyAdminPatch overwrites strings only when a non-empty value was supplied and
// booleans whenever the key was supplied.
func applyAdminPatch(d *model.Driver, p model.DriverPatch) {
	mergeString(&d.Vorname, p.Vorname)
	mergeString(&d.Nachname, p.Nachname)
	mergeString(&d.Email, p.Email)
	mergeString(&d.Rufnummer, p.Rufnummer)
	mergeString(&d.Status, p.Status)
	mergeString(&d.Fahrzeugtyp, p.Fahrzeugtyp)
	mergeString(&d.Kennzeichen, p.Kennzeichen)
	if p.Sticker != nil {
		d.Sticker = *p.Sticker
	}
	if p.App != nil {
		d.App = *p.App
	}
}

func mergeString(dst *string, v *string) {
	if v == nil {
		return
	}
	if trimmed := strings.TrimSpace(*v); trimmed != "" {
		*dst = trimmed
	}
}

func stringChanged(v *string, current string) bool {
	if v == nil {
		return false
	}
	trimmed := strings.TrimSpace(*v)
	return trimmed != "" && trimmed != current
}

func invalidStatus(status string) *ValidationError {
	return newValidationError("status",
		fmt.Sprintf("invalid status %q: must be one of %s", status, strings.Join(model.Statuses, ", ")))
}
