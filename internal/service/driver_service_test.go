package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"driver_dashboard/internal/logger"
	"driver_dashboard/internal/model"
	"driver_dashboard/internal/repository"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func newTestDriverService(t *testing.T) (DriverService, repository.DriverRepository) {
	t.Helper()
	repo := repository.NewFileDriverRepository(filepath.Join(t.TempDir(), "data.json"))
	return NewDriverService(repo, logger.NewNop()), repo
}

func validInput(vorname string) model.CreateDriverInput {
	return model.CreateDriverInput{
		Vorname:     vorname,
		Nachname:    "Schmidt",
		Email:       vorname + "@example.com",
		Rufnummer:   "+49 170 1234567",
		Fahrzeugtyp: "PKW",
		Kennzeichen: "B-XY 42",
	}
}

func seedDrivers(t *testing.T, svc DriverService) []*model.Driver {
	t.Helper()
	inputs := []model.CreateDriverInput{
		{Vorname: "Anna", Nachname: "Schmidt", Email: "anna@example.com", Rufnummer: "0170 111", Status: model.StatusAktiv, Fahrzeugtyp: "PKW", Kennzeichen: "B-AS 101"},
		{Vorname: "Jörg", Nachname: "Müller", Email: "joerg@example.com", Rufnummer: "0171 222", Status: model.StatusInaktiv, Fahrzeugtyp: "Transporter", Kennzeichen: "HH-JM 7"},
		{Vorname: "Lena", Nachname: "Weber", Email: "lena@example.com", Rufnummer: "0172 333", Status: model.StatusNeu, Fahrzeugtyp: "PKW", Kennzeichen: "M-LW 55"},
		{Vorname: "Omar", Nachname: "Yilmaz", Email: "omar@example.com", Rufnummer: "0173 444", Status: model.StatusAktiv, Fahrzeugtyp: "Transporter", Kennzeichen: "K-OY 9"},
		{Vorname: "Sophie", Nachname: "STRAUSS", Email: "sophie@example.com", Rufnummer: "0174 555", Status: model.StatusAktiv, Fahrzeugtyp: "PKW", Kennzeichen: "B-SS 12"},
	}
	out := make([]*model.Driver, 0, len(inputs))
	for _, in := range inputs {
		d, err := svc.CreateDriver(context.Background(), in)
		require.NoError(t, err)
		out = append(out, d)
	}
	return out
}

func TestCreateDriver_DefaultsAndTrims(t *testing.T) {
	svc, repo := newTestDriverService(t)
	ctx := context.Background()

	in := validInput("Anna")
	in.Vorname = "  Anna  "
	d, err := svc.CreateDriver(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, int64(1), d.ID)
	assert.Equal(t, "Anna", d.Vorname)
	assert.Equal(t, model.StatusNeu, d.Status)
	assert.False(t, d.Sticker)
	assert.False(t, d.App)
	assert.Equal(t, time.Now().UTC().Format(model.JoinedDateLayout), d.JoinedDate)

	stored, err := repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Anna", stored.Vorname)
}

func TestCreateDriver_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CreateDriverInput)
		field  string
	}{
		{"missing vorname", func(in *model.CreateDriverInput) { in.Vorname = "" }, "vorname"},
		{"blank nachname", func(in *model.CreateDriverInput) { in.Nachname = "   " }, "nachname"},
		{"missing email", func(in *model.CreateDriverInput) { in.Email = "" }, "email"},
		{"missing rufnummer", func(in *model.CreateDriverInput) { in.Rufnummer = "" }, "rufnummer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestDriverService(t)
			in := validInput("Anna")
			tt.mutate(&in)

			d, err := svc.CreateDriver(context.Background(), in)
			assert.Nil(t, d)
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.field+" is required", vErr.Message)

			all, err := repo.FindAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCreateDriver_InvalidStatus(t *testing.T) {
	svc, _ := newTestDriverService(t)
	in := validInput("Anna")
	in.Status = "gesperrt"

	_, err := svc.CreateDriver(context.Background(), in)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "gesperrt")
}

func TestGetDriver_NotFound(t *testing.T) {
	svc, _ := newTestDriverService(t)

	d, err := svc.GetDriver(context.Background(), 99)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestListDrivers_Filters(t *testing.T) {
	svc, _ := newTestDriverService(t)
	seedDrivers(t, svc)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter model.DriverFilter
		want   []string
	}{
		{"no filter", model.DriverFilter{}, []string{"Anna", "Jörg", "Lena", "Omar", "Sophie"}},
		{"alle is no filter", model.DriverFilter{Status: "Alle", Fahrzeugtyp: "alle"}, []string{"Anna", "Jörg", "Lena", "Omar", "Sophie"}},
		{"status", model.DriverFilter{Status: model.StatusAktiv}, []string{"Anna", "Omar", "Sophie"}},
		{"fahrzeugtyp", model.DriverFilter{Fahrzeugtyp: "Transporter"}, []string{"Jörg", "Omar"}},
		{"status and fahrzeugtyp", model.DriverFilter{Status: model.StatusAktiv, Fahrzeugtyp: "PKW"}, []string{"Anna", "Sophie"}},
		{"search case insensitive", model.DriverFilter{Search: "SCHMIDT"}, []string{"Anna"}},
		{"search unicode fold", model.DriverFilter{Search: "müller"}, []string{"Jörg"}},
		{"search upper case record", model.DriverFilter{Search: "strauss"}, []string{"Sophie"}},
		{"search phone", model.DriverFilter{Search: "0173"}, []string{"Omar"}},
		{"search plate", model.DriverFilter{Search: "hh-jm"}, []string{"Jörg"}},
		{"search and status", model.DriverFilter{Search: "example.com", Status: model.StatusNeu}, []string{"Lena"}},
		{"no match", model.DriverFilter{Search: "nobody"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drivers, err := svc.ListDrivers(ctx, tt.filter)
			require.NoError(t, err)
			require.NotNil(t, drivers)

			names := make([]string, 0, len(drivers))
			for _, d := range drivers {
				names = append(names, d.Vorname)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestUpdateDriver_AdminMerge(t *testing.T) {
	svc, _ := newTestDriverService(t)
	ctx := context.Background()
	orig, err := svc.CreateDriver(ctx, validInput("Anna"))
	require.NoError(t, err)

	patch := model.DriverPatch{
		Nachname: strPtr("Neumann"),
		Email:    strPtr(""),
		Status:   strPtr(model.StatusAktiv),
		Sticker:  boolPtr(true),
	}
	updated, err := svc.UpdateDriver(ctx, orig.ID, patch, model.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, "Neumann", updated.Nachname)
	assert.Equal(t, orig.Email, updated.Email, "empty string must not overwrite")
	assert.Equal(t, model.StatusAktiv, updated.Status)
	assert.True(t, updated.Sticker)
	assert.False(t, updated.App)
	assert.Equal(t, orig.ID, updated.ID)
	assert.Equal(t, orig.JoinedDate, updated.JoinedDate)
	assert.True(t, orig.CreatedAt.Equal(updated.CreatedAt))

	got, err := svc.GetDriver(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Neumann", got.Nachname)
	assert.True(t, got.Sticker)

	// booleans overwrite whenever supplied, including false
	updated, err = svc.UpdateDriver(ctx, orig.ID, model.DriverPatch{Sticker: boolPtr(false)}, model.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, updated.Sticker)
}

func TestUpdateDriver_AdminInvalidStatus(t *testing.T) {
	svc, _ := newTestDriverService(t)
	ctx := context.Background()
	orig, err := svc.CreateDriver(ctx, validInput("Anna"))
	require.NoError(t, err)

	_, err = svc.UpdateDriver(ctx, orig.ID, model.DriverPatch{Status: strPtr("unbekannt")}, model.RoleAdmin)
	assert.True(t, IsValidationError(err))

	got, err := svc.GetDriver(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNeu, got.Status)
}

func TestUpdateDriver_PartnerStatusOnly(t *testing.T) {
	svc, _ := newTestDriverService(t)
	ctx := context.Background()
	orig, err := svc.CreateDriver(ctx, validInput("Anna"))
	require.NoError(t, err)

	// unchanged values for other fields are tolerated
	patch := model.DriverPatch{
		Status:  strPtr(model.StatusInaktiv),
		Vorname: strPtr(orig.Vorname),
		Sticker: boolPtr(orig.Sticker),
	}
	updated, err := svc.UpdateDriver(ctx, orig.ID, patch, model.RolePartner)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInaktiv, updated.Status)
	assert.Equal(t, orig.Vorname, updated.Vorname)
}

func TestUpdateDriver_PartnerForbidden(t *testing.T) {
	tests := []struct {
		name  string
		patch model.DriverPatch
	}{
		{"no status", model.DriverPatch{Vorname: strPtr("Changed")}},
		{"empty status", model.DriverPatch{Status: strPtr("")}},
		{"status plus other field", model.DriverPatch{Status: strPtr(model.StatusAktiv), Email: strPtr("other@example.com")}},
		{"status plus boolean", model.DriverPatch{Status: strPtr(model.StatusAktiv), App: boolPtr(true)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestDriverService(t)
			ctx := context.Background()
			orig, err := svc.CreateDriver(ctx, validInput("Anna"))
			require.NoError(t, err)

			_, err = svc.UpdateDriver(ctx, orig.ID, tt.patch, model.RolePartner)
			assert.ErrorIs(t, err, ErrForbidden)

			got, err := svc.GetDriver(ctx, orig.ID)
			require.NoError(t, err)
			assert.Equal(t, orig.Status, got.Status)
			assert.Equal(t, orig.Email, got.Email)
			assert.Equal(t, orig.App, got.App)
		})
	}
}

func TestUpdateDriver_UnknownRoleForbidden(t *testing.T) {
	svc, _ := newTestDriverService(t)
	ctx := context.Background()
	orig, err := svc.CreateDriver(ctx, validInput("Anna"))
	require.NoError(t, err)

	_, err = svc.UpdateDriver(ctx, orig.ID, model.DriverPatch{Status: strPtr(model.StatusAktiv)}, "guest")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateDriver_NotFound(t *testing.T) {
	svc, _ := newTestDriverService(t)

	_, err := svc.UpdateDriver(context.Background(), 42, model.DriverPatch{Status: strPtr(model.StatusAktiv)}, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestDeleteDriver(t *testing.T) {
	svc, _ := newTestDriverService(t)
	ctx := context.Background()
	seeded := seedDrivers(t, svc)

	require.NoError(t, svc.DeleteDriver(ctx, seeded[1].ID))
	_, err := svc.GetDriver(ctx, seeded[1].ID)
	assert.ErrorIs(t, err, ErrDriverNotFound)

	assert.ErrorIs(t, svc.DeleteDriver(ctx, seeded[1].ID), ErrDriverNotFound)

	all, err := svc.ListDrivers(ctx, model.DriverFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	created, err := svc.CreateDriver(ctx, validInput("Nina"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), created.ID)
}

func TestGetStats(t *testing.T) {
	svc, _ := newTestDriverService(t)
	seedDrivers(t, svc)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.DriverStats{Total: 5, Aktiv: 3, Inaktiv: 1, Neu: 1}, stats)
}

type failingDriverRepo struct {
	err error
}

func (r failingDriverRepo) FindAll(context.Context) ([]model.Driver, error) {
	return nil, r.err
}

func (r failingDriverRepo) FindByID(context.Context, int64) (*model.Driver, error) {
	return nil, r.err
}

func (r failingDriverRepo) Create(context.Context, *model.Driver) error {
	return r.err
}

func (r failingDriverRepo) Update(context.Context, *model.Driver) error {
	return r.err
}

func (r failingDriverRepo) Delete(context.Context, int64) (bool, error) {
	return false, r.err
}

func TestDriverService_StorageErrorsPropagate(t *testing.T) {
	storageErr := errors.New("disk on fire")
	svc := NewDriverService(failingDriverRepo{err: storageErr}, logger.NewNop())
	ctx := context.Background()

	_, err := svc.CreateDriver(ctx, validInput("Anna"))
	assert.ErrorIs(t, err, storageErr)

	_, err = svc.GetDriver(ctx, 1)
	assert.ErrorIs(t, err, storageErr)

	_, err = svc.ListDrivers(ctx, model.DriverFilter{})
	assert.ErrorIs(t, err, storageErr)

	_, err = svc.UpdateDriver(ctx, 1, model.DriverPatch{Status: strPtr(model.StatusAktiv)}, model.RoleAdmin)
	assert.ErrorIs(t, err, storageErr)

	err = svc.DeleteDriver(ctx, 1)
	assert.ErrorIs(t, err, storageErr)
	assert.NotErrorIs(t, err, ErrDriverNotFound)

	_, err = svc.GetStats(ctx)
	assert.ErrorIs(t, err, storageErr)
}

func exportFixture() []model.Driver {
	return []model.Driver{
		{
			ID: 1, Vorname: "Anna", Nachname: "Schmidt", Email: "anna@example.com", Rufnummer: "+49 170 1111111",
			Status: model.StatusAktiv, Fahrzeugtyp: "PKW", Kennzeichen: "B-AS 101", Sticker: true,
			JoinedDate: "2024-03-01", CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			ID: 2, Vorname: "Jörg", Nachname: "Müller, Jr.", Email: "joerg@example.com", Rufnummer: "0171 2222222",
			Status: model.StatusNeu, Fahrzeugtyp: "Transporter", App: true,
			JoinedDate: "2024-04-15", CreatedAt: time.Date(2024, 4, 15, 14, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteDriversCSV_Golden(t *testing.T) {
	buf, err := writeDriversCSV(exportFixture())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "drivers_export", buf.Bytes())
}

func TestExportCSV_AppliesFilter(t *testing.T) {
	svc, _ := newTestDriverService(t)
	seedDrivers(t, svc)

	buf, err := svc.ExportCSV(context.Background(), model.DriverFilter{Fahrzeugtyp: "Transporter"})
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("ID,Vorname,")))
	assert.Contains(t, string(lines[1]), "Jörg")
	assert.Contains(t, string(lines[2]), "Omar")
}

func TestWriteDriversXLSX(t *testing.T) {
	buf, err := writeDriversXLSX(exportFixture())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{exportSheetName}, f.GetSheetList())

	rows, err := f.GetRows(exportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "Anna", rows[1][1])
	assert.Equal(t, "Müller, Jr.", rows[2][2])
	assert.Equal(t, "2024-04-15T14:00:00Z", rows[2][11])
}
