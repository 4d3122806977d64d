package service

import (
	"strings"

	"driver_dashboard/internal/model"

	"golang.org/x/text/cases"
)

// driverMatcher evaluates a DriverFilter against single records.
// A cases.Caser is not safe for concurrent use, so build one matcher per call.
type driverMatcher struct {
	fold        cases.Caser
	search      string
	status      string
	fahrzeugtyp string
}

func newDriverMatcher(f model.DriverFilter) *driverMatcher {
	m := &driverMatcher{fold: cases.Fold()}
	if term := strings.TrimSpace(f.Search); term != "" {
		m.search = m.fold.String(term)
	}
	if !model.IsFilterAll(f.Status) {
		m.status = f.Status
	}
	if !model.IsFilterAll(f.Fahrzeugtyp) {
		m.fahrzeugtyp = f.Fahrzeugtyp
	}
	return m
}

// Match applies all filters with AND; the search term matches if any field contains it.
func (m *driverMatcher) Match(d model.Driver) bool {
	if m.status != "" && d.Status != m.status {
		return false
	}
	if m.fahrzeugtyp != "" && d.Fahrzeugtyp != m.fahrzeugtyp {
		return false
	}
	if m.search == "" {
		return true
	}
	for _, field := range []string{d.Vorname, d.Nachname, d.Email, d.Rufnummer, d.Kennzeichen} {
		if strings.Contains(m.fold.String(field), m.search) {
			return true
		}
	}
	return false
}

func filterDrivers(drivers []model.Driver, f model.DriverFilter) []model.Driver {
	m := newDriverMatcher(f)
	out := make([]model.Driver, 0, len(drivers))
	for _, d := range drivers {
		if m.Match(d) {
			out = append(out, d)
		}
	}
	return out
}
