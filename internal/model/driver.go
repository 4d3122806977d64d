package model

import (
	"strings"
	"time"
)

const (
	StatusAktiv   = "aktiv"
	StatusInaktiv = "inaktiv"
	StatusNeu     = "neu"

	// FilterAll is the list-filter sentinel meaning "no restriction". Compared case-insensitively.
	FilterAll = "alle"

	JoinedDateLayout = "2006-01-02"
)

// Statuses lists the closed set of driver statuses in display order.
var Statuses = []string{StatusAktiv, StatusInaktiv, StatusNeu}

// ValidStatus reports whether s is one of the declared statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsFilterAll reports whether a filter value means "no filter".
func IsFilterAll(v string) bool {
	return v == "" || strings.EqualFold(v, FilterAll)
}

// Driver is the single business entity of the dashboard
type Driver struct {
	ID          int64     `json:"id" yaml:"id"`
	Vorname     string    `json:"vorname" yaml:"vorname"`
	Nachname    string    `json:"nachname" yaml:"nachname"`
	Email       string    `json:"email" yaml:"email"`
	Rufnummer   string    `json:"rufnummer" yaml:"rufnummer"`
	Status      string    `json:"status" yaml:"status"`
	Fahrzeugtyp string    `json:"fahrzeugtyp" yaml:"fahrzeugtyp"`
	Kennzeichen string    `json:"kennzeichen" yaml:"kennzeichen"`
	Sticker     bool      `json:"sticker" yaml:"sticker"`
	App         bool      `json:"app" yaml:"app"`
	JoinedDate  string    `json:"joined_date" yaml:"joined_date"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// CreateDriverInput carries the fields accepted on creation. Booleans are already strict.
type CreateDriverInput struct {
	Vorname     string `yaml:"vorname"`
	Nachname    string `yaml:"nachname"`
	Email       string `yaml:"email"`
	Rufnummer   string `yaml:"rufnummer"`
	Status      string `yaml:"status"`
	Fahrzeugtyp string `yaml:"fahrzeugtyp"`
	Kennzeichen string `yaml:"kennzeichen"`
	Sticker     bool   `yaml:"sticker"`
	App         bool   `yaml:"app"`
}

// DriverPatch is a partial update. A nil pointer means the key was absent.
type DriverPatch struct {
	Vorname     *string
	Nachname    *string
	Email       *string
	Rufnummer   *string
	Status      *string
	Fahrzeugtyp *string
	Kennzeichen *string
	Sticker     *bool
	App         *bool
}

// DriverFilter contains the list-view query parameters
type DriverFilter struct {
	Search      string
	Status      string
	Fahrzeugtyp string
}

// DriverStats are the dashboard counters
type DriverStats struct {
	Total   int `json:"total"`
	Aktiv   int `json:"aktiv"`
	Inaktiv int `json:"inaktiv"`
	Neu     int `json:"neu"`
}
