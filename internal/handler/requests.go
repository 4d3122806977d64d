package handler

import (
	"encoding/json"

	"driver_dashboard/internal/model"
)

// FlexBool accepts loosely typed JSON booleans. A supplied true or "true" is true;
// any other supplied value, null included, is false. Present is false when the key was absent.
type FlexBool struct {
	Present bool
	Value   bool
}

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	b.Present = true
	b.Value = false

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		b.Value = v
	case string:
		b.Value = v == "true"
	}
	return nil
}

func (b FlexBool) ptr() *bool {
	if !b.Present {
		return nil
	}
	v := b.Value
	return &v
}

// driverRequest is the body of POST and PUT /api/drivers.
type driverRequest struct {
	Vorname     *string  `json:"vorname"`
	Nachname    *string  `json:"nachname"`
	Email       *string  `json:"email"`
	Rufnummer   *string  `json:"rufnummer"`
	Status      *string  `json:"status"`
	Fahrzeugtyp *string  `json:"fahrzeugtyp"`
	Kennzeichen *string  `json:"kennzeichen"`
	Sticker     FlexBool `json:"sticker"`
	App         FlexBool `json:"app"`
}

func (r driverRequest) toCreateInput() model.CreateDriverInput {
	return model.CreateDriverInput{
		Vorname:     deref(r.Vorname),
		Nachname:    deref(r.Nachname),
		Email:       deref(r.Email),
		Rufnummer:   deref(r.Rufnummer),
		Status:      deref(r.Status),
		Fahrzeugtyp: deref(r.Fahrzeugtyp),
		Kennzeichen: deref(r.Kennzeichen),
		Sticker:     r.Sticker.Value,
		App:         r.App.Value,
	}
}

func (r driverRequest) toPatch() model.DriverPatch {
	return model.DriverPatch{
		Vorname:     r.Vorname,
		Nachname:    r.Nachname,
		Email:       r.Email,
		Rufnummer:   r.Rufnummer,
		Status:      r.Status,
		Fahrzeugtyp: r.Fahrzeugtyp,
		Kennzeichen: r.Kennzeichen,
		Sticker:     r.Sticker.ptr(),
		App:         r.App.ptr(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}
