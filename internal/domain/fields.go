package domain

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
)

// ExternalToColumn maps client-facing person keys to people table columns.
var ExternalToColumn = map[string]string{
	"name":          "name",
	"age":           "age",
	"phone":         "phone",
	"address":       "address",
	"ward":          "ward",
	"street":        "street",
	"direction":     "direction",
	"aadharNumber":  "aadhar_number",
	"panNumber":     "pan_number",
	"voterIdNumber": "voter_id_number",
	"gender":        "gender",
	"religion":      "religion",
	"caste":         "caste",
	"community":     "community",
	"createdBy":     "created_by",
	"isActive":      "is_active",
}

// ColumnToExternal is the inverse of ExternalToColumn.
var ColumnToExternal = func() map[string]string {
	m := make(map[string]string, len(ExternalToColumn))
	for k, v := range ExternalToColumn {
		m[v] = k
	}
	return m
}()

// FlexInt decodes from a JSON number or a numeric string. Valid is false when
// the value could not be read as an integer.
type FlexInt struct {
	Value int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil || n != float64(int(n)) {
		*f = FlexInt{}
		return nil
	}
	*f = FlexInt{Value: int(n), Valid: true}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// IntValue builds a valid FlexInt.
func IntValue(n int) *FlexInt { return &FlexInt{Value: n, Valid: true} }

// PersonInput is the external shape of a person write. Nil fields were not
// supplied. The same structure serves create, partial update and bulk sync.
type PersonInput struct {
	Name          *string  `json:"name,omitempty"`
	Age           *FlexInt `json:"age,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	Address       *string  `json:"address,omitempty"`
	Ward          *string  `json:"ward,omitempty"`
	Street        *string  `json:"street,omitempty"`
	Direction     *string  `json:"direction,omitempty"`
	AadharNumber  *string  `json:"aadharNumber,omitempty"`
	PanNumber     *string  `json:"panNumber,omitempty"`
	VoterIDNumber *string  `json:"voterIdNumber,omitempty"`
	Gender        *string  `json:"gender,omitempty"`
	Religion      *string  `json:"religion,omitempty"`
	Caste         *string  `json:"caste,omitempty"`
	Community     *string  `json:"community,omitempty"`
	CreatedBy     *string  `json:"createdBy,omitempty"`
}

// UnmarshalJSON also accepts unquoted numbers for the string fields; sheet
// exports send phone and identifier columns that way. Numbers keep their
// literal text.
func (in *PersonInput) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for key, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) == 0 || !(v[0] == '-' || (v[0] >= '0' && v[0] <= '9')) {
			continue
		}
		quoted, err := json.Marshal(string(v))
		if err != nil {
			return err
		}
		raw[key] = quoted
	}
	fixed, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	type plain PersonInput
	var p plain
	if err := json.Unmarshal(fixed, &p); err != nil {
		return err
	}
	*in = PersonInput(p)
	return nil
}

// Normalize trims every string, uppercases pan and voter id, and drops
// strings that end up empty so they count as not supplied.
func (in PersonInput) Normalize() PersonInput {
	out := in
	for _, p := range []**string{
		&out.Name, &out.Phone, &out.Address, &out.Ward, &out.Street, &out.Direction,
		&out.AadharNumber, &out.Gender, &out.Religion, &out.Caste, &out.Community, &out.CreatedBy,
	} {
		*p = trimmed(*p, false)
	}
	out.PanNumber = trimmed(out.PanNumber, true)
	out.VoterIDNumber = trimmed(out.VoterIDNumber, true)
	return out
}

func trimmed(s *string, upper bool) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if upper {
		v = strings.ToUpper(v)
	}
	if v == "" {
		return nil
	}
	return &v
}

// MissingRequired reports whether any of name, phone, aadhar or pan is absent.
func (in PersonInput) MissingRequired() bool {
	return in.Name == nil || in.Phone == nil || in.AadharNumber == nil || in.PanNumber == nil
}

// Empty reports whether no field was supplied.
func (in PersonInput) Empty() bool {
	return len(in.Columns()) == 0
}

// Validate checks the format of every supplied field. Input must be
// normalized first.
func (in PersonInput) Validate() error {
	if in.Age != nil && (!in.Age.Valid || !ValidAge(in.Age.Value)) {
		return Invalid("Age must be a number between 1 and 120")
	}
	if in.Phone != nil && !ValidPhone(*in.Phone) {
		return Invalid("Phone number must be exactly 10 digits")
	}
	if in.AadharNumber != nil && !ValidAadhar(*in.AadharNumber) {
		return Invalid("Aadhar number must be exactly 12 digits")
	}
	if in.PanNumber != nil && !ValidPAN(*in.PanNumber) {
		return Invalid("PAN number must match the format AAAAA9999A")
	}
	if in.VoterIDNumber != nil && !ValidVoterID(*in.VoterIDNumber) {
		return Invalid("Voter ID must match the format AAA9999999")
	}
	if in.Direction != nil && !Direction(*in.Direction).Valid() {
		return Invalid("Direction must be East, West, North, or South")
	}
	if in.Gender != nil && !ValidGender(*in.Gender) {
		return Invalid("Gender must be Male, Female, or Other")
	}
	if in.Community != nil && !ValidCommunity(*in.Community) {
		return Invalid("Community must be General, OBC, SC, ST, or Other")
	}
	return nil
}

// ValidateNew checks a create payload: required keys, then formats, then the
// fields the people table cannot store empty.
func (in PersonInput) ValidateNew() error {
	if in.MissingRequired() {
		return Invalid("Missing required fields: name, phone, aadharNumber, panNumber")
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if in.Age == nil {
		return Invalid("Age must be a number between 1 and 120")
	}
	if in.Direction == nil {
		return Invalid("Direction must be East, West, North, or South")
	}
	if in.Gender == nil {
		return Invalid("Gender must be Male, Female, or Other")
	}
	if in.Community == nil {
		return Invalid("Community must be General, OBC, SC, ST, or Other")
	}
	return nil
}

// ColumnValue is one translated assignment for a partial update.
type ColumnValue struct {
	Column string
	Value  any
}

// Columns translates the supplied fields into people columns in a stable
// order. Unsupplied fields are omitted.
func (in PersonInput) Columns() []ColumnValue {
	var cols []ColumnValue
	add := func(key string, v *string) {
		if v != nil {
			cols = append(cols, ColumnValue{Column: ExternalToColumn[key], Value: *v})
		}
	}
	add("name", in.Name)
	if in.Age != nil {
		cols = append(cols, ColumnValue{Column: ExternalToColumn["age"], Value: in.Age.Value})
	}
	add("phone", in.Phone)
	add("address", in.Address)
	add("ward", in.Ward)
	add("street", in.Street)
	add("direction", in.Direction)
	add("aadharNumber", in.AadharNumber)
	add("panNumber", in.PanNumber)
	add("voterIdNumber", in.VoterIDNumber)
	add("gender", in.Gender)
	add("religion", in.Religion)
	add("caste", in.Caste)
	add("community", in.Community)
	add("createdBy", in.CreatedBy)
	return cols
}

// ToPerson builds a new active record from a validated create payload.
func (in PersonInput) ToPerson() *Person {
	p := &Person{
		Name:         deref(in.Name),
		Phone:        deref(in.Phone),
		Address:      deref(in.Address),
		Ward:         deref(in.Ward),
		Street:       deref(in.Street),
		Direction:    Direction(deref(in.Direction)),
		AadharNumber: deref(in.AadharNumber),
		PanNumber:    deref(in.PanNumber),
		Gender:       deref(in.Gender),
		Religion:     deref(in.Religion),
		Caste:        deref(in.Caste),
		Community:    deref(in.Community),
		CreatedBy:    deref(in.CreatedBy),
		IsActive:     true,
	}
	if in.Age != nil {
		p.Age = in.Age.Value
	}
	if in.VoterIDNumber != nil {
		p.VoterIDNumber = sql.NullString{String: *in.VoterIDNumber, Valid: true}
	}
	return p
}

// Apply writes translated columns onto p. Used by the in-memory store so both
// backends share one translation.
func (p *Person) Apply(cols []ColumnValue) {
	for _, c := range cols {
		switch c.Column {
		case "name":
			p.Name = c.Value.(string)
		case "age":
			p.Age = c.Value.(int)
		case "phone":
			p.Phone = c.Value.(string)
		case "address":
			p.Address = c.Value.(string)
		case "ward":
			p.Ward = c.Value.(string)
		case "street":
			p.Street = c.Value.(string)
		case "direction":
			p.Direction = Direction(c.Value.(string))
		case "aadhar_number":
			p.AadharNumber = c.Value.(string)
		case "pan_number":
			p.PanNumber = c.Value.(string)
		case "voter_id_number":
			p.VoterIDNumber = sql.NullString{String: c.Value.(string), Valid: true}
		case "gender":
			p.Gender = c.Value.(string)
		case "religion":
			p.Religion = c.Value.(string)
		case "caste":
			p.Caste = c.Value.(string)
		case "community":
			p.Community = c.Value.(string)
		case "created_by":
			p.CreatedBy = c.Value.(string)
		}
	}
}

// Str returns a pointer to s; convenient for building inputs.
func Str(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
