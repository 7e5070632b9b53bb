package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonInput_NormalizeTrimsAndUppercases(t *testing.T) {
	in := PersonInput{
		Name:          Str("  Ravi Kumar "),
		PanNumber:     Str(" abcde1234f"),
		VoterIDNumber: Str("xyz1234567 "),
		Ward:          Str("   "),
	}

	out := in.Normalize()

	assert.Equal(t, "Ravi Kumar", *out.Name)
	assert.Equal(t, "ABCDE1234F", *out.PanNumber)
	assert.Equal(t, "XYZ1234567", *out.VoterIDNumber)
	assert.Nil(t, out.Ward, "blank strings count as not supplied")
	assert.Equal(t, "  Ravi Kumar ", *in.Name, "input must not be mutated")
}

func TestPersonInput_ValidateNew(t *testing.T) {
	valid := func() PersonInput {
		return PersonInput{
			Name:         Str("Asha"),
			Age:          IntValue(34),
			Phone:        Str("9876543210"),
			Direction:    Str("East"),
			AadharNumber: Str("123456789012"),
			PanNumber:    Str("ABCDE1234F"),
			Gender:       Str("Female"),
			Community:    Str("OBC"),
		}
	}

	require.NoError(t, valid().ValidateNew())

	tests := []struct {
		name   string
		mutate func(*PersonInput)
		msg    string
	}{
		{"missing pan", func(p *PersonInput) { p.PanNumber = nil }, "Missing required fields: name, phone, aadharNumber, panNumber"},
		{"age out of range", func(p *PersonInput) { p.Age = IntValue(121) }, "Age must be a number between 1 and 120"},
		{"age unparseable", func(p *PersonInput) { p.Age = &FlexInt{} }, "Age must be a number between 1 and 120"},
		{"short phone", func(p *PersonInput) { p.Phone = Str("98765") }, "Phone number must be exactly 10 digits"},
		{"aadhar letters", func(p *PersonInput) { p.AadharNumber = Str("12345678901A") }, "Aadhar number must be exactly 12 digits"},
		{"bad pan", func(p *PersonInput) { p.PanNumber = Str("ABCD12345F") }, "PAN number must match the format AAAAA9999A"},
		{"bad voter", func(p *PersonInput) { p.VoterIDNumber = Str("XY12345678") }, "Voter ID must match the format AAA9999999"},
		{"bad direction", func(p *PersonInput) { p.Direction = Str("Central") }, "Direction must be East, West, North, or South"},
		{"bad gender", func(p *PersonInput) { p.Gender = Str("M") }, "Gender must be Male, Female, or Other"},
		{"missing community", func(p *PersonInput) { p.Community = nil }, "Community must be General, OBC, SC, ST, or Other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := in.ValidateNew()
			require.Error(t, err)
			assert.True(t, HasCode(err, CodeInvalidInput))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestPersonInput_ColumnsOnlySupplied(t *testing.T) {
	in := PersonInput{Age: IntValue(40), PanNumber: Str("ABCDE1234F"), CreatedBy: Str("ops@example.com")}

	cols := in.Columns()

	assert.Equal(t, []ColumnValue{
		{Column: "age", Value: 40},
		{Column: "pan_number", Value: "ABCDE1234F"},
		{Column: "created_by", Value: "ops@example.com"},
	}, cols)
	assert.True(t, PersonInput{}.Empty())
}

func TestPerson_ApplyLeavesOtherFields(t *testing.T) {
	p := PersonInput{
		Name: Str("Asha"), Age: IntValue(34), Phone: Str("9876543210"),
		AadharNumber: Str("123456789012"), PanNumber: Str("ABCDE1234F"),
	}.ToPerson()

	p.Apply(PersonInput{Age: IntValue(35), VoterIDNumber: Str("XYZ1234567")}.Columns())

	assert.Equal(t, 35, p.Age)
	assert.Equal(t, "Asha", p.Name)
	assert.Equal(t, "9876543210", p.Phone)
	assert.Equal(t, "XYZ1234567", p.VoterIDNumber.String)
	assert.True(t, p.IsActive)
}

func TestFlexInt_Unmarshal(t *testing.T) {
	var in PersonInput
	require.NoError(t, json.Unmarshal([]byte(`{"age":"42"}`), &in))
	assert.Equal(t, FlexInt{Value: 42, Valid: true}, *in.Age)

	in = PersonInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"age":27}`), &in))
	assert.Equal(t, 27, in.Age.Value)

	in = PersonInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"age":"old"}`), &in))
	assert.False(t, in.Age.Valid)

	in = PersonInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"age":null}`), &in))
	assert.Nil(t, in.Age)
}

func TestPersonInput_UnmarshalNumericIdentifiers(t *testing.T) {
	var in PersonInput
	require.NoError(t, json.Unmarshal([]byte(
		`{"name":"Ravi","phone":9876543211,"aadharNumber":123456789013,"ward":4,"age":"31","panNumber":"abcde1235f"}`), &in))
	require.NotNil(t, in.Phone)
	assert.Equal(t, "9876543211", *in.Phone)
	assert.Equal(t, "123456789013", *in.AadharNumber)
	assert.Equal(t, "4", *in.Ward)
	assert.Equal(t, FlexInt{Value: 31, Valid: true}, *in.Age)
	assert.Equal(t, "abcde1235f", *in.PanNumber)
	assert.Nil(t, in.VoterIDNumber)

	in = PersonInput{}
	assert.Error(t, json.Unmarshal([]byte(`{"name":"Flag","phone":true}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`"not a record"`), &in))
}

func TestResolveDirection(t *testing.T) {
	dir, err := ResolveDirection(RoleSuperAdmin, DirectionEast)
	require.NoError(t, err)
	assert.False(t, dir.Valid, "superadmin never stores a direction")

	dir, err = ResolveDirection(RoleAdmin, DirectionWest)
	require.NoError(t, err)
	assert.Equal(t, "West", dir.String)

	_, err = ResolveDirection(RoleAdmin, "")
	assert.EqualError(t, err, "Direction is required for admin users")

	_, err = ResolveDirection(RoleAdmin, "Up")
	assert.EqualError(t, err, "Direction must be East, West, North, or South")
}

func TestRenderPlaceholders(t *testing.T) {
	body := "Hello {{name}}, ward {{ward}} meets on {{day}}"
	out := RenderPlaceholders(body, map[string]string{"name": "Asha", "ward": "12"})
	assert.Equal(t, "Hello Asha, ward 12 meets on {{day}}", out)
	assert.Equal(t, body, RenderPlaceholders(body, nil))
}

func TestPendingReport(t *testing.T) {
	report := PendingReport([]string{"1", "2"})
	require.Len(t, report, 2)
	assert.Equal(t, DeliveryEntry{PersonID: "1", Status: "pending"}, report[0])

	b, err := json.Marshal(report[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"personId":"2","status":"pending"}`, string(b))
}
