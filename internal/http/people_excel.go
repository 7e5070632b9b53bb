package httpapi

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"civic-registry/internal/domain"
	"civic-registry/internal/service"
)

const peopleSheetName = "People"

// PeopleExportHeader is the column order of exported workbooks. Imports accept
// the same keys in any order, and snake_case column names as well.
var PeopleExportHeader = []string{
	"id", "name", "age", "phone", "address", "ward", "street", "direction",
	"aadharNumber", "panNumber", "voterIdNumber", "gender", "religion", "caste",
	"community", "createdBy", "createdAt",
}

var peopleColumnWidths = map[string]float64{
	"name":         24,
	"address":      32,
	"aadharNumber": 16,
	"panNumber":    14,
	"createdBy":    26,
	"createdAt":    20,
}

// headerKey resolves a sheet header cell to an external person key.
func headerKey(h string) (string, bool) {
	h = strings.TrimSpace(h)
	if h == "" {
		return "", false
	}
	if _, ok := domain.ExternalToColumn[h]; ok {
		return h, true
	}
	if key, ok := domain.ColumnToExternal[strings.ToLower(h)]; ok {
		return key, true
	}
	for key := range domain.ExternalToColumn {
		if strings.EqualFold(key, h) {
			return key, true
		}
	}
	return "", false
}

func setPersonField(in *domain.PersonInput, key, value string) {
	v := &value
	switch key {
	case "name":
		in.Name = v
	case "age":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		in.Age = &domain.FlexInt{Value: n, Valid: err == nil}
	case "phone":
		in.Phone = v
	case "address":
		in.Address = v
	case "ward":
		in.Ward = v
	case "street":
		in.Street = v
	case "direction":
		in.Direction = v
	case "aadharNumber":
		in.AadharNumber = v
	case "panNumber":
		in.PanNumber = v
	case "voterIdNumber":
		in.VoterIDNumber = v
	case "gender":
		in.Gender = v
	case "religion":
		in.Religion = v
	case "caste":
		in.Caste = v
	case "community":
		in.Community = v
	case "createdBy":
		in.CreatedBy = v
	}
}

// peopleFromRows maps a header row plus data rows to inputs. Blank rows are
// skipped; unknown columns are ignored.
func peopleFromRows(rows [][]string) ([]domain.PersonInput, error) {
	if len(rows) == 0 {
		return nil, domain.Invalid("File has no header row")
	}
	keys := make([]string, len(rows[0]))
	known := 0
	for i, h := range rows[0] {
		if key, ok := headerKey(h); ok {
			keys[i] = key
			known++
		}
	}
	if known == 0 {
		return nil, domain.Invalid("File header has no recognised person columns")
	}

	out := make([]domain.PersonInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var in domain.PersonInput
		filled := false
		for i, cell := range row {
			if i >= len(keys) || keys[i] == "" || strings.TrimSpace(cell) == "" {
				continue
			}
			setPersonField(&in, keys[i], cell)
			filled = true
		}
		if filled {
			out = append(out, in)
		}
	}
	return out, nil
}

// ParsePeopleExcel reads the first sheet of an .xlsx workbook.
func ParsePeopleExcel(r io.Reader) ([]domain.PersonInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInvalidInput, "Failed to parse Excel file", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, domain.Invalid("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, domain.WrapError(domain.CodeInvalidInput, "Failed to read Excel rows", err)
	}
	return peopleFromRows(rows)
}

// ParsePeopleCSV reads a comma-separated sheet with a header row.
func ParsePeopleCSV(r io.Reader) ([]domain.PersonInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.WrapError(domain.CodeInvalidInput, "Failed to parse CSV file", err)
		}
		rows = append(rows, rec)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return peopleFromRows(rows)
}

func personCell(p service.PersonDTO, key string) any {
	switch key {
	case "id":
		return p.ID
	case "name":
		return p.Name
	case "age":
		return p.Age
	case "phone":
		return p.Phone
	case "address":
		return p.Address
	case "ward":
		return p.Ward
	case "street":
		return p.Street
	case "direction":
		return p.Direction
	case "aadharNumber":
		return p.AadharNumber
	case "panNumber":
		return p.PanNumber
	case "voterIdNumber":
		if p.VoterIDNumber != nil {
			return *p.VoterIDNumber
		}
		return ""
	case "gender":
		return p.Gender
	case "religion":
		return p.Religion
	case "caste":
		return p.Caste
	case "community":
		return p.Community
	case "createdBy":
		return p.CreatedBy
	case "createdAt":
		return p.CreatedAt.Format("2006-01-02 15:04:05")
	}
	return ""
}

// GeneratePeopleExport builds an .xlsx workbook with a bold, frozen header
// row. Identifier columns are written as text so leading zeros survive.
func GeneratePeopleExport(people []service.PersonDTO) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(peopleSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, key := range PeopleExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(peopleSheetName, cell, key); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(peopleSheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		if width, ok := peopleColumnWidths[key]; ok {
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return nil, fmt.Errorf("failed to convert column number: %w", err)
			}
			if err := f.SetColWidth(peopleSheetName, name, name, width); err != nil {
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for rowIdx, p := range people {
		for col, key := range PeopleExportHeader {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			v := personCell(p, key)
			if s, ok := v.(string); ok {
				err = f.SetCellStr(peopleSheetName, cell, s)
			} else {
				err = f.SetCellValue(peopleSheetName, cell, v)
			}
			if err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(peopleSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
