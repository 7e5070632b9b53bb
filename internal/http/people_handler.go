package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"civic-registry/internal/domain"
	"civic-registry/internal/service"
)

// PeopleHandler serves /api/people.
type PeopleHandler struct {
	personService service.PersonService
	maxBody       int64
	logger        *zap.Logger
}

func NewPeopleHandler(personService service.PersonService, maxBody int64, logger *zap.Logger) *PeopleHandler {
	return &PeopleHandler{personService: personService, maxBody: maxBody, logger: logger}
}

func peopleQuery(r *http.Request) service.PeopleQuery {
	q := r.URL.Query()
	return service.PeopleQuery{
		Direction: q.Get("direction"),
		CreatedBy: q.Get("createdBy"),
		SortAsc:   strings.EqualFold(q.Get("sort"), "asc"),
	}
}

func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	people, err := h.personService.ListPeople(r.Context(), caller, peopleQuery(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkData(
		fmt.Sprintf("Retrieved %d people from database", len(people)), people, len(people)))
}

func (h *PeopleHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "Invalid person ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	p, err := h.personService.GetPerson(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkData("", p, -1))
}

func (h *PeopleHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var in domain.PersonInput
	if err := readBodyJSON(r, h.maxBody, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	p, err := h.personService.CreatePerson(r.Context(), caller, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, OkData(
		fmt.Sprintf("Person %s added successfully to database", p.Name), p, -1))
}

func (h *PeopleHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "Invalid person ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var in domain.PersonInput
	if err := readBodyJSON(r, h.maxBody, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	p, err := h.personService.UpdatePerson(r.Context(), caller, id, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkData(
		fmt.Sprintf("Person %s updated successfully in database", p.Name), p, -1))
}

func (h *PeopleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "Invalid person ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	p, err := h.personService.DeletePerson(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(fmt.Sprintf("Person %s deleted successfully from database", p.Name)))
}

func syncResult(message string, res *service.SyncResult) Result {
	out := Result{Success: true, Message: message, Stats: res}
	if len(res.ErrorMessages) > 0 {
		out.Errors = res.ErrorMessages
	}
	return out
}

// Sync accepts a JSON array of person records.
func (h *PeopleHandler) Sync(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	invalid := domain.Invalid("Invalid people data provided")

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if int64(len(body)) > h.maxBody {
		writeError(w, r, h.logger, errBodyTooLarge)
		return
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		writeError(w, r, h.logger, invalid)
		return
	}
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		writeError(w, r, h.logger, invalid)
		return
	}

	res, err := h.personService.SyncPeople(r.Context(), caller, records)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, syncResult(
		fmt.Sprintf("Sync completed: %d people synced to database", res.Synced), res))
}

// Import accepts a multipart "file" field holding an .xlsx or .csv sheet.
func (h *PeopleHandler) Import(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(h.maxBody); err != nil {
		writeError(w, r, h.logger, domain.Invalid("Failed to parse upload form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, h.logger, domain.Invalid("File not found in request"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, h.logger, domain.Invalid("Failed to read file"))
		return
	}

	var records []domain.PersonInput
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		records, err = ParsePeopleCSV(bytes.NewReader(data))
	case ".xlsx":
		records, err = ParsePeopleExcel(bytes.NewReader(data))
	default:
		err = domain.Invalid("Unsupported file type. Upload a .xlsx or .csv file")
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.personService.ImportPeople(r.Context(), caller, records)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, syncResult(
		fmt.Sprintf("Import completed: %d people imported to database", res.Synced), res))
}

// Export streams the caller's visible people as an .xlsx workbook.
func (h *PeopleHandler) Export(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	people, err := h.personService.ListPeople(r.Context(), caller, peopleQuery(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	data, err := GeneratePeopleExport(people)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="people.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
