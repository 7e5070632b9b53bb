package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"civic-registry/internal/domain"
	"civic-registry/internal/metrics"
	"civic-registry/internal/repository"
)

const (
	defaultAPICreator  = "api@example.com"
	defaultSyncCreator = "sync@googlesheets.com"
)

// PersonService is the citizen-record surface.
type PersonService interface {
	CreatePerson(ctx context.Context, caller Caller, in domain.PersonInput) (*PersonDTO, error)
	ListPeople(ctx context.Context, caller Caller, q PeopleQuery) ([]PersonDTO, error)
	GetPerson(ctx context.Context, caller Caller, id int64) (*PersonDTO, error)
	UpdatePerson(ctx context.Context, caller Caller, id int64, in domain.PersonInput) (*PersonDTO, error)
	DeletePerson(ctx context.Context, caller Caller, id int64) (*PersonDTO, error)
	SyncPeople(ctx context.Context, caller Caller, records []json.RawMessage) (*SyncResult, error)
	ImportPeople(ctx context.Context, caller Caller, records []domain.PersonInput) (*SyncResult, error)
}

// PeopleQuery carries the optional list filters. Direction is honored for
// superadmins only; admins are always scoped to their own region. SortAsc
// lists oldest first instead of newest first.
type PeopleQuery struct {
	Direction string
	CreatedBy string
	SortAsc   bool
}

// SyncResult summarizes a bulk import. Errors counts failed records;
// ErrorMessages lists them in input order.
type SyncResult struct {
	Synced        int      `json:"synced"`
	Skipped       int      `json:"skipped"`
	Errors        int      `json:"errors"`
	ErrorMessages []string `json:"-"`
}

type personService struct {
	people  repository.PeopleRepository
	checker *UniquenessChecker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewPersonService(people repository.PeopleRepository, m *metrics.Metrics, logger *zap.Logger) PersonService {
	return &personService{
		people:  people,
		checker: NewUniquenessChecker(people),
		metrics: m,
		logger:  logger,
	}
}

// scopeDirection fills in an admin's region when the input has none and
// rejects writes into another region.
func scopeDirection(caller Caller, in *domain.PersonInput) error {
	if caller.Role != domain.RoleAdmin {
		return nil
	}
	if in.Direction == nil {
		d := string(caller.Direction)
		in.Direction = &d
		return nil
	}
	return Authorize(caller, Owner{Direction: domain.Direction(*in.Direction)}).Err()
}

// storeError maps a storage failure on a person write to a client error when
// one applies.
func storeError(err error, op string) error {
	if uv, ok := repository.AsUniqueViolation(err); ok && uv.Message != "" {
		return domain.WrapError(domain.CodeConflict, uv.Message, err)
	}
	var cv *repository.CheckViolationError
	if errors.As(err, &cv) {
		return domain.WrapError(domain.CodeInvalidInput, "Invalid data provided. Please check all required fields.", err)
	}
	return notFoundOr(err, "Person not found in database", op)
}

func (s *personService) CreatePerson(ctx context.Context, caller Caller, in domain.PersonInput) (*PersonDTO, error) {
	in = in.Normalize()
	if in.CreatedBy == nil {
		creator := caller.Email
		if creator == "" {
			creator = defaultAPICreator
		}
		in.CreatedBy = &creator
	}
	if in.MissingRequired() {
		return nil, domain.Invalid("Missing required fields: name, phone, aadharNumber, panNumber")
	}
	if err := scopeDirection(caller, &in); err != nil {
		return nil, err
	}
	if err := in.ValidateNew(); err != nil {
		return nil, err
	}

	conflicts, err := s.checker.CheckUnique(ctx, in, 0)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, domain.NewError(domain.CodeConflict, strings.Join(conflicts, ", "))
	}

	created, err := s.people.CreatePerson(ctx, in.ToPerson())
	if err != nil {
		return nil, storeError(err, "create person")
	}
	s.metrics.IncPeopleCreated()
	s.logger.Info("Person created",
		zap.Int64("person_id", created.ID),
		zap.String("direction", string(created.Direction)),
		zap.String("created_by", created.CreatedBy),
	)
	dto := toPersonDTO(created)
	return &dto, nil
}

func (s *personService) filters(caller Caller, q PeopleQuery) (repository.PeopleFilters, error) {
	f := repository.PeopleFilters{CreatedBy: strings.TrimSpace(q.CreatedBy), SortAsc: q.SortAsc}
	if caller.Role == domain.RoleAdmin {
		f.Direction = caller.Direction
		return f, nil
	}
	if d := strings.TrimSpace(q.Direction); d != "" {
		if !domain.Direction(d).Valid() {
			return f, domain.Invalid("Direction must be East, West, North, or South")
		}
		f.Direction = domain.Direction(d)
	}
	return f, nil
}

func (s *personService) ListPeople(ctx context.Context, caller Caller, q PeopleQuery) ([]PersonDTO, error) {
	f, err := s.filters(caller, q)
	if err != nil {
		return nil, err
	}
	people, err := s.people.ListPeople(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	out := make([]PersonDTO, 0, len(people))
	for _, p := range people {
		out = append(out, toPersonDTO(p))
	}
	return out, nil
}

// loadScoped fetches a record and checks the caller may act on its region.
func (s *personService) loadScoped(ctx context.Context, caller Caller, id int64) (*domain.Person, error) {
	p, err := s.people.GetPerson(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Person not found in database", "get person")
	}
	if err := Authorize(caller, Owner{Direction: p.Direction}).Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *personService) GetPerson(ctx context.Context, caller Caller, id int64) (*PersonDTO, error) {
	p, err := s.loadScoped(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	dto := toPersonDTO(p)
	return &dto, nil
}

func (s *personService) UpdatePerson(ctx context.Context, caller Caller, id int64, in domain.PersonInput) (*PersonDTO, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	current, err := s.loadScoped(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if in.Direction != nil {
		if err := Authorize(caller, Owner{Direction: domain.Direction(*in.Direction)}).Err(); err != nil {
			return nil, err
		}
	}
	if in.Empty() {
		dto := toPersonDTO(current)
		return &dto, nil
	}

	conflicts, err := s.checker.CheckUnique(ctx, in, id)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, domain.NewError(domain.CodeConflict, strings.Join(conflicts, ", "))
	}

	updated, err := s.people.UpdatePerson(ctx, id, in.Columns())
	if err != nil {
		return nil, storeError(err, "update person")
	}
	s.logger.Info("Person updated", zap.Int64("person_id", id), zap.String("by", caller.Email))
	dto := toPersonDTO(updated)
	return &dto, nil
}

func (s *personService) DeletePerson(ctx context.Context, caller Caller, id int64) (*PersonDTO, error) {
	if _, err := s.loadScoped(ctx, caller, id); err != nil {
		return nil, err
	}
	deleted, err := s.people.DeletePerson(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Person not found in database", "delete person")
	}
	s.logger.Info("Person deleted", zap.Int64("person_id", id), zap.String("by", caller.Email))
	dto := toPersonDTO(deleted)
	return &dto, nil
}

// SyncPeople decodes and creates each element on its own. An element that is
// not a person object is reported as a failed record.
func (s *personService) SyncPeople(ctx context.Context, caller Caller, records []json.RawMessage) (*SyncResult, error) {
	items := make([]syncItem, len(records))
	for i, raw := range records {
		if err := json.Unmarshal(raw, &items[i].in); err != nil {
			items[i] = syncItem{name: recordName(raw), err: domain.Invalid("Invalid record data")}
		}
	}
	return s.bulkCreate(ctx, caller, items, defaultSyncCreator), nil
}

// ImportPeople runs file-sourced rows through the sync path with the caller
// stamped as creator, and the caller's region for admins.
func (s *personService) ImportPeople(ctx context.Context, caller Caller, records []domain.PersonInput) (*SyncResult, error) {
	items := make([]syncItem, len(records))
	for i, r := range records {
		r.CreatedBy = domain.Str(caller.Email)
		if caller.Role == domain.RoleAdmin {
			r.Direction = domain.Str(string(caller.Direction))
		}
		items[i] = syncItem{in: r}
	}
	return s.bulkCreate(ctx, caller, items, defaultSyncCreator), nil
}

// syncItem is one bulk record; err is set when it could not be decoded.
type syncItem struct {
	in   domain.PersonInput
	name string
	err  error
}

// recordName reads a display name from an element that failed to decode.
func recordName(raw json.RawMessage) string {
	var named struct {
		Name any `json:"name"`
	}
	if json.Unmarshal(raw, &named) == nil {
		if n, ok := named.Name.(string); ok && strings.TrimSpace(n) != "" {
			return strings.TrimSpace(n)
		}
	}
	return "unknown"
}

// bulkCreate inserts records one at a time. Records whose aadhar already
// exists are skipped; failures are collected and never stop the batch.
func (s *personService) bulkCreate(ctx context.Context, caller Caller, items []syncItem, creator string) *SyncResult {
	res := &SyncResult{ErrorMessages: []string{}}
	for _, item := range items {
		in := item.in.Normalize()
		skipped, err := false, item.err
		if err == nil {
			skipped, err = s.syncOne(ctx, caller, in, creator)
		}
		switch {
		case err != nil:
			name := "unknown"
			switch {
			case item.name != "":
				name = item.name
			case in.Name != nil:
				name = *in.Name
			}
			msg := err.Error()
			if de, ok := domain.AsError(err); ok {
				msg = de.Message
			}
			res.ErrorMessages = append(res.ErrorMessages, fmt.Sprintf("Failed to sync %s: %s", name, msg))
			s.logger.Warn("Sync record failed", zap.String("name", name), zap.Error(err))
		case skipped:
			res.Skipped++
		default:
			res.Synced++
		}
	}
	res.Errors = len(res.ErrorMessages)
	s.metrics.AddSync(res.Synced, res.Skipped, res.Errors)
	s.logger.Info("Sync completed",
		zap.Int("synced", res.Synced),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", res.Errors),
	)
	return res
}

func (s *personService) syncOne(ctx context.Context, caller Caller, in domain.PersonInput, creator string) (bool, error) {
	if in.AadharNumber != nil {
		if _, err := s.people.GetPersonByAadhar(ctx, *in.AadharNumber); err == nil {
			return true, nil
		} else if !repository.IsNotFound(err) {
			return false, err
		}
	}
	if in.CreatedBy == nil {
		in.CreatedBy = &creator
	}
	if err := scopeDirection(caller, &in); err != nil {
		return false, err
	}
	if err := in.ValidateNew(); err != nil {
		return false, err
	}
	if _, err := s.people.CreatePerson(ctx, in.ToPerson()); err != nil {
		return false, storeError(err, "create person")
	}
	s.metrics.IncPeopleCreated()
	return false, nil
}
