package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"civic-registry/internal/domain"
)

// MemoryPeopleRepo backs people management when DB is disabled. It enforces
// the same unique constraints as the people table.
type MemoryPeopleRepo struct {
	mu     sync.RWMutex
	nextID int64
	people map[int64]domain.Person
	now    func() time.Time
}

func NewMemoryPeopleRepo() *MemoryPeopleRepo {
	return &MemoryPeopleRepo{people: map[int64]domain.Person{}, now: time.Now}
}

var _ PeopleRepository = (*MemoryPeopleRepo)(nil)

// conflict returns the constraint p would violate, ignoring the row with skipID.
func (r *MemoryPeopleRepo) conflict(p *domain.Person, skipID int64) string {
	for id, other := range r.people {
		if id == skipID {
			continue
		}
		switch {
		case other.Phone == p.Phone:
			return "people_phone_key"
		case other.AadharNumber == p.AadharNumber:
			return "people_aadhar_number_key"
		case other.PanNumber == p.PanNumber:
			return "people_pan_number_key"
		case p.VoterIDNumber.Valid && other.VoterIDNumber.Valid && other.VoterIDNumber.String == p.VoterIDNumber.String:
			return "people_voter_id_number_key"
		}
	}
	return ""
}

func (r *MemoryPeopleRepo) CreatePerson(_ context.Context, p *domain.Person) (*domain.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c := r.conflict(p, 0); c != "" {
		return nil, NewUniqueViolation(c)
	}
	r.nextID++
	row := *p
	row.ID = r.nextID
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt
	r.people[row.ID] = row
	return &row, nil
}

func (r *MemoryPeopleRepo) ListPeople(_ context.Context, filters PeopleFilters) ([]*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Person{}
	for _, p := range r.people {
		if !p.IsActive {
			continue
		}
		if filters.Direction != "" && p.Direction != filters.Direction {
			continue
		}
		if filters.CreatedBy != "" && p.CreatedBy != filters.CreatedBy {
			continue
		}
		row := p
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if filters.SortAsc {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if filters.SortAsc {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (r *MemoryPeopleRepo) find(match func(domain.Person) bool) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.people {
		if match(p) {
			row := p
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *MemoryPeopleRepo) GetPerson(_ context.Context, id int64) (*domain.Person, error) {
	return r.find(func(p domain.Person) bool { return p.ID == id })
}

func (r *MemoryPeopleRepo) GetPersonByAadhar(_ context.Context, aadhar string) (*domain.Person, error) {
	return r.find(func(p domain.Person) bool { return p.AadharNumber == aadhar })
}

func (r *MemoryPeopleRepo) GetPersonByPAN(_ context.Context, pan string) (*domain.Person, error) {
	pan = strings.ToUpper(pan)
	return r.find(func(p domain.Person) bool { return p.PanNumber == pan })
}

func (r *MemoryPeopleRepo) GetPersonByPhone(_ context.Context, phone string) (*domain.Person, error) {
	return r.find(func(p domain.Person) bool { return p.Phone == phone })
}

func (r *MemoryPeopleRepo) GetPersonByVoterID(_ context.Context, voterID string) (*domain.Person, error) {
	voterID = strings.ToUpper(voterID)
	return r.find(func(p domain.Person) bool { return p.VoterIDNumber.Valid && p.VoterIDNumber.String == voterID })
}

func (r *MemoryPeopleRepo) UpdatePerson(_ context.Context, id int64, cols []domain.ColumnValue) (*domain.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.people[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if len(cols) == 0 {
		return &current, nil
	}
	next := current
	next.Apply(cols)
	if c := r.conflict(&next, id); c != "" {
		return nil, NewUniqueViolation(c)
	}
	next.UpdatedAt = r.now()
	r.people[id] = next
	return &next, nil
}

func (r *MemoryPeopleRepo) DeletePerson(_ context.Context, id int64) (*domain.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.people[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(r.people, id)
	return &p, nil
}
