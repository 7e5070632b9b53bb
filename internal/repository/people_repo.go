package repository

import (
	"context"

	"civic-registry/internal/domain"
)

// PeopleRepository persists citizen records. Missing rows surface as
// sql.ErrNoRows; unique constraint hits as *UniqueViolationError.
type PeopleRepository interface {
	CreatePerson(ctx context.Context, p *domain.Person) (*domain.Person, error)
	ListPeople(ctx context.Context, filters PeopleFilters) ([]*domain.Person, error)
	GetPerson(ctx context.Context, id int64) (*domain.Person, error)

	// Identifier lookups span active and inactive rows. PAN and voter id are
	// compared uppercase.
	GetPersonByAadhar(ctx context.Context, aadhar string) (*domain.Person, error)
	GetPersonByPAN(ctx context.Context, pan string) (*domain.Person, error)
	GetPersonByPhone(ctx context.Context, phone string) (*domain.Person, error)
	GetPersonByVoterID(ctx context.Context, voterID string) (*domain.Person, error)

	// UpdatePerson applies translated columns. An empty column list returns
	// the current row untouched.
	UpdatePerson(ctx context.Context, id int64, cols []domain.ColumnValue) (*domain.Person, error)
	DeletePerson(ctx context.Context, id int64) (*domain.Person, error)
}

// PeopleFilters narrows ListPeople. Only active records are listed.
type PeopleFilters struct {
	Direction domain.Direction
	CreatedBy string
	SortAsc   bool // default is created_at DESC
}
