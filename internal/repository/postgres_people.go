package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"civic-registry/internal/domain"
)

const personColumns = `id, name, age, phone, address, ward, street, direction,
	aadhar_number, pan_number, voter_id_number, gender, religion, caste,
	community, created_by, is_active, created_at, updated_at`

// updatablePersonColumns guards the dynamic SET clause.
var updatablePersonColumns = map[string]bool{
	"name": true, "age": true, "phone": true, "address": true, "ward": true,
	"street": true, "direction": true, "aadhar_number": true, "pan_number": true,
	"voter_id_number": true, "gender": true, "religion": true, "caste": true,
	"community": true, "created_by": true,
}

// PostgresPeopleRepository implements PeopleRepository on the people table.
type PostgresPeopleRepository struct {
	pgBase
}

func NewPostgresPeopleRepository(db *sql.DB, queryTimeout time.Duration) *PostgresPeopleRepository {
	return &PostgresPeopleRepository{pgBase{db: db, timeout: queryTimeout}}
}

var _ PeopleRepository = (*PostgresPeopleRepository)(nil)

func scanPerson(row rowScanner) (*domain.Person, error) {
	var p domain.Person
	var direction string
	err := row.Scan(
		&p.ID, &p.Name, &p.Age, &p.Phone, &p.Address, &p.Ward, &p.Street, &direction,
		&p.AadharNumber, &p.PanNumber, &p.VoterIDNumber, &p.Gender, &p.Religion, &p.Caste,
		&p.Community, &p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Direction = domain.Direction(direction)
	return &p, nil
}

func (r *PostgresPeopleRepository) CreatePerson(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO people (
			name, age, phone, address, ward, street, direction,
			aadhar_number, pan_number, voter_id_number, gender, religion, caste,
			community, created_by, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + personColumns

	created, err := scanPerson(r.db.QueryRowContext(ctx, query,
		p.Name, p.Age, p.Phone, p.Address, p.Ward, p.Street, string(p.Direction),
		p.AadharNumber, p.PanNumber, p.VoterIDNumber, p.Gender, p.Religion, p.Caste,
		p.Community, p.CreatedBy, p.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create person: %w", translateError(err))
	}
	return created, nil
}

func (r *PostgresPeopleRepository) ListPeople(ctx context.Context, filters PeopleFilters) ([]*domain.Person, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where := []string{"is_active = true"}
	args := []any{}
	argIdx := 1

	if filters.Direction != "" {
		where = append(where, fmt.Sprintf("direction = $%d", argIdx))
		args = append(args, string(filters.Direction))
		argIdx++
	}
	if filters.CreatedBy != "" {
		where = append(where, fmt.Sprintf("created_by = $%d", argIdx))
		args = append(args, filters.CreatedBy)
		argIdx++
	}

	order := "DESC"
	if filters.SortAsc {
		order = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM people WHERE %s ORDER BY created_at %s, id %s`,
		personColumns, strings.Join(where, " AND "), order, order)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	out := []*domain.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return out, nil
}

func (r *PostgresPeopleRepository) getBy(ctx context.Context, column string, value any) (*domain.Person, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM people WHERE %s = $1`, personColumns, column)
	p, err := scanPerson(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by %s: %w", column, err)
	}
	return p, nil
}

func (r *PostgresPeopleRepository) GetPerson(ctx context.Context, id int64) (*domain.Person, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresPeopleRepository) GetPersonByAadhar(ctx context.Context, aadhar string) (*domain.Person, error) {
	return r.getBy(ctx, "aadhar_number", aadhar)
}

func (r *PostgresPeopleRepository) GetPersonByPAN(ctx context.Context, pan string) (*domain.Person, error) {
	return r.getBy(ctx, "pan_number", strings.ToUpper(pan))
}

func (r *PostgresPeopleRepository) GetPersonByPhone(ctx context.Context, phone string) (*domain.Person, error) {
	return r.getBy(ctx, "phone", phone)
}

func (r *PostgresPeopleRepository) GetPersonByVoterID(ctx context.Context, voterID string) (*domain.Person, error) {
	return r.getBy(ctx, "voter_id_number", strings.ToUpper(voterID))
}

func (r *PostgresPeopleRepository) UpdatePerson(ctx context.Context, id int64, cols []domain.ColumnValue) (*domain.Person, error) {
	if len(cols) == 0 {
		return r.GetPerson(ctx, id)
	}

	set := make([]string, 0, len(cols)+1)
	args := []any{id}
	for i, c := range cols {
		if !updatablePersonColumns[c.Column] {
			return nil, fmt.Errorf("column %q is not updatable", c.Column)
		}
		set = append(set, fmt.Sprintf("%s = $%d", c.Column, i+2))
		args = append(args, c.Value)
	}
	set = append(set, "updated_at = CURRENT_TIMESTAMP")

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`UPDATE people SET %s WHERE id = $1 RETURNING %s`, strings.Join(set, ", "), personColumns)
	p, err := scanPerson(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update person: %w", translateError(err))
	}
	return p, nil
}

func (r *PostgresPeopleRepository) DeletePerson(ctx context.Context, id int64) (*domain.Person, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	p, err := scanPerson(r.db.QueryRowContext(ctx, `DELETE FROM people WHERE id = $1 RETURNING `+personColumns, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete person: %w", err)
	}
	return p, nil
}
