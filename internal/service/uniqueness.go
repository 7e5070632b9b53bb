package service

import (
	"context"
	"fmt"

	"civic-registry/internal/domain"
	"civic-registry/internal/repository"
)

// UniquenessChecker looks for identifier conflicts before a person write so
// the client gets a message naming the record that already holds the value.
// The people table's unique constraints remain the final arbiter.
type UniquenessChecker struct {
	people repository.PeopleRepository
}

func NewUniquenessChecker(people repository.PeopleRepository) *UniquenessChecker {
	return &UniquenessChecker{people: people}
}

type identifierCheck struct {
	label  string
	value  *string
	lookup func(ctx context.Context, v string) (*domain.Person, error)
}

// CheckUnique checks aadhar, pan, voter id and phone, in that order, for every
// value present in in. excludeID skips the record being updated (0 for
// creates). Input must be normalized. It never writes.
func (c *UniquenessChecker) CheckUnique(ctx context.Context, in domain.PersonInput, excludeID int64) ([]string, error) {
	checks := []identifierCheck{
		{"Aadhar number", in.AadharNumber, c.people.GetPersonByAadhar},
		{"PAN number", in.PanNumber, c.people.GetPersonByPAN},
		{"Voter ID", in.VoterIDNumber, c.people.GetPersonByVoterID},
		{"Phone number", in.Phone, c.people.GetPersonByPhone},
	}

	conflicts := []string{}
	for _, chk := range checks {
		if chk.value == nil {
			continue
		}
		existing, err := chk.lookup(ctx, *chk.value)
		if err != nil {
			if repository.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("check %s: %w", chk.label, err)
		}
		if excludeID != 0 && existing.ID == excludeID {
			continue
		}
		conflicts = append(conflicts, fmt.Sprintf("%s %s already exists for %s", chk.label, *chk.value, existing.Name))
	}
	return conflicts, nil
}
