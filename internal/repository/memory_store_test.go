package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-registry/internal/domain"
)

func newTestPerson(name, phone, aadhar, pan string) *domain.Person {
	return domain.PersonInput{
		Name: domain.Str(name), Age: domain.IntValue(30), Phone: domain.Str(phone),
		Direction: domain.Str("East"), AadharNumber: domain.Str(aadhar), PanNumber: domain.Str(pan),
		Gender: domain.Str("Male"), Community: domain.Str("General"), CreatedBy: domain.Str("t@x.com"),
	}.ToPerson()
}

func TestMemoryPeople_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPeopleRepo()

	first, err := repo.CreatePerson(ctx, newTestPerson("A", "9000000001", "100000000001", "AAAAA1111A"))
	require.NoError(t, err)

	_, err = repo.CreatePerson(ctx, newTestPerson("B", "9000000002", "100000000001", "BBBBB2222B"))
	uv, ok := AsUniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "people_aadhar_number_key", uv.Constraint)

	second, err := repo.CreatePerson(ctx, newTestPerson("B", "9000000002", "100000000002", "BBBBB2222B"))
	require.NoError(t, err)

	_, err = repo.UpdatePerson(ctx, second.ID, domain.PersonInput{Phone: domain.Str(first.Phone)}.Columns())
	uv, ok = AsUniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "phone", uv.Field)

	// Updating a row to its own values is not a conflict.
	_, err = repo.UpdatePerson(ctx, second.ID, domain.PersonInput{Phone: domain.Str(second.Phone)}.Columns())
	require.NoError(t, err)
}

func TestMemoryPeople_VoterIDUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPeopleRepo()

	withVoter := func(p *domain.Person, voter string) *domain.Person {
		p.VoterIDNumber = sql.NullString{String: voter, Valid: true}
		return p
	}
	first, err := repo.CreatePerson(ctx, withVoter(newTestPerson("A", "9000000001", "100000000001", "AAAAA1111A"), "XYZ1234567"))
	require.NoError(t, err)

	_, err = repo.CreatePerson(ctx, withVoter(newTestPerson("B", "9000000002", "100000000002", "BBBBB2222B"), "XYZ1234567"))
	uv, ok := AsUniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "people_voter_id_number_key", uv.Constraint)
	assert.Equal(t, "voterIdNumber", uv.Field)
	assert.Equal(t, "Voter ID already exists", uv.Message)

	// Records without a voter id never collide on it.
	_, err = repo.CreatePerson(ctx, newTestPerson("C", "9000000003", "100000000003", "CCCCC3333C"))
	require.NoError(t, err)
	_, err = repo.CreatePerson(ctx, newTestPerson("D", "9000000004", "100000000004", "DDDDD4444D"))
	require.NoError(t, err)

	found, err := repo.GetPersonByVoterID(ctx, "xyz1234567")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestMemoryPeople_ListScopesAndOrders(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPeopleRepo()

	east := newTestPerson("East1", "9000000001", "100000000001", "AAAAA1111A")
	west := newTestPerson("West1", "9000000002", "100000000002", "BBBBB2222B")
	west.Direction = domain.DirectionWest
	inactive := newTestPerson("Gone", "9000000003", "100000000003", "CCCCC3333C")
	inactive.IsActive = false
	east2 := newTestPerson("East2", "9000000004", "100000000004", "DDDDD4444D")

	for _, p := range []*domain.Person{east, west, inactive, east2} {
		_, err := repo.CreatePerson(ctx, p)
		require.NoError(t, err)
	}

	list, err := repo.ListPeople(ctx, PeopleFilters{Direction: domain.DirectionEast})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "East2", list[0].Name, "newest first")

	all, err := repo.ListPeople(ctx, PeopleFilters{SortAsc: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "East1", all[0].Name)

	// Identifier lookups still see inactive rows.
	got, err := repo.GetPersonByPAN(ctx, "ccccc3333c")
	require.NoError(t, err)
	assert.Equal(t, "Gone", got.Name)
}

func TestMemoryStore_ReferentialActions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	users := store.UsersRepository()

	owner, err := users.CreateUser(ctx, &domain.User{Email: "o@x.com", Role: domain.RoleSuperAdmin, IsActive: true})
	require.NoError(t, err)
	other, err := users.CreateUser(ctx, &domain.User{Email: "p@x.com", Role: domain.RoleSuperAdmin, IsActive: true})
	require.NoError(t, err)

	tpl, err := store.Templates.CreateTemplate(ctx, &domain.Template{Title: "T", Body: "B", CreatedBy: owner.ID})
	require.NoError(t, err)

	msg, err := store.Messages.CreateMessage(ctx, &domain.Message{
		SenderID: other.ID, Body: "B", Recipients: []string{"1"},
		TemplateID:     sql.NullInt64{Int64: tpl.ID, Valid: true},
		DeliveryReport: domain.PendingReport([]string{"1"}),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageStatusSent, msg.Status)

	// Template deletion nulls the reference but keeps the message.
	require.NoError(t, store.Templates.DeleteTemplate(ctx, tpl.ID))
	got, err := store.Messages.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, got.TemplateID.Valid)

	// User deletion cascades to their messages.
	require.NoError(t, users.DeleteUser(ctx, other.ID))
	_, err = store.Messages.GetMessage(ctx, msg.ID)
	assert.True(t, IsNotFound(err))
}

func TestMemoryUsers_EmailUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUsersRepo()

	_, err := repo.CreateUser(ctx, &domain.User{Email: "A@x.com", Role: domain.RoleSuperAdmin})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, &domain.User{Email: "a@X.COM", Role: domain.RoleSuperAdmin})
	_, ok := AsUniqueViolation(err)
	assert.True(t, ok)

	u, err := repo.GetUserByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
}

func TestMemoryMessages_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMessagesRepo()

	m, err := repo.CreateMessage(ctx, &domain.Message{SenderID: 1, Recipients: []string{"1"}, DeliveryReport: domain.PendingReport([]string{"1"})})
	require.NoError(t, err)

	m.DeliveryReport[0].Status = "delivered"

	stored, err := repo.GetMessage(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusPending, stored.DeliveryReport[0].Status)
}
