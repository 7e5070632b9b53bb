//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"civic-registry/internal/domain"
)

// getTestDB starts a throwaway Postgres and applies the embedded schema.
func getTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("civic_registry"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Skipf("Skipping integration test: cannot start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, EnsureSchema(ctx, db))
	// Second run must be a no-op.
	require.NoError(t, EnsureSchema(ctx, db))
	return db
}

func TestPostgresIntegration_PeopleLifecycle(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	repo := NewPostgresPeopleRepository(db, 5*time.Second)

	created, err := repo.CreatePerson(ctx, newTestPerson("Asha", "9000000001", "123456789012", "ABCDE1234F"))
	require.NoError(t, err)

	_, err = repo.CreatePerson(ctx, newTestPerson("Copy", "9000000002", "123456789012", "ABCDE1234G"))
	uv, ok := AsUniqueViolation(err)
	require.True(t, ok, "expected unique violation, got %v", err)
	assert.Equal(t, "aadharNumber", uv.Field)

	updated, err := repo.UpdatePerson(ctx, created.ID, domain.PersonInput{Age: domain.IntValue(45)}.Columns())
	require.NoError(t, err)
	assert.Equal(t, 45, updated.Age)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Phone, updated.Phone)
	assert.Equal(t, created.PanNumber, updated.PanNumber)

	first, err := repo.GetPerson(ctx, created.ID)
	require.NoError(t, err)
	second, err := repo.GetPerson(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = repo.CreatePerson(ctx, &domain.Person{
		Name: "Bad", Age: 200, Phone: "9000000009", Direction: domain.DirectionEast,
		AadharNumber: "999999999999", PanNumber: "ZZZZZ9999Z", Gender: "Male", Community: "General", CreatedBy: "x",
	})
	var cv *CheckViolationError
	assert.ErrorAs(t, err, &cv)

	deleted, err := repo.DeletePerson(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	_, err = repo.GetPerson(ctx, created.ID)
	assert.True(t, IsNotFound(err))
}

func TestPostgresIntegration_MessagesAndTemplates(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	users := NewPostgresUsersRepository(db, 5*time.Second)
	templates := NewPostgresTemplatesRepository(db, 5*time.Second)
	messages := NewPostgresMessagesRepository(db, 5*time.Second)

	sender, err := users.CreateUser(ctx, &domain.User{
		Email: "Sender@X.com", Password: "hash", Role: domain.RoleAdmin,
		Direction: sql.NullString{String: "East", Valid: true}, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "sender@x.com", sender.Email)

	_, err = users.CreateUser(ctx, &domain.User{Email: "nodir@x.com", Password: "hash", Role: domain.RoleAdmin, IsActive: true})
	var cv *CheckViolationError
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, "direction_required_for_admin", cv.Constraint)

	tpl, err := templates.CreateTemplate(ctx, &domain.Template{Title: "T", Body: "Hi {{name}}", CreatedBy: sender.ID})
	require.NoError(t, err)

	recipients := []string{"1", "2"}
	msg, err := messages.CreateMessage(ctx, &domain.Message{
		SenderID:       sender.ID,
		Direction:      sender.Direction,
		TemplateID:     sql.NullInt64{Int64: tpl.ID, Valid: true},
		Recipients:     recipients,
		Body:           "Hi all",
		DeliveryReport: domain.PendingReport(recipients),
		SentAt:         sql.NullTime{Time: time.Now(), Valid: true},
	})
	require.NoError(t, err)
	assert.Equal(t, recipients, msg.Recipients)
	assert.Len(t, msg.DeliveryReport, len(msg.Recipients))

	require.NoError(t, templates.DeleteTemplate(ctx, tpl.ID))
	got, err := messages.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, got.TemplateID.Valid, "template deletion must null the reference")

	mine, err := messages.ListMessages(ctx, &sender.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
