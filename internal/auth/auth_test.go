package auth

import (
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"civic-registry/internal/domain"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := h.ComparePassword(hash, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.ComparePassword(hash, "secret2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.ComparePassword("not-a-hash", "secret1")
	assert.Error(t, err)
}

func TestNewPasswordHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewPasswordHasher(0).cost)
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, "civic-registry")
	u := &domain.User{ID: 7, Email: "a@x.com", Role: domain.RoleAdmin, Direction: sql.NullString{String: "East", Valid: true}}

	token, err := m.Issue(u)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, domain.DirectionEast, claims.Direction)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, "")
	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }

	token, err := m.Issue(&domain.User{ID: 1, Email: "a@x.com", Role: domain.RoleSuperAdmin})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.Equal(t, ErrTokenExpired, err)
	assert.EqualError(t, err, "Token has expired. Please login again.")
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, "")
	other := NewTokenManager("other-secret", time.Hour, "")

	token, err := other.Issue(&domain.User{ID: 1, Email: "a@x.com", Role: domain.RoleSuperAdmin})
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.Equal(t, ErrTokenInvalid, err)

	_, err = m.Parse("garbage")
	assert.Equal(t, ErrTokenInvalid, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: 1, Role: domain.RoleSuperAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(unsigned)
	assert.Equal(t, ErrTokenInvalid, err)
}
