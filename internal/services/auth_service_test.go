package services

import (
	"database/sql"
	"testing"

	"github.com/scanvault/scanvault-be/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := setupDB(t)
	return NewAuthService(db, NewEventService(db))
}

func TestRegister_ThenLogin(t *testing.T) {
	s := newAuthService(t)

	created, err := s.Register("alice", "a@x.com", "5551234567", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.Username)
	assert.Empty(t, created.Password)

	logged, err := s.Login("alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, logged.ID)
	assert.Empty(t, logged.Password)
}

func TestRegister_TrimsInputs(t *testing.T) {
	s := newAuthService(t)

	created, err := s.Register("  bob  ", " b@x.com ", " 5551234567 ", " secret1 ")
	require.NoError(t, err)
	assert.Equal(t, "bob", created.Username)
	assert.Equal(t, "b@x.com", created.Email)

	_, err = s.Login("bob", "secret1")
	require.NoError(t, err)
}

func TestRegister_UsernameTaken(t *testing.T) {
	s := newAuthService(t)

	_, err := s.Register("alice", "a@x.com", "5551234567", "secret1")
	require.NoError(t, err)

	_, err = s.Register("alice", "other@x.com", "5559876543", "different")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// The failed attempt must not have written anything.
	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		phone    string
		password string
	}{
		{"empty username", "", "a@x.com", "5551234567", "secret1"},
		{"whitespace username", "   ", "a@x.com", "5551234567", "secret1"},
		{"empty email", "alice", "", "5551234567", "secret1"},
		{"bad email", "alice", "not-an-email", "5551234567", "secret1"},
		{"empty phone", "alice", "a@x.com", "", "secret1"},
		{"short phone", "alice", "a@x.com", "12345", "secret1"},
		{"alpha phone", "alice", "a@x.com", "555123456a", "secret1"},
		{"empty password", "alice", "a@x.com", "5551234567", ""},
		{"short password", "alice", "a@x.com", "5551234567", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newAuthService(t)
			_, err := s.Register(tt.username, tt.email, tt.phone, tt.password)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	s := newAuthService(t)

	_, err := s.Login("nobody", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newAuthService(t)

	_, err := s.Register("alice", "a@x.com", "5551234567", "secret1")
	require.NoError(t, err)

	_, err = s.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UsernameIsCaseSensitive(t *testing.T) {
	s := newAuthService(t)

	_, err := s.Register("alice", "a@x.com", "5551234567", "secret1")
	require.NoError(t, err)

	_, err = s.Login("Alice", "secret1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByID(t *testing.T) {
	s := newAuthService(t)

	created, err := s.Register("alice", "a@x.com", "5551234567", "secret1")
	require.NoError(t, err)

	got, err := s.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "5551234567", got.Phone)
	assert.Empty(t, got.Password)

	_, err = s.GetUserByID("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
