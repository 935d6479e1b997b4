package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users", "users.json")
	s, err := Open(path, Options{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	return s, path
}

func TestOpenCreatesEmptyTable(t *testing.T) {
	s, path := openTestStore(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
	assert.Equal(t, 0, s.Count())
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.Register("alice", "pw1"))
	assert.NoError(t, s.Authenticate("alice", "pw1"))
	assert.ErrorIs(t, s.Authenticate("alice", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, s.Register("alice", "pw2"), ErrDuplicateUser)

	// the failed registration must not have replaced the password
	assert.NoError(t, s.Authenticate("alice", "pw1"))
	assert.ErrorIs(t, s.Authenticate("alice", "pw2"), ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	s, _ := openTestStore(t)
	assert.ErrorIs(t, s.Authenticate("nobody", "pw"), ErrInvalidCredentials)
}

func TestDuplicateLeavesFileUnchanged(t *testing.T) {
	s, path := openTestStore(t)
	require.NoError(t, s.Register("alice", "pw1"))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.ErrorIs(t, s.Register("alice", "pw2"), ErrDuplicateUser)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPasswordIsNotStoredInPlaintext(t *testing.T) {
	s, path := openTestStore(t)
	require.NoError(t, s.Register("bob", "hunter2"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")

	var table map[string]struct {
		Password  string `json:"password"`
		CreatedAt string `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal(data, &table))
	require.Contains(t, table, "bob")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(table["bob"].Password), []byte("hunter2")))
	assert.NotEmpty(t, table["bob"].CreatedAt)
}

func TestReopenKeepsUsers(t *testing.T) {
	s, path := openTestStore(t)
	require.NoError(t, s.Register("carol", "secret"))

	reopened, err := Open(path, Options{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	assert.True(t, reopened.Exists("carol"))
	assert.NoError(t, reopened.Authenticate("carol", "secret"))
}

func TestCreatedAtUsesClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	fixed := time.Date(2024, 2, 3, 4, 5, 6, 7000, time.UTC)
	s, err := Open(path, Options{Cost: bcrypt.MinCost, Now: func() time.Time { return fixed }})
	require.NoError(t, err)

	require.NoError(t, s.Register("dave", "pw"))
	u, ok := s.Get("dave")
	require.True(t, ok)
	assert.Equal(t, "dave", u.Username)
	assert.Equal(t, "2024-02-03 04:05:06.000007", u.CreatedAt)
}

func TestLookupTrimsUsername(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.Register(" alice ", "pw"))

	assert.True(t, s.Exists("alice"))
	assert.True(t, s.Exists(" alice "))
	u, ok := s.Get(" alice ")
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
	assert.NoError(t, s.Authenticate(" alice ", "pw"))
}

func TestRegisterValidation(t *testing.T) {
	s, _ := openTestStore(t)

	assert.ErrorIs(t, s.Register("  ", "pw"), ErrInvalidUsername)
	assert.ErrorIs(t, s.Register("erin", ""), ErrInvalidPassword)
	assert.ErrorIs(t, s.Register("erin", strings.Repeat("x", 73)), ErrInvalidPassword)
	assert.Equal(t, 0, s.Count())
}

func TestOpenRejectsCorruptTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Open(path, Options{Cost: bcrypt.MinCost})
	assert.Error(t, err)
}
