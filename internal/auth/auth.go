// Package auth stores local logins in a JSON file with bcrypt password hashes.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tgienger/focusboard/internal/models"
)

var (
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username must not be empty")
	ErrInvalidPassword    = errors.New("password must be 1-72 bytes")
)

// createdAtLayout matches the timestamps already present in users.json files
const createdAtLayout = "2006-01-02 15:04:05.000000"

// maxPasswordLen is bcrypt's input limit
const maxPasswordLen = 72

// Options configures a Store
type Options struct {
	Cost   int
	Logger *zap.Logger
	Now    func() time.Time
}

// Store is the credential table backed by users.json
type Store struct {
	path  string
	cost  int
	log   *zap.Logger
	now   func() time.Time
	mu    sync.Mutex
	users map[string]models.User

	// dummyHash is compared against when the username is unknown
	dummyHash []byte
}

// Open loads the table at path, creating an empty one if the file does not exist
func Open(path string, opts Options) (*Store, error) {
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		path:  path,
		cost:  opts.Cost,
		log:   opts.Logger,
		now:   opts.Now,
		users: make(map[string]models.User),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create users directory: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read users file: %w", err)
	default:
		if err := json.Unmarshal(data, &s.users); err != nil {
			return nil, fmt.Errorf("parse users file %s: %w", path, err)
		}
		if s.users == nil {
			s.users = make(map[string]models.User)
		}
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("focusboard"), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	s.dummyHash = dummy

	return s, nil
}

// Register adds a user. The table is rewritten only on success.
func (s *Store) Register(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrInvalidUsername
	}
	if password == "" || len(password) > maxPasswordLen {
		return ErrInvalidPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.users[username] = models.User{
		PasswordHash: string(hash),
		CreatedAt:    s.now().Format(createdAtLayout),
	}
	if err := s.save(); err != nil {
		delete(s.users, username)
		return err
	}

	s.log.Info("user registered", zap.String("username", username))
	return nil
}

// Authenticate checks a login attempt. Unknown users and wrong passwords
// both return ErrInvalidCredentials.
func (s *Store) Authenticate(username, password string) error {
	s.mu.Lock()
	user, ok := s.users[strings.TrimSpace(username)]
	s.mu.Unlock()

	hash := s.dummyHash
	if ok {
		hash = []byte(user.PasswordHash)
	}

	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if !ok || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		s.log.Info("login rejected", zap.String("username", username))
		return ErrInvalidCredentials
	}
	if err != nil {
		// A stored hash that bcrypt cannot read
		s.log.Error("failed to compare passwords", zap.String("username", username), zap.Error(err))
		return ErrInvalidCredentials
	}

	s.log.Info("login succeeded", zap.String("username", username))
	return nil
}

// Get returns a copy of the stored record
func (s *Store) Get(username string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username = strings.TrimSpace(username)
	u, ok := s.users[username]
	if ok {
		u.Username = username
	}
	return u, ok
}

// Exists reports whether username is registered
func (s *Store) Exists(username string) bool {
	_, ok := s.Get(username)
	return ok
}

// Count returns the number of registered users
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// save writes the whole table. Callers hold mu (or own s exclusively).
func (s *Store) save() error {
	data, err := json.Marshal(s.users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	return nil
}
