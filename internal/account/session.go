// Package account holds the diary owner's credentials and first-launch state.
package account

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/starford/diary/internal/apperr"
	"github.com/starford/diary/internal/storage"
)

// FilePath is the vault-relative location of the account file.
const FilePath = ".diary/account.yaml"

const maxUsernameLen = 64

// bcrypt rejects passwords longer than this many bytes.
const maxPasswordBytes = 72

type record struct {
	Username     string    `yaml:"username"`
	PasswordHash string    `yaml:"password_hash"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// Session is the owner's account state. It is safe for concurrent use.
type Session struct {
	store storage.Provider
	now   func() time.Time

	mu  sync.RWMutex
	rec *record // nil until set up
}

// Open loads the account from store. A missing account file means the diary
// has not been set up yet.
func Open(store storage.Provider) (*Session, error) {
	s := &Session{store: store, now: time.Now}
	data, err := store.Read(FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("account: load: %w", err)
	}
	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("account: parse: %w", err)
	}
	if rec.Username == "" || rec.PasswordHash == "" {
		return nil, fmt.Errorf("account: %s is incomplete", FilePath)
	}
	s.rec = &rec
	return s, nil
}

// FirstLaunch reports whether no account has been set up yet.
func (s *Session) FirstLaunch() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec == nil
}

// Username returns the account's username, or "" before setup.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec == nil {
		return ""
	}
	return s.rec.Username
}

// Setup creates the account. It fails with apperr.ErrAccountExists when an
// account is already set up.
func (s *Session) Setup(username, password, confirm string) error {
	if err := validateCredentials(username, password, confirm, true); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec != nil {
		return apperr.ErrAccountExists
	}
	rec := &record{Username: username, PasswordHash: hash, CreatedAt: s.now().UTC()}
	if err := s.persist(rec); err != nil {
		return err
	}
	s.rec = rec
	return nil
}

// Verify reports whether username and password match the account.
// It is always false before setup.
func (s *Session) Verify(username, password string) bool {
	s.mu.RLock()
	rec := s.rec
	s.mu.RUnlock()
	if rec == nil {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(rec.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) == nil
	return userOK && passOK
}

// Update changes the username and, when newPassword is non-empty, the
// password. It reports whether anything changed.
func (s *Session) Update(newUsername, newPassword, confirm string) (bool, error) {
	if err := validateCredentials(newUsername, newPassword, confirm, false); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return false, apperr.ErrAccountMissing
	}

	next := *s.rec
	changed := false
	if newUsername != next.Username {
		next.Username = newUsername
		changed = true
	}
	if newPassword != "" {
		hash, err := hashPassword(newPassword)
		if err != nil {
			return false, err
		}
		next.PasswordHash = hash
		changed = true
	}
	if !changed {
		return false, nil
	}
	if err := s.persist(&next); err != nil {
		return false, err
	}
	s.rec = &next
	return true, nil
}

func (s *Session) persist(rec *record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("account: marshal: %w", err)
	}
	if err := s.store.Write(FilePath, data); err != nil {
		return fmt.Errorf("account: save: %w", err)
	}
	return nil
}

func validateCredentials(username, password, confirm string, passwordRequired bool) error {
	pwRules := []validation.Rule{validation.By(passwordBytes)}
	if passwordRequired {
		pwRules = append(pwRules, validation.Required)
	}
	err := validation.Errors{
		"username": validation.Validate(username, validation.Required, validation.Length(1, maxUsernameLen)),
		"password": validation.Validate(password, pwRules...),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if password != confirm {
		return apperr.ErrPasswordMismatch
	}
	return nil
}

func passwordBytes(value any) error {
	if pw, _ := value.(string); len(pw) > maxPasswordBytes {
		return fmt.Errorf("must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("account: hash password: %w", err)
	}
	return string(hash), nil
}
