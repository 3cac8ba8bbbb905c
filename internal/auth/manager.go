// Package auth owns the administrator credential and the bearer session that
// gates every state-changing request. The credential is a salted SHA-256 hex
// digest persisted in EEPROM alongside its salt; the session is a single
// short-lived token held only in memory.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/campanile/bellsystem-server/internal/eeprom"
)

const (
	// DefaultSecret is the well-known first-boot password. Initialize
	// reports whether it is still active so the caller can surface the
	// warning.
	DefaultSecret = "admin"

	saltBytes = 16

	// DefaultSessionTTL is how long an issued session stays valid.
	DefaultSessionTTL = time.Hour
)

// Manager verifies the admin secret and authorizes requests via a single
// active bearer session. All persistent state lives in its EEPROM slots;
// the session token is deliberately never persisted.
type Manager struct {
	store      *eeprom.Store
	sessionTTL time.Duration
	now        func() time.Time

	mu   sync.Mutex
	salt string
	hash string

	token    string
	issuedAt time.Time
}

func NewManager(store *eeprom.Store, sessionTTL time.Duration) *Manager {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Manager{store: store, sessionTTL: sessionTTL, now: time.Now}
}

// Initialize loads the persisted credential, bootstrapping the default one on
// first boot: a fresh random salt and the salted hash of DefaultSecret are
// written along with the initialized flag. Idempotent once initialized.
// defaultActive reports whether the currently active credential is the
// well-known default, which the caller should surface as a security warning.
func (m *Manager) Initialize() (defaultActive bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store.LoadInitialized() {
		m.salt = m.store.LoadSalt()
		m.hash = m.store.LoadPasswordHash()
		return m.checkSecretLocked(DefaultSecret), nil
	}

	salt, err := generateSalt(saltBytes)
	if err != nil {
		return false, err
	}
	hash := hashWithSalt(DefaultSecret, salt)
	if err := m.store.SaveSalt(salt); err != nil {
		return false, err
	}
	if err := m.store.SavePasswordHash(hash); err != nil {
		return false, err
	}
	if err := m.store.SaveInitialized(true); err != nil {
		return false, err
	}
	m.salt = salt
	m.hash = hash
	return true, nil
}

// CheckSecret reports whether candidate is the admin secret. No side effects.
func (m *Manager) CheckSecret(candidate string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkSecretLocked(candidate)
}

func (m *Manager) checkSecretLocked(candidate string) bool {
	if m.hash == "" {
		return false
	}
	computed := hashWithSalt(candidate, m.salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(m.hash)) == 1
}

// UpdateSecret replaces the admin secret under a fresh salt and persists
// both. The active session, if any, is invalidated: a session issued against
// the old secret should not outlive a password rotation.
func (m *Manager) UpdateSecret(newSecret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	salt, err := generateSalt(saltBytes)
	if err != nil {
		return err
	}
	hash := hashWithSalt(newSecret, salt)
	if err := m.store.SaveSalt(salt); err != nil {
		return err
	}
	if err := m.store.SavePasswordHash(hash); err != nil {
		return err
	}
	m.salt = salt
	m.hash = hash
	m.token = ""
	return nil
}

// IssueSession mints the single active bearer token. The token digests a
// monotonic clock reading, 32 bytes of crypto randomness, and the current
// salt, so the hashed material is unique and unpredictable per issue. The
// token is returned for transport delivery and never persisted.
func (m *Manager) IssueSession() (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("auth: read random: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	material := fmt.Sprintf("%d%x%s", m.now().UnixNano(), nonce, m.salt)
	sum := sha256.Sum256([]byte(material))
	m.token = hex.EncodeToString(sum[:])
	m.issuedAt = m.now()
	return m.token, nil
}

// ValidateSession reports whether token is the active session and still
// within the validity window. Expired and mismatched tokens are both plain
// false; the caller learns nothing about which check failed.
func (m *Manager) ValidateSession(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" || token == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
		return false
	}
	return m.now().Sub(m.issuedAt) < m.sessionTTL
}

func generateSalt(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashWithSalt(secret, salt string) string {
	sum := sha256.Sum256([]byte(salt + secret))
	return hex.EncodeToString(sum[:])
}
