package mockapi

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

var (
	errUnknownUser   = errors.New("unknown user")
	errWrongPassword = errors.New("wrong password")
	errUserExists    = errors.New("user already exists")
)

// Argon2id parameters. Deliberately light: this server only runs in tests
// and on developer machines.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 8 * 1024
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

type account struct {
	id    string
	email string
	salt  []byte
	hash  []byte
}

// credentials holds seeded accounts keyed by lower-cased email.
type credentials struct {
	mu       sync.RWMutex
	accounts map[string]account
}

func newCredentials() *credentials {
	return &credentials{accounts: make(map[string]account)}
}

func (c *credentials) add(email, password string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" || password == "" {
		return "", errors.New("email and password required")
	}
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	acc := account{
		id:    uuid.NewString(),
		email: key,
		salt:  salt,
		hash:  argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.accounts[key]; ok {
		return "", errUserExists
	}
	c.accounts[key] = acc
	return acc.id, nil
}

func (c *credentials) verify(email, password string) (account, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	c.mu.RLock()
	acc, ok := c.accounts[key]
	c.mu.RUnlock()
	if !ok {
		return account{}, errUnknownUser
	}
	got := argon2.IDKey([]byte(password), acc.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	if subtle.ConstantTimeCompare(got, acc.hash) != 1 {
		return account{}, errWrongPassword
	}
	return acc, nil
}

func (c *credentials) byID(id string) (account, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, acc := range c.accounts {
		if acc.id == id {
			return acc, true
		}
	}
	return account{}, false
}
