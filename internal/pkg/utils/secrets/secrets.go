package secrets

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	Time      = 2
	MemoryMB  = 16
	Threads   = 1
	KeyLen    = 32
	SaltBytes = 16

	// UnusablePrefix marks a stored hash that no password can match (guest accounts).
	UnusablePrefix = "!"
)

var ErrEmptyPassword = errors.New("empty password")

// HashPassword returns an argon2id PHC string for password+pepper.
func HashPassword(password, pepper string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password+pepper), salt, Time, MemoryMB*1024, Threads, KeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		MemoryMB*1024, Time, Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// UnusablePassword returns a marker hash that CheckPassword never accepts.
func UnusablePassword() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return UnusablePrefix + base64.RawURLEncoding.EncodeToString(b)
}

func IsUsable(phc string) bool {
	return phc != "" && !strings.HasPrefix(phc, UnusablePrefix)
}

// CheckPassword reports whether password matches the stored PHC string.
func CheckPassword(password, pepper, phc string) (bool, error) {
	if !IsUsable(phc) {
		return false, nil
	}
	if !strings.HasPrefix(phc, "$argon2id$") {
		return false, errors.New("unsupported hash format")
	}
	parts := strings.Split(phc, "$")
	if len(parts) != 6 {
		return false, errors.New("invalid phc")
	}

	var m, t, p uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, err
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password+pepper), salt, t, m, uint8(p), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
