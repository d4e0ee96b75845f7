// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

const digestPrefix = "argon2id"

var b64 = base64.RawStdEncoding

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword returns a self-describing digest "argon2id$<salt>$<key>" with a fresh salt.
func HashPassword(password string) (string, error) {
	salt, err := RandBytes(saltLen)
	if err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	key := derive([]byte(password), salt)
	return digestPrefix + "$" + b64.EncodeToString(salt) + "$" + b64.EncodeToString(key), nil
}

// VerifyPassword reports whether password matches digest. Malformed digests never match.
func VerifyPassword(password, digest string) bool {
	salt, want, err := parseDigest(digest)
	if err != nil {
		return false
	}
	got := derive([]byte(password), salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func derive(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

func parseDigest(digest string) (salt, key []byte, err error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 3 || parts[0] != digestPrefix {
		return nil, nil, errors.New("unknown digest format")
	}
	if salt, err = b64.DecodeString(parts[1]); err != nil {
		return nil, nil, err
	}
	if key, err = b64.DecodeString(parts[2]); err != nil {
		return nil, nil, err
	}
	return salt, key, nil
}
