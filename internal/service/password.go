package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"runtime"
	"strings"

	"github.com/usersvc/backend/internal/config"
	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

// MaxPasswordBytes is the prefix of a raw password that takes part in hashing.
// Bytes past this limit are ignored by both Hash and Verify.
const MaxPasswordBytes = 72

const (
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// PasswordHasher hashes passwords with argon2id. Encoded hashes carry their own
// parameters, so changing the configured cost does not break existing hashes.
type PasswordHasher struct {
	time    uint32
	memory  uint32
	threads uint8
	sem     *semaphore.Weighted
}

func NewPasswordHasher(cfg config.HashConfig) *PasswordHasher {
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{
		time:    cfg.Time,
		memory:  cfg.MemoryKiB,
		threads: cfg.Threads,
		sem:     semaphore.NewWeighted(int64(limit)),
	}
}

// Hash returns "$argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$HASH".
func (h *PasswordHasher) Hash(ctx context.Context, raw string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	key := argon2.IDKey(truncate(raw), salt, h.time, h.memory, h.threads, argon2KeyLen)
	h.sem.Release(1)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether raw matches encoded. A malformed hash never matches.
func (h *PasswordHasher) Verify(ctx context.Context, raw, encoded string) bool {
	p, ok := parseArgon2Hash(encoded)
	if !ok {
		return false
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	key := argon2.IDKey(truncate(raw), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	h.sem.Release(1)

	return subtle.ConstantTimeCompare(key, p.key) == 1
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseArgon2Hash(encoded string) (argon2Params, bool) {
	var p argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, false
	}
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return p, false
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) == 0 {
		return p, false
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return p, false
	}
	return p, true
}

func truncate(raw string) []byte {
	b := []byte(raw)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}
