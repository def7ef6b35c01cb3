// Package password hashes and verifies user passwords with argon2id.
//
// Hashes are self-describing PHC strings, so parameters may be tuned later
// without invalidating stored hashes.
package password

import (
	"context"
	"fmt"
	"runtime"

	customErrors "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/errors"
	"github.com/alexedwards/argon2id"
	"golang.org/x/sync/semaphore"
)

var DefaultParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type Hasher struct {
	params *argon2id.Params
	pepper string
	slots  *semaphore.Weighted
	dummy  string
}

type Option func(*Hasher)

func WithParams(p *argon2id.Params) Option {
	return func(h *Hasher) { h.params = p }
}

// WithConcurrency caps how many KDF runs may execute at once.
func WithConcurrency(n int) Option {
	return func(h *Hasher) {
		if n > 0 {
			h.slots = semaphore.NewWeighted(int64(n))
		}
	}
}

func New(pepper string, opts ...Option) (*Hasher, error) {
	h := &Hasher{
		params: DefaultParams,
		pepper: pepper,
		slots:  semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
	for _, opt := range opts {
		opt(h)
	}

	dummy, err := argon2id.CreateHash("dummy-password"+pepper, h.params)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "create dummy hash")
	}
	h.dummy = dummy
	return h, nil
}

// Hash derives a fresh salted hash of plaintext.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	encoded, err := argon2id.CreateHash(plaintext+h.pepper, h.params)
	if err != nil {
		return "", customErrors.WrapInternal(err, "hash password")
	}
	return encoded, nil
}

// Verify reports whether plaintext matches encoded. A mismatch is (false, nil);
// an unparsable encoded hash is ErrMalformedHash.
func (h *Hasher) Verify(ctx context.Context, plaintext, encoded string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.slots.Release(1)

	ok, err := argon2id.ComparePasswordAndHash(plaintext+h.pepper, encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %w", customErrors.ErrMalformedHash, err)
	}
	return ok, nil
}

// VerifyDummy spends the same work as Verify against a throwaway hash.
// Used when the user does not exist, so timing does not reveal it.
func (h *Hasher) VerifyDummy(ctx context.Context, plaintext string) {
	_, _ = h.Verify(ctx, plaintext, h.dummy)
}
