package password

import "context"

type Hasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports false for a wrong password and an error only for a hash it cannot read.
	Verify(ctx context.Context, plaintext, encoded string) (bool, error)
	VerifyDummy(ctx context.Context, plaintext string)
}
