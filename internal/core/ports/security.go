package ports

import "github.com/99minutos/auth-service/internal/core/domain"

// PasswordHasher hashes secrets at account creation and verifies them at login.
// Verify returns (false, nil) on mismatch; an error means the hash could not
// be checked at all (e.g. it is malformed).
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// CredentialCodec turns an identity snapshot into an opaque cookie value and
// back. Decode returns domain.ErrInvalidCredential for anything it cannot read.
type CredentialCodec interface {
	Encode(identity domain.Identity) (string, error)
	Decode(token string) (domain.Identity, error)
}
