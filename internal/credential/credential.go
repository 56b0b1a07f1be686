// Package credential encodes identity snapshots into the value of the login
// cookie.
//
// Two codecs exist. Plain reproduces the historical format: URL-escaped JSON
// with a "j:" prefix, decoded by structural parsing only. It is NOT signed, so
// a client can rewrite its own role. JWT signs the same payload with HS256 and
// rejects tampered tokens; it is opt-in through configuration.
package credential

import (
	"fmt"

	"github.com/99minutos/auth-service/internal/core/ports"
)

const (
	ModePlain = "plain"
	ModeJWT   = "jwt"
)

// New returns the codec for mode. secret is only used by ModeJWT.
func New(mode, secret string) (ports.CredentialCodec, error) {
	switch mode {
	case "", ModePlain:
		return NewPlain(), nil
	case ModeJWT:
		return NewJWT(secret)
	default:
		return nil, fmt.Errorf("credential: unknown mode %q", mode)
	}
}
