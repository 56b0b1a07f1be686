package credential

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/99minutos/auth-service/internal/core/domain"
)

const jsonPrefix = "j:"

// Plain is the unsigned JSON codec.
type Plain struct{}

func NewPlain() *Plain { return &Plain{} }

func (Plain) Encode(identity domain.Identity) (string, error) {
	b, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("encode credential: %w", err)
	}
	return url.QueryEscape(jsonPrefix + string(b)), nil
}

func (Plain) Decode(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrInvalidCredential
	}
	raw, err := url.QueryUnescape(token)
	if err != nil {
		return domain.Identity{}, domain.ErrInvalidCredential
	}
	body, ok := strings.CutPrefix(raw, jsonPrefix)
	if !ok {
		return domain.Identity{}, domain.ErrInvalidCredential
	}

	var id domain.Identity
	if err := json.Unmarshal([]byte(body), &id); err != nil {
		return domain.Identity{}, domain.ErrInvalidCredential
	}
	return id, nil
}
