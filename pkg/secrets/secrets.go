// Package secrets inspects and generates the shared credential signing secret.
package secrets

import (
	"crypto/rand"
	"encoding/base64"

	dErrors "gatepass/pkg/domain-errors"
)

// DefaultSigningSecret is used when no secret is configured. Credentials
// signed with it can be forged by anyone who knows the default.
const DefaultSigningSecret = "clave_segura"

// MinSigningSecretLength is the shortest secret not reported as weak (HS256
// key size).
const MinSigningSecretLength = 32

// Generate creates a cryptographically secure random secret suitable for
// JWT_SECRET.
func Generate() (string, error) {
	buf := make([]byte, MinSigningSecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Weaknesses lists the problems with a signing secret. An empty result means
// the secret is acceptable.
func Weaknesses(secret string) []string {
	var out []string
	if secret == DefaultSigningSecret {
		out = append(out, "signing secret is the built-in default")
	}
	if len(secret) < MinSigningSecretLength {
		out = append(out, "signing secret is shorter than 32 bytes")
	}
	return out
}
