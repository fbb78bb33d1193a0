// Package credential signs and verifies visitor credentials as HS256 JWTs.
package credential

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gatepass/internal/invitation/models"
	"gatepass/pkg/requestcontext"
)

// Issuer is the iss claim of every credential.
const Issuer = "gatepass"

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Claims is the JWT body.
type Claims struct {
	VisitorName string `json:"visitorName"`
	Unit        string `json:"unit"`
	HostName    string `json:"hostName"`
	Code        string `json:"code,omitempty"`
	jwt.RegisteredClaims
}

// InvalidError is returned by Verify. Reason says which check failed.
type InvalidError struct {
	Reason models.Reason
	Err    error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("credential rejected: %s", e.Reason)
}

func (e *InvalidError) Unwrap() error {
	return e.Err
}

// Signer holds the process-wide signing secret.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns a credential for claim. The issue time is taken from the
// request context; expiry of zero produces a credential without exp.
func (s *Signer) Sign(ctx context.Context, claim models.Claim, expiry time.Duration) (string, models.Claim, error) {
	now := requestcontext.Now(ctx)
	claim.ID = uuid.NewString()
	claim.IssuedAt = now.Truncate(time.Second)
	claim.ExpiresAt = time.Time{}

	registered := jwt.RegisteredClaims{
		Issuer:   Issuer,
		ID:       claim.ID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if expiry > 0 {
		claim.ExpiresAt = now.Add(expiry).Truncate(time.Second)
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(expiry))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		VisitorName:      claim.VisitorName,
		Unit:             claim.Unit,
		HostName:         claim.HostName,
		Code:             claim.Code,
		RegisteredClaims: registered,
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", models.Claim{}, fmt.Errorf("sign credential: %w", err)
	}
	return signed, claim, nil
}

// Verify checks signature, algorithm and expiry against the request time.
// Every failure is an *InvalidError.
func (s *Signer) Verify(ctx context.Context, credential string) (*models.Claim, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return requestcontext.Now(ctx) }),
	)
	if err != nil {
		return nil, &InvalidError{Reason: classify(err), Err: err}
	}
	if !token.Valid {
		return nil, &InvalidError{Reason: models.ReasonSignature, Err: jwt.ErrTokenSignatureInvalid}
	}

	claim := &models.Claim{
		VisitorName: claims.VisitorName,
		Unit:        claims.Unit,
		HostName:    claims.HostName,
		Code:        claims.Code,
		ID:          claims.ID,
	}
	if claims.IssuedAt != nil {
		claim.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		claim.ExpiresAt = claims.ExpiresAt.Time
	}
	return claim, nil
}

func classify(err error) models.Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return models.ReasonSignature
	default:
		return models.ReasonMalformed
	}
}

// ReasonOf extracts the rejection reason from err, or "" if err is not an
// *InvalidError.
func ReasonOf(err error) models.Reason {
	var inv *InvalidError
	if errors.As(err, &inv) {
		return inv.Reason
	}
	return ""
}

// NewShortCode returns a random 6-character uppercase alphanumeric code.
func NewShortCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate short code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
