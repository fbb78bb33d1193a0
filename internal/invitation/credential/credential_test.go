package credential

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gatepass/internal/invitation/models"
	"gatepass/pkg/requestcontext"
)

type SignerSuite struct {
	suite.Suite
	signer *Signer
	now    time.Time
	ctx    context.Context
}

func (s *SignerSuite) SetupTest() {
	s.signer = NewSigner("test-secret-0123456789abcdef0123")
	s.now = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *SignerSuite) at(d time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(d))
}

func (s *SignerSuite) sign(expiry time.Duration) (string, models.Claim) {
	token, claim, err := s.signer.Sign(s.ctx, models.Claim{
		VisitorName: "Ana", Unit: "4B", HostName: "Luis", Code: "ABC123",
	}, expiry)
	s.Require().NoError(err)
	return token, claim
}

func (s *SignerSuite) TestRoundTrip() {
	token, issued := s.sign(24 * time.Hour)

	claim, err := s.signer.Verify(s.at(time.Hour), token)
	s.Require().NoError(err)
	s.Equal("Ana", claim.VisitorName)
	s.Equal("4B", claim.Unit)
	s.Equal("Luis", claim.HostName)
	s.Equal("ABC123", claim.Code)
	s.Equal(issued.ID, claim.ID)
	s.True(claim.IssuedAt.Equal(s.now))
	s.True(claim.ExpiresAt.Equal(s.now.Add(24 * time.Hour)))
}

func (s *SignerSuite) TestExpiredAfterLifetime() {
	token, _ := s.sign(24 * time.Hour)

	_, err := s.signer.Verify(s.at(24*time.Hour+time.Second), token)
	s.Require().Error(err)
	s.Equal(models.ReasonExpired, ReasonOf(err))
}

func (s *SignerSuite) TestNoExpiryNeverExpires() {
	token, issued := s.sign(0)
	s.True(issued.ExpiresAt.IsZero())

	claim, err := s.signer.Verify(s.at(365*24*time.Hour), token)
	s.Require().NoError(err)
	s.True(claim.ExpiresAt.IsZero())
}

func (s *SignerSuite) TestWrongSecret() {
	token, _ := s.sign(time.Hour)

	_, err := NewSigner("another-secret").Verify(s.ctx, token)
	s.Require().Error(err)
	s.Equal(models.ReasonSignature, ReasonOf(err))
}

func (s *SignerSuite) TestEverySingleByteTamperIsRejected() {
	token, _ := s.sign(time.Hour)

	for i := 0; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := s.signer.Verify(s.ctx, tampered)
		s.Require().Errorf(err, "tamper at %d accepted", i)
		s.NotEmpty(ReasonOf(err))
	}
}

func (s *SignerSuite) TestMalformed() {
	for _, raw := range []string{"", "not-a-jwt", "a.b.c", strings.Repeat("x", 50)} {
		_, err := s.signer.Verify(s.ctx, raw)
		s.Require().Error(err)
		s.Equal(models.ReasonMalformed, ReasonOf(err), raw)
	}
}

func (s *SignerSuite) TestRejectsOtherAlgorithms() {
	claims := Claims{
		VisitorName:      "Ana",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.signer.Verify(s.ctx, unsigned)
	s.Require().Error(err)
	s.NotEmpty(ReasonOf(err))

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.signer.secret)
	s.Require().NoError(err)
	_, err = s.signer.Verify(s.ctx, hs512)
	s.Require().Error(err)
}

func (s *SignerSuite) TestRejectsForeignIssuer() {
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		VisitorName:      "Ana",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	}).SignedString(s.signer.secret)
	s.Require().NoError(err)

	_, err = s.signer.Verify(s.ctx, foreign)
	s.Error(err)
}

func TestSignerSuite(t *testing.T) {
	suite.Run(t, new(SignerSuite))
}

func TestNewShortCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := NewShortCode()
		require.NoError(t, err)
		assert.True(t, models.IsShortCode(code), code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)
}

func TestReasonOf_NonCredentialError(t *testing.T) {
	assert.Equal(t, models.Reason(""), ReasonOf(assert.AnError))
}
