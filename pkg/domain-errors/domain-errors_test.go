package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives used at every
// service boundary.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeValidation, Message: "unit is required"}
		s.Equal("unit is required", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeCredentialInvalid}
		s.Equal("credential_invalid", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("connection reset by peer")
		err := &Error{Code: CodeSinkUnavailable, Message: "append failed", Err: inner}
		s.Equal(inner, err.Unwrap())
		s.ErrorIs(err, inner)
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeValidation, Message: "bad"}
		s.Nil(err.Unwrap())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeSinkUnavailable, Message: "append failed"}
		err2 := &Error{Code: CodeSinkUnavailable, Message: "read failed"}
		s.True(errors.Is(err1, err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeSinkUnavailable}
		err2 := &Error{Code: CodeCredentialInvalid}
		s.False(errors.Is(err1, err2))
	})

	s.Run("does not match non-domain errors", func() {
		s.False(errors.Is(&Error{Code: CodeInternal}, errors.New("x")))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves existing domain code", func() {
		inner := New(CodeCredentialInvalid, "token expired")
		wrapped := Wrap(inner, CodeInternal, "validate failed")
		s.True(HasCode(wrapped, CodeCredentialInvalid))
		s.Equal("validate failed", wrapped.Error())
	})

	s.Run("applies code to plain errors", func() {
		wrapped := Wrap(errors.New("timeout"), CodeSinkUnavailable, "append failed")
		s.True(HasCode(wrapped, CodeSinkUnavailable))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("finds code through fmt wrapping", func() {
		err := fmt.Errorf("outer: %w", New(CodeValidation, "unit is required"))
		s.True(HasCode(err, CodeValidation))
		s.False(HasCode(err, CodeInternal))
	})

	s.Run("false for nil and plain errors", func() {
		s.False(HasCode(nil, CodeValidation))
		s.False(HasCode(errors.New("plain"), CodeValidation))
	})
}
