package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/validation"
)

// Action is the direction of a validated visit.
type Action string

const (
	ActionEntry Action = "entry"
	ActionExit  Action = "exit"
)

func (a Action) String() string {
	return string(a)
}

// IsKnown reports whether a is entry or exit, regardless of configuration.
func (a Action) IsKnown() bool {
	return a == ActionEntry || a == ActionExit
}

// ActionSet is the set of actions a deployment accepts.
type ActionSet struct {
	actions []Action
}

// DefaultActions accepts entry and exit.
func DefaultActions() ActionSet {
	return ActionSet{actions: []Action{ActionEntry, ActionExit}}
}

// EntryOnly accepts only entry.
func EntryOnly() ActionSet {
	return ActionSet{actions: []Action{ActionEntry}}
}

// ParseActionSet builds a set from configured names. Unknown names and an
// empty list are rejected.
func ParseActionSet(names []string) (ActionSet, error) {
	if len(names) == 0 {
		return ActionSet{}, fmt.Errorf("accepted actions must not be empty")
	}
	set := ActionSet{}
	for _, n := range names {
		a := Action(strings.ToLower(strings.TrimSpace(n)))
		if !a.IsKnown() {
			return ActionSet{}, fmt.Errorf("unknown action %q", n)
		}
		if !set.Contains(a) {
			set.actions = append(set.actions, a)
		}
	}
	return set, nil
}

func (s ActionSet) Contains(a Action) bool {
	for _, x := range s.actions {
		if x == a {
			return true
		}
	}
	return false
}

func (s ActionSet) String() string {
	names := make([]string, len(s.actions))
	for i, a := range s.actions {
		names[i] = string(a)
	}
	return strings.Join(names, "|")
}

// Options is the variant configuration of the issuer and validator.
type Options struct {
	// Expiry is the credential lifetime. Zero issues non-expiring credentials.
	Expiry time.Duration
	// ShortCode embeds a 6-character code in the claim and returns it.
	ShortCode bool
	// QRImage returns a PNG data URL of the credential.
	QRImage bool
	// Actions is the accepted action set. The zero value means DefaultActions.
	Actions ActionSet
	// AcceptBareCode lets Validate accept a short code without a credential.
	AcceptBareCode bool
}

// AcceptedActions returns the configured set or the default.
func (o Options) AcceptedActions() ActionSet {
	if len(o.Actions.actions) == 0 {
		return DefaultActions()
	}
	return o.Actions
}

// ExpiryHours returns Expiry in hours rounded up, so an expiring credential
// never reports zero, or nil when credentials do not expire.
func (o Options) ExpiryHours() *int {
	if o.Expiry <= 0 {
		return nil
	}
	h := int((o.Expiry + time.Hour - 1) / time.Hour)
	return &h
}

// Claim is the payload embedded in a credential.
type Claim struct {
	VisitorName string
	Unit        string
	HostName    string
	Code        string

	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the credential does not expire
}

// Invitation is the result of issuing a credential.
type Invitation struct {
	Credential  string
	Code        string
	Image       string
	ExpiryHours *int
	Claim       Claim
}

// Validation is the outcome of a successful credential or code check.
// Claim is nil in bare-code mode.
type Validation struct {
	Action Action
	Claim  *Claim
	Code   string
	Row    []string
}

// Reason classifies why a credential was rejected. It is logged and traced
// but never returned to the caller.
type Reason string

const (
	ReasonMalformed    Reason = "malformed"
	ReasonSignature    Reason = "signature"
	ReasonExpired      Reason = "expired"
	ReasonCodeMismatch Reason = "code_mismatch"
)

// shortCodePattern matches a bare short code.
var shortCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// IsShortCode reports whether s is a well-formed short code.
func IsShortCode(s string) bool {
	return shortCodePattern.MatchString(s)
}

// IssueCommand carries the fields needed to issue a credential.
type IssueCommand struct {
	VisitorName string
	Unit        string
	HostName    string
}

// Normalize trims all fields.
func (c *IssueCommand) Normalize() {
	c.VisitorName = strings.TrimSpace(c.VisitorName)
	c.Unit = strings.TrimSpace(c.Unit)
	c.HostName = strings.TrimSpace(c.HostName)
}

// Validate requires every field and bounds its length.
func (c *IssueCommand) Validate() error {
	if c == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	if err := validation.CheckField("visitorName", c.VisitorName, validation.MaxFieldLength); err != nil {
		return err
	}
	if err := validation.CheckField("unit", c.Unit, validation.MaxFieldLength); err != nil {
		return err
	}
	return validation.CheckField("hostName", c.HostName, validation.MaxFieldLength)
}

// ValidateCommand carries a presented credential or bare code.
type ValidateCommand struct {
	Credential string
	Code       string
	Action     Action
	Plates     string
}

// Normalize trims fields, lowercases the action and uppercases the code.
func (c *ValidateCommand) Normalize() {
	c.Credential = strings.TrimSpace(c.Credential)
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.Action = Action(strings.ToLower(strings.TrimSpace(string(c.Action))))
	c.Plates = strings.TrimSpace(c.Plates)
}

// Validate checks the input shape against the accepted action set. It never
// looks at the credential contents.
func (c *ValidateCommand) Validate(opts Options) error {
	if c == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	accepted := opts.AcceptedActions()
	if c.Action != "" && !accepted.Contains(c.Action) {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("action must be one of %s", accepted))
	}
	if err := validation.CheckStringLength("plates", c.Plates, validation.MaxPlatesLength); err != nil {
		return err
	}

	if c.BareCode(opts) {
		if !IsShortCode(c.Code) {
			return dErrors.New(dErrors.CodeValidation, "code must be 6 uppercase letters or digits")
		}
		if c.Action != "" && c.Action != ActionEntry {
			return dErrors.New(dErrors.CodeValidation, "code-only validation records entry only")
		}
		return nil
	}

	if c.Credential == "" {
		if opts.AcceptBareCode {
			return dErrors.New(dErrors.CodeValidation, "credential or code is required")
		}
		return dErrors.New(dErrors.CodeValidation, "credential is required")
	}
	if c.Action == "" {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("action (%s) is required", accepted))
	}
	return validation.CheckStringLength("credential", c.Credential, validation.MaxCredentialLength)
}

// BareCode reports whether the command is a code-only validation.
func (c *ValidateCommand) BareCode(opts Options) bool {
	return opts.AcceptBareCode && c.Credential == "" && c.Code != ""
}
