package handler

import (
	"gatepass/internal/invitation/models"
	"gatepass/pkg/platform/strings"
)

// IssueRequest is the body of POST /api/invitations.
type IssueRequest struct {
	VisitorName string `json:"visitorName"`
	Unit        string `json:"unit"`
	HostName    string `json:"hostName"`
}

// Normalize trims every field.
func (r *IssueRequest) Normalize() {
	if r == nil {
		return
	}
	strings.TrimAll(&r.VisitorName, &r.Unit, &r.HostName)
}

// Validate requires every field.
func (r *IssueRequest) Validate() error {
	cmd := r.ToCommand()
	return cmd.Validate()
}

func (r *IssueRequest) ToCommand() models.IssueCommand {
	if r == nil {
		return models.IssueCommand{}
	}
	return models.IssueCommand{
		VisitorName: r.VisitorName,
		Unit:        r.Unit,
		HostName:    r.HostName,
	}
}

// ValidateRequest is the body of POST /api/validate. Token is accepted as an
// alias of Credential.
type ValidateRequest struct {
	Credential string `json:"credential"`
	Token      string `json:"token"`
	Code       string `json:"code"`
	Action     string `json:"action"`
	Plates     string `json:"plates"`
}

// Normalize trims fields and folds Token into Credential. Action checks need
// the configured action set and are left to the service.
func (r *ValidateRequest) Normalize() {
	if r == nil {
		return
	}
	strings.TrimAll(&r.Credential, &r.Token, &r.Code, &r.Action, &r.Plates)
	if r.Credential == "" {
		r.Credential = r.Token
	}
	r.Token = ""
}

func (r *ValidateRequest) ToCommand() models.ValidateCommand {
	if r == nil {
		return models.ValidateCommand{}
	}
	return models.ValidateCommand{
		Credential: r.Credential,
		Code:       r.Code,
		Action:     models.Action(r.Action),
		Plates:     r.Plates,
	}
}
