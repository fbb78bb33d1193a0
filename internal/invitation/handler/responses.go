package handler

import (
	"gatepass/internal/invitation/models"
	"gatepass/internal/logsink"
)

const statusValidated = "validated"

// IssueResponse is returned after issuing a credential.
type IssueResponse struct {
	OK          bool   `json:"ok"`
	Credential  string `json:"credential"`
	Code        string `json:"code,omitempty"`
	Image       string `json:"image,omitempty"`
	ExpiryHours *int   `json:"expiryHours,omitempty"`
}

// ClaimData is the verified claim as shown to the scanner.
type ClaimData struct {
	VisitorName string `json:"visitorName"`
	Unit        string `json:"unit"`
	HostName    string `json:"hostName"`
	Code        string `json:"code,omitempty"`
	ID          string `json:"jti,omitempty"`
	IssuedAt    int64  `json:"iat,omitempty"`
	ExpiresAt   int64  `json:"exp,omitempty"`
}

// ValidateResponse is returned after a validation was logged.
type ValidateResponse struct {
	OK     bool       `json:"ok"`
	Status string     `json:"status"`
	Action string     `json:"action"`
	Data   *ClaimData `json:"data,omitempty"`
	Code   string     `json:"code,omitempty"`
}

// SinkFailureResponse is returned when the credential was valid but the
// visit could not be logged.
type SinkFailureResponse struct {
	OK              bool       `json:"ok"`
	Error           string     `json:"error"`
	Description     string     `json:"error_description,omitempty"`
	CredentialValid bool       `json:"credentialValid"`
	Action          string     `json:"action"`
	Data            *ClaimData `json:"data,omitempty"`
	Code            string     `json:"code,omitempty"`
}

// LogsResponse lists every visit log row.
type LogsResponse struct {
	OK   bool       `json:"ok"`
	Rows [][]string `json:"rows"`
}

func toIssueResponse(inv *models.Invitation) IssueResponse {
	return IssueResponse{
		OK:          true,
		Credential:  inv.Credential,
		Code:        inv.Code,
		Image:       inv.Image,
		ExpiryHours: inv.ExpiryHours,
	}
}

func toClaimData(c *models.Claim) *ClaimData {
	if c == nil {
		return nil
	}
	data := &ClaimData{
		VisitorName: c.VisitorName,
		Unit:        c.Unit,
		HostName:    c.HostName,
		Code:        c.Code,
		ID:          c.ID,
	}
	if !c.IssuedAt.IsZero() {
		data.IssuedAt = c.IssuedAt.Unix()
	}
	if !c.ExpiresAt.IsZero() {
		data.ExpiresAt = c.ExpiresAt.Unix()
	}
	return data
}

func toValidateResponse(v *models.Validation) ValidateResponse {
	resp := ValidateResponse{
		OK:     true,
		Status: statusValidated,
		Action: v.Action.String(),
		Data:   toClaimData(v.Claim),
	}
	if v.Claim == nil {
		resp.Code = v.Code
	}
	return resp
}

func toLogsResponse(rows []logsink.Row) LogsResponse {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string(r)
	}
	return LogsResponse{OK: true, Rows: out}
}
