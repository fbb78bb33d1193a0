package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cucumber/godog"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^gatepass is running$`, tc.gatepassIsRunning)

	// Invitation steps
	ctx.Step(`^I issue an invitation for "([^"]*)" to unit "([^"]*)" hosted by "([^"]*)"$`, tc.issueInvitation)
	ctx.Step(`^I save the credential$`, tc.saveCredential)
	ctx.Step(`^I validate the saved credential for "([^"]*)"$`, tc.validateSaved)
	ctx.Step(`^I validate the saved credential for "([^"]*)" with plates "([^"]*)"$`, tc.validateSavedWithPlates)
	ctx.Step(`^I validate the saved credential with one byte changed for "([^"]*)"$`, tc.validateTampered)
	ctx.Step(`^I validate credential "([^"]*)" for "([^"]*)"$`, tc.validateCredential)

	// Employee steps
	ctx.Step(`^I register employee "([^"]*)" of unit "([^"]*)" with ID photo "([^"]*)"$`, tc.registerEmployee)

	// Request steps
	ctx.Step(`^I GET "([^"]*)"$`, tc.get)
	ctx.Step(`^I POST to "([^"]*)" with empty body$`, tc.postWithEmptyBody)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the visit log should contain a row "([^"]*)"$`, tc.visitLogShouldContain)
	ctx.Step(`^the visit log should not contain a row "([^"]*)"$`, tc.visitLogShouldNotContain)
}

func (tc *TestContext) gatepassIsRunning(ctx context.Context) error {
	if err := tc.GET("/health/live"); err != nil {
		return err
	}
	return tc.responseStatusShouldBe(ctx, 200)
}

func (tc *TestContext) issueInvitation(ctx context.Context, visitor, unit, host string) error {
	return tc.POST("/api/invitations", map[string]string{
		"visitorName": visitor,
		"unit":        unit,
		"hostName":    host,
	})
}

func (tc *TestContext) saveCredential(ctx context.Context) error {
	credential, err := tc.GetResponseField("credential")
	if err != nil {
		return err
	}
	tc.Credential = credential.(string)
	if code, err := tc.GetResponseField("code"); err == nil {
		tc.Code = code.(string)
	}
	return nil
}

func (tc *TestContext) validateSaved(ctx context.Context, action string) error {
	return tc.validateSavedWithPlates(ctx, action, "")
}

func (tc *TestContext) validateSavedWithPlates(ctx context.Context, action, plates string) error {
	body := map[string]string{
		"credential": tc.Credential,
		"action":     action,
		"plates":     plates,
	}
	if tc.Code != "" {
		body["code"] = tc.Code
	}
	return tc.POST("/api/validate", body)
}

// validateTampered flips one character in the middle of the signature.
func (tc *TestContext) validateTampered(ctx context.Context, action string) error {
	if tc.Credential == "" {
		return fmt.Errorf("no saved credential")
	}
	b := []byte(tc.Credential)
	i := strings.LastIndexByte(tc.Credential, '.') + 5
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return tc.validateCredential(ctx, string(b), action)
}

func (tc *TestContext) validateCredential(ctx context.Context, credential, action string) error {
	return tc.POST("/api/validate", map[string]string{
		"credential": credential,
		"action":     action,
	})
}

func (tc *TestContext) registerEmployee(ctx context.Context, name, unit, ineURL string) error {
	return tc.POST("/api/employees", map[string]string{
		"name":   name,
		"unit":   unit,
		"ineUrl": ineURL,
	})
}

func (tc *TestContext) get(ctx context.Context, path string) error {
	return tc.GET(path)
}

func (tc *TestContext) postWithEmptyBody(ctx context.Context, path string) error {
	return tc.POST(path, map[string]any{})
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	if tc.GetLastResponseStatus() != expectedStatus {
		return fmt.Errorf("expected status %d but got %d", expectedStatus, tc.GetLastResponseStatus())
	}
	return nil
}

func (tc *TestContext) responseShouldContain(ctx context.Context, field string) error {
	if !tc.ResponseContains(field) {
		return fmt.Errorf("response does not contain field: %s\nResponse: %s", field, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	actualValue, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(actualValue) != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}

// hasVisitRow reads /api/logs and reports whether a row, ignoring its
// timestamp column, equals the comma separated want.
func (tc *TestContext) hasVisitRow(want string) (bool, error) {
	if err := tc.GET("/api/logs"); err != nil {
		return false, err
	}
	var logs struct {
		Rows [][]string `json:"rows"`
	}
	if err := json.Unmarshal(tc.LastResponseBody, &logs); err != nil {
		return false, fmt.Errorf("failed to parse logs: %w", err)
	}
	fields := strings.Split(want, ",")
	for _, row := range logs.Rows {
		if len(row) > 1 && slices.Equal(row[1:], fields) {
			return true, nil
		}
	}
	return false, nil
}

func (tc *TestContext) visitLogShouldContain(ctx context.Context, want string) error {
	ok, err := tc.hasVisitRow(want)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("visit log has no row %q\nResponse: %s", want, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) visitLogShouldNotContain(ctx context.Context, want string) error {
	ok, err := tc.hasVisitRow(want)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("visit log unexpectedly has row %q", want)
	}
	return nil
}
