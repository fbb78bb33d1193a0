// Package main provides a CLI for issuing and inspecting visitor credentials
// outside the HTTP server, for printing passes and debugging scanners.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gatepass/internal/invitation/credential"
	"gatepass/internal/invitation/models"
	"gatepass/internal/invitation/qr"
	"gatepass/pkg/secrets"
)

type issueOutput struct {
	Credential string    `json:"credential"`
	Code       string    `json:"code,omitempty"`
	Image      string    `json:"image,omitempty"`
	ExpiresIn  string    `json:"expires_in"`
	Claim      claimView `json:"claim"`
	Warnings   []string  `json:"warnings,omitempty"`
}

type claimView struct {
	VisitorName string `json:"visitorName"`
	Unit        string `json:"unit"`
	HostName    string `json:"hostName"`
	Code        string `json:"code,omitempty"`
	ID          string `json:"jti"`
	IssuedAt    string `json:"iat"`
	ExpiresAt   string `json:"exp,omitempty"`
}

func toClaimView(c models.Claim) claimView {
	v := claimView{
		VisitorName: c.VisitorName,
		Unit:        c.Unit,
		HostName:    c.HostName,
		Code:        c.Code,
		ID:          c.ID,
		IssuedAt:    c.IssuedAt.UTC().Format(time.RFC3339),
	}
	if !c.ExpiresAt.IsZero() {
		v.ExpiresAt = c.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return v
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "issue":
		err = runIssue(os.Args[2:], os.Stdout)
	case "verify":
		err = runVerify(os.Args[2:], os.Stdout)
	case "secret":
		err = runSecret(os.Stdout)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `credgen - Issue and inspect gatepass visitor credentials

Usage:
  credgen <command> [flags]

Commands:
  issue     Sign a visitor credential
  verify    Check a credential and print its claim
  secret    Generate a random JWT_SECRET

The signing secret is read from -secret or JWT_SECRET.

Examples:
  credgen issue -visitor Ana -unit 4B -host Luis
  credgen issue -visitor Ana -unit 4B -host Luis -expiry 0 -code -json
  credgen verify -credential eyJhbGciOi...
  credgen secret`)
}

func secretFlag(fs *flag.FlagSet) *string {
	def := os.Getenv("JWT_SECRET")
	if def == "" {
		def = secrets.DefaultSigningSecret
	}
	return fs.String("secret", def, "Signing secret (default JWT_SECRET)")
}

func runIssue(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	visitor := fs.String("visitor", "", "Visitor name")
	unit := fs.String("unit", "", "Unit being visited")
	host := fs.String("host", "", "Host name")
	expiry := fs.Duration("expiry", 24*time.Hour, "Credential lifetime; 0 never expires")
	withCode := fs.Bool("code", false, "Embed a 6-character short code")
	withImage := fs.Bool("qr", false, "Include a PNG data URL of the credential")
	secret := secretFlag(fs)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := models.IssueCommand{VisitorName: *visitor, Unit: *unit, HostName: *host}
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return err
	}

	claim := models.Claim{VisitorName: cmd.VisitorName, Unit: cmd.Unit, HostName: cmd.HostName}
	if *withCode {
		code, err := credential.NewShortCode()
		if err != nil {
			return err
		}
		claim.Code = code
	}

	token, signed, err := credential.NewSigner(*secret).Sign(context.Background(), claim, *expiry)
	if err != nil {
		return err
	}

	result := issueOutput{
		Credential: token,
		Code:       signed.Code,
		ExpiresIn:  "never",
		Claim:      toClaimView(signed),
		Warnings:   secrets.Weaknesses(*secret),
	}
	if *expiry > 0 {
		result.ExpiresIn = expiry.String()
	}
	if *withImage {
		img, err := qr.NewRenderer().DataURL(token)
		if err != nil {
			return err
		}
		result.Image = img
	}

	if *jsonOutput {
		return printJSON(out, result)
	}
	fmt.Fprintln(out, "Visitor Credential")
	fmt.Fprintln(out, "==================")
	fmt.Fprintf(out, "Visitor:    %s\n", signed.VisitorName)
	fmt.Fprintf(out, "Unit:       %s\n", signed.Unit)
	fmt.Fprintf(out, "Host:       %s\n", signed.HostName)
	fmt.Fprintf(out, "Expires In: %s\n", result.ExpiresIn)
	if signed.Code != "" {
		fmt.Fprintf(out, "Code:       %s\n", signed.Code)
	}
	fmt.Fprintf(out, "JTI:        %s\n", signed.ID)
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "Warning:    %s\n", w)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Credential:")
	fmt.Fprintln(out, token)
	if result.Image != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "QR image:")
		fmt.Fprintln(out, result.Image)
	}
	return nil
}

func runVerify(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	token := fs.String("credential", "", "Credential to verify")
	secret := secretFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		return fmt.Errorf("-credential is required")
	}

	claim, err := credential.NewSigner(*secret).Verify(context.Background(), *token)
	if err != nil {
		return fmt.Errorf("credential rejected (%s): %w", credential.ReasonOf(err), err)
	}
	return printJSON(out, toClaimView(*claim))
}

func runSecret(out io.Writer) error {
	s, err := secrets.Generate()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, s)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
