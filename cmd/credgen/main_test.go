package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/invitation/credential"
	"gatepass/internal/invitation/models"
)

const testSecret = "credgen-test-secret-0123456789abcdef"

func TestRunIssue_JSON(t *testing.T) {
	var out bytes.Buffer
	err := runIssue([]string{
		"-visitor", " Ana ", "-unit", "4B", "-host", "Luis",
		"-code", "-secret", testSecret, "-json",
	}, &out)
	require.NoError(t, err)

	var got issueOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "24h0m0s", got.ExpiresIn)
	assert.True(t, models.IsShortCode(got.Code))
	assert.Equal(t, got.Code, got.Claim.Code)
	assert.Equal(t, "Ana", got.Claim.VisitorName)
	assert.NotEmpty(t, got.Claim.ExpiresAt)
	assert.Empty(t, got.Warnings)

	claim, err := credential.NewSigner(testSecret).Verify(context.Background(), got.Credential)
	require.NoError(t, err)
	assert.Equal(t, "Luis", claim.HostName)
}

func TestRunIssue_NoExpiryWithImage(t *testing.T) {
	var out bytes.Buffer
	err := runIssue([]string{
		"-visitor", "Ana", "-unit", "4B", "-host", "Luis",
		"-expiry", "0", "-qr", "-secret", "short",
	}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Expires In: never")
	assert.Contains(t, text, "data:image/png;base64,")
	assert.Contains(t, text, "Warning:    signing secret is shorter than 32 bytes")
}

func TestRunIssue_RequiresFields(t *testing.T) {
	err := runIssue([]string{"-visitor", "Ana", "-secret", testSecret}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestRunVerify(t *testing.T) {
	token, _, err := credential.NewSigner(testSecret).Sign(context.Background(),
		models.Claim{VisitorName: "Ana", Unit: "4B", HostName: "Luis"}, 0)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runVerify([]string{"-credential", token, "-secret", testSecret}, &out))
		var got claimView
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "4B", got.Unit)
		assert.Empty(t, got.ExpiresAt)
	})

	t.Run("wrong secret", func(t *testing.T) {
		err := runVerify([]string{"-credential", token, "-secret", "another-secret-0123456789abcdefgh"}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "signature")
	})

	t.Run("missing credential", func(t *testing.T) {
		require.Error(t, runVerify(nil, &bytes.Buffer{}))
	})
}

func TestRunSecret(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSecret(&out))
	assert.GreaterOrEqual(t, len(strings.TrimSpace(out.String())), 32)
}
