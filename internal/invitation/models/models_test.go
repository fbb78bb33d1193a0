package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

func TestParseActionSet(t *testing.T) {
	set, err := ParseActionSet([]string{"entry", " EXIT ", "entry"})
	require.NoError(t, err)
	assert.True(t, set.Contains(ActionEntry))
	assert.True(t, set.Contains(ActionExit))
	assert.Equal(t, "entry|exit", set.String())

	set, err = ParseActionSet([]string{"entry"})
	require.NoError(t, err)
	assert.False(t, set.Contains(ActionExit))

	_, err = ParseActionSet([]string{"entry", "loiter"})
	assert.Error(t, err)

	_, err = ParseActionSet(nil)
	assert.Error(t, err)
}

func TestOptions_Defaults(t *testing.T) {
	var o Options
	assert.True(t, o.AcceptedActions().Contains(ActionExit))
	assert.Nil(t, o.ExpiryHours())

	o.Expiry = 24 * time.Hour
	require.NotNil(t, o.ExpiryHours())
	assert.Equal(t, 24, *o.ExpiryHours())
}

func TestOptions_ExpiryHoursRoundsUp(t *testing.T) {
	for expiry, want := range map[time.Duration]int{
		30 * time.Minute:               1,
		time.Hour:                      1,
		90 * time.Minute:               2,
		12*time.Hour + time.Nanosecond: 13,
	} {
		o := Options{Expiry: expiry}
		require.NotNil(t, o.ExpiryHours(), expiry)
		assert.Equal(t, want, *o.ExpiryHours(), expiry)
	}
}

func TestIsShortCode(t *testing.T) {
	assert.True(t, IsShortCode("K7Q2ZX"))
	assert.True(t, IsShortCode("000000"))
	assert.False(t, IsShortCode("k7q2zx"))
	assert.False(t, IsShortCode("K7Q2Z"))
	assert.False(t, IsShortCode("K7Q2ZXY"))
	assert.False(t, IsShortCode("K7Q-ZX"))
}

func TestValidateCommand_Validate(t *testing.T) {
	entryOnly := Options{Actions: EntryOnly()}
	bare := Options{AcceptBareCode: true}

	cases := []struct {
		name  string
		cmd   ValidateCommand
		opts  Options
		valid bool
	}{
		{"credential and entry", ValidateCommand{Credential: "c", Action: ActionEntry}, Options{}, true},
		{"credential and exit", ValidateCommand{Credential: "c", Action: ActionExit}, Options{}, true},
		{"exit under entry only", ValidateCommand{Credential: "c", Action: ActionExit}, entryOnly, false},
		{"unknown action", ValidateCommand{Credential: "c", Action: "loiter"}, Options{}, false},
		{"unknown action without credential", ValidateCommand{Action: "loiter"}, Options{}, false},
		{"missing action", ValidateCommand{Credential: "c"}, Options{}, false},
		{"missing credential", ValidateCommand{Action: ActionEntry}, Options{}, false},
		{"code without bare mode", ValidateCommand{Code: "K7Q2ZX", Action: ActionEntry}, Options{}, false},
		{"bare code", ValidateCommand{Code: "K7Q2ZX"}, bare, true},
		{"bare code with entry", ValidateCommand{Code: "K7Q2ZX", Action: ActionEntry}, bare, true},
		{"bare code with exit", ValidateCommand{Code: "K7Q2ZX", Action: ActionExit}, bare, false},
		{"bare code malformed", ValidateCommand{Code: "K7"}, bare, false},
		{"nothing in bare mode", ValidateCommand{}, bare, false},
		{"plates too long", ValidateCommand{Credential: "c", Action: ActionEntry, Plates: "0123456789012345678901234567890123456789X"}, Options{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate(tc.opts)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestValidateCommand_Normalize(t *testing.T) {
	cmd := ValidateCommand{Credential: " c ", Code: " k7q2zx ", Action: " Entry ", Plates: " ABC "}
	cmd.Normalize()
	assert.Equal(t, ValidateCommand{Credential: "c", Code: "K7Q2ZX", Action: ActionEntry, Plates: "ABC"}, cmd)
}

func TestIssueCommand(t *testing.T) {
	cmd := IssueCommand{VisitorName: " Ana ", Unit: " 4B", HostName: "Luis "}
	cmd.Normalize()
	assert.Equal(t, IssueCommand{VisitorName: "Ana", Unit: "4B", HostName: "Luis"}, cmd)
	assert.NoError(t, cmd.Validate())

	cmd.Unit = ""
	assert.True(t, dErrors.HasCode(cmd.Validate(), dErrors.CodeValidation))
}
