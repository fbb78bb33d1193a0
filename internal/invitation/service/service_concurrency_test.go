package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/invitation/credential"
	"gatepass/internal/invitation/models"
	"gatepass/internal/logsink"
	"gatepass/pkg/testutil"
)

type downSink struct{}

func (downSink) Append(context.Context, logsink.Table, logsink.Row) error {
	return errors.New("spreadsheet unreachable")
}

func (downSink) ReadAll(context.Context, logsink.Table) ([]logsink.Row, error) {
	return nil, errors.New("spreadsheet unreachable")
}

func TestValidate_Concurrent(t *testing.T) {
	const goroutines = 40
	opts := models.Options{Expiry: 24 * time.Hour}
	signer := credential.NewSigner(testSecret)

	issuer := New(signer, logsink.NewMemory(), opts, WithLogger(discardLogger()))
	inv, err := issuer.Issue(at(0), ana())
	require.NoError(t, err)

	tampered := []byte(inv.Credential)
	last := len(tampered) - 2
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	t.Run("every valid scan is logged once", func(t *testing.T) {
		sink := logsink.NewMemory()
		svc := New(signer, sink, opts, WithLogger(discardLogger()))

		result := testutil.RunConcurrentCtx(at(time.Minute), goroutines, func(ctx context.Context, idx int) error {
			cmd := models.ValidateCommand{Credential: inv.Credential, Action: models.ActionEntry}
			if idx%2 == 1 {
				cmd.Credential = string(tampered)
			}
			_, err := svc.Validate(ctx, cmd)
			return err
		})

		assert.Equal(t, int32(goroutines/2), result.Successes)
		assert.Equal(t, int32(goroutines/2), result.Invalid)
		assert.Zero(t, result.Errors)
		assert.Equal(t, goroutines/2, sink.Len(logsink.Visits))
	})

	t.Run("sink outage reports every scan", func(t *testing.T) {
		svc := New(signer, downSink{}, opts, WithLogger(discardLogger()))

		result := testutil.RunConcurrentCtx(at(time.Minute), goroutines, func(ctx context.Context, _ int) error {
			v, err := svc.Validate(ctx, models.ValidateCommand{Credential: inv.Credential, Action: models.ActionExit})
			if v == nil {
				return errors.New("validation missing alongside sink failure")
			}
			return err
		})

		assert.Equal(t, int32(goroutines), result.SinkFailures)
		assert.Equal(t, int32(goroutines), result.Total())
	})
}
