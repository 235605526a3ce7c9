package result

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOk(t *testing.T) {
	r := Ok(42)

	assert.True(t, r.IsOk())
	assert.Equal(t, 42, r.Value())
	assert.NoError(t, r.Err())

	v, err := r.Get()
	assert.Equal(t, 42, v)
	assert.NoError(t, err)
}

func TestErr(t *testing.T) {
	boom := errors.New("boom")
	r := Err[string](boom)

	assert.False(t, r.IsOk())
	assert.Empty(t, r.Value())
	assert.ErrorIs(t, r.Err(), boom)
}

func TestErr_NilStillFails(t *testing.T) {
	r := Err[int](nil)

	assert.False(t, r.IsOk())
	assert.Error(t, r.Err())
}

func TestCapture(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name      string
		fn        func() (string, error)
		wantValue string
		wantErr   error
		wantLog   bool
	}{
		{
			name:      "success",
			fn:        func() (string, error) { return "COMPLETE", nil },
			wantValue: "COMPLETE",
		},
		{
			name:    "failure",
			fn:      func() (string, error) { return "partial", boom },
			wantErr: boom,
			wantLog: true,
		},
		{
			name:    "panic",
			fn:      func() (string, error) { panic("nil response") },
			wantErr: ErrPanic,
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			var r Result[string]
			require.NotPanics(t, func() {
				r = Capture(logger, "status", tt.fn)
			})

			if tt.wantErr != nil {
				assert.False(t, r.IsOk())
				assert.ErrorIs(t, r.Err(), tt.wantErr)
				// the value slot stays empty on failure
				assert.Empty(t, r.Value())
			} else {
				assert.True(t, r.IsOk())
				assert.Equal(t, tt.wantValue, r.Value())
			}

			if tt.wantLog {
				assert.Contains(t, buf.String(), `"level":"error"`)
				assert.Contains(t, buf.String(), `"op":"status"`)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
