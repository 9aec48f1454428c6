package log

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLogger_Verbose(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		wantLine bool
	}{
		{name: "verbose_on", verbose: true, wantLine: true},
		{name: "verbose_off", verbose: false, wantLine: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var console bytes.Buffer
			l := New(&console, zerolog.New(zerolog.NewTestWriter(t)), tt.verbose, false)

			l.Verbose("Copying input file 'a.osm'")
			l.Verbosef("Wrote %d bytes.", 123)

			if tt.wantLine {
				assert.Contains(t, console.String(), "Copying input file 'a.osm'")
				assert.Contains(t, console.String(), "Wrote 123 bytes.")
			} else {
				assert.Empty(t, console.String())
			}
		})
	}
}

func TestProgress_DisabledStillCounts(t *testing.T) {
	l := New(io.Discard, zerolog.Nop(), false, false)
	p := l.StartProgress(100)

	// no bar is drawn, but the arithmetic keeps working
	p.Update(10)
	p.Update(5) // offsets never move the bar backwards
	p.FileDone(60)
	p.Update(30)
	p.Done()
}

func TestProgress_ZeroTotal(t *testing.T) {
	l := New(io.Discard, zerolog.Nop(), false, true)
	p := l.StartProgress(0)
	p.Update(10)
	p.Done()
}

func TestProgress_DoneIsIdempotent(t *testing.T) {
	l := New(io.Discard, zerolog.Nop(), false, true)
	p := l.StartProgress(100)
	p.Update(40)

	// an aborted run stops the bar from a defer, a finished run stops it
	// from the success path first; the second stop must be harmless
	p.Done()
	p.Done()
	p.Update(50) // late updates after the stop stay quiet
}

func TestContext(t *testing.T) {
	l := New(io.Discard, zerolog.Nop(), false, false)
	ctx := NewContext(context.Background(), l)
	require.Same(t, l, FromContext(ctx))
}

func TestFromContext_MissingPanics(t *testing.T) {
	assert.Panics(t, func() {
		FromContext(context.Background())
	})
}
