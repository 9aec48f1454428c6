package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/osmcat/pkg/osm"
	"github.com/walteh/osmcat/pkg/osm/osmfile"
)

const sampleDoc = `<?xml version='1.0' encoding='UTF-8'?>
<osm version="0.6" generator="sample-writer">
  <node id="1" version="2" timestamp="2023-05-01T10:00:00Z" uid="42" user="alice" changeset="9" lat="51.5" lon="-0.1"/>
</osm>
`

// runRoot executes the full command tree the way main does, with output
// captured instead of hitting the process streams
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func writeInput(t *testing.T, dir, name, doc string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

func readOutput(t *testing.T, path string) (*osm.Header, osm.Chunk) {
	t.Helper()
	r, err := osmfile.Open(context.Background(), path, osm.AllEntities)
	require.NoError(t, err)
	defer r.Close()

	var all osm.Chunk
	for {
		chunk, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		all = append(all, chunk...)
	}
	return r.Header(), all
}

func TestRootCmd_Cat(t *testing.T) {
	tmp := t.TempDir()
	input := writeInput(t, tmp, "in.osm", sampleDoc)
	output := filepath.Join(tmp, "out.osm")

	_, err := runRoot(t, "cat", "--no-progress", "-o", output, "--clean", "user", "-c", "uid", input)
	require.NoError(t, err)

	_, objects := readOutput(t, output)
	require.Len(t, objects, 1)
	meta := objects[0].Meta()
	assert.Empty(t, meta.User)
	assert.Zero(t, meta.UID)
	assert.EqualValues(t, 2, meta.Version, "attributes not named on --clean stay put")
}

func TestRootCmd_ConfigFlagSelectsDefaultsFile(t *testing.T) {
	tmp := t.TempDir()
	input := writeInput(t, tmp, "in.osm", sampleDoc)
	output := filepath.Join(tmp, "out.osm")
	cfgPath := filepath.Join(tmp, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("generator: custom-gen\n"), 0644))

	// the flag value has to reach the config loader, not the zero value
	_, err := runRoot(t, "cat", "--config", cfgPath, "--no-progress", "-o", output, input)
	require.NoError(t, err)

	header, objects := readOutput(t, output)
	assert.Equal(t, "custom-gen", header.Generator)
	require.Len(t, objects, 1)
}

func TestRootCmd_UnknownCleanAttr(t *testing.T) {
	tmp := t.TempDir()
	input := writeInput(t, tmp, "in.osm", sampleDoc)
	output := filepath.Join(tmp, "out.osm")

	_, err := runRoot(t, "cat", "--no-progress", "-o", output, "--clean", "foo", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown attribute on --clean option: 'foo'")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "configuration errors come before any I/O")
}

func TestRootCmd_DebugFlag(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	_, err := runRoot(t, "version", "--debug")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	_, err = runRoot(t, "version")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestRootCmd_Version(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "osmcat ")
	assert.Contains(t, out, runtime.Version())
}
