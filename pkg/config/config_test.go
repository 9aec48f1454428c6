package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	ctx := context.Background()
	chdir(t, t.TempDir())

	cfg, err := Load(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.Progress, "progress display is on by default")
}

func TestLoad_HCL(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    func(*Config)
		wantErr string
	}{
		{
			name:    "full_config",
			content: "verbose = true\nprogress = false\noverwrite = true\nfsync = true\ngenerator = \"myorg-pipeline\"\n",
			want: func(c *Config) {
				c.Verbose = true
				c.Progress = false
				c.Overwrite = true
				c.Fsync = true
				c.Generator = "myorg-pipeline"
			},
		},
		{
			name:    "partial_config_keeps_defaults",
			content: "verbose = true\n",
			want: func(c *Config) {
				c.Verbose = true
			},
		},
		{
			name:    "empty_file",
			content: "",
			want:    func(c *Config) {},
		},
		{
			name:    "syntax_error",
			content: "verbose = =\n",
			wantErr: "parsing config file",
		},
		{
			name:    "unknown_attribute",
			content: "velocity = 9\n",
			wantErr: "parsing config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.hcl")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			cfg, err := Load(context.Background(), path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			want := Default()
			tt.want(want)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("overwrite: true\ngenerator: bulk-export\n"), 0644))

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	want := Default()
	want.Overwrite = true
	want.Generator = "bulk-export"
	assert.Equal(t, want, cfg)
}

func TestLoad_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser for config file")
}

func TestLoad_ProbesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".osmcat.yaml"), []byte("fsync: true\n"), 0644))

	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, cfg.Fsync)
}

func TestGetParser(t *testing.T) {
	assert.IsType(t, &HCLParser{}, GetParser("x.hcl"))
	assert.IsType(t, &YAMLParser{}, GetParser("x.yaml"))
	assert.IsType(t, &YAMLParser{}, GetParser("x.yml"))
	assert.Nil(t, GetParser("x.json"))
}
