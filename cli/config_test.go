package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingDefaultIsNotAnError(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, config{}, cfg)
}

func TestLoadConfig_MissingExplicitFileFails(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_ParsesAllFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	content := `suite: widgets
dispatch: process
timeout: 45s
memory_limit_mb: 256
jobs: 8
scratch_root: /tmp/widgets
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	want := config{
		Suite:         "widgets",
		Dispatch:      "process",
		Timeout:       45 * time.Second,
		MemoryLimitMB: 256,
		Jobs:          8,
		ScratchRoot:   "/tmp/widgets",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dispatch: [unclosed"), 0o644))

	_, err := loadConfig(path)
	require.Error(t, err)
}
