package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/logger"
)

func executeArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// keep cbci.yaml lookups away from the developer's working directory
	chdir(t, t.TempDir())

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	logger.Setup(false, false, true)
	return out.String(), err
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestRoot_DryRunVersionsFromFlagAndArgs(t *testing.T) {
	workdir := t.TempDir()

	out, err := executeArgs(t, "-c", "5.5.0", "6.0.0", "--dry-run", "--workdir", workdir)
	require.NoError(t, err)

	assert.Contains(t, out, "5.5.0")
	assert.Contains(t, out, "6.0.0")
	assert.Contains(t, out, "dry-run-cluster")
	assert.Contains(t, out, "127.0.0.1")
	assert.NotContains(t, out, "FAILED")

	// a dry run never writes the properties file
	_, statErr := os.Stat(filepath.Join(workdir, ".cbci", "5.5.0", "couchbase-jvm-core", "src", "test", "resources", "integration", "integration.properties"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRoot_ClusterVersionsAlias(t *testing.T) {
	out, err := executeArgs(t, "--cluster-versions", "6.5.0", "--dry-run", "--workdir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "6.5.0")
}

func TestRoot_CommaSeparatedVersions(t *testing.T) {
	out, err := executeArgs(t, "--cluster_versions=5.5.0,6.0.0", "--dry-run", "--workdir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "5.5.0")
	assert.Contains(t, out, "6.0.0")
}

func TestRoot_VersionsRequired(t *testing.T) {
	_, err := executeArgs(t, "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster_versions")
}

func TestRoot_InvalidVersion(t *testing.T) {
	_, err := executeArgs(t, "-c", "../6.0.0", "--dry-run")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION-001", harnesserrors.GetErrorCode(err))
	assert.True(t, harnesserrors.IsUserError(err))
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, err := executeArgs(t, "-c", "6.0.0", "--dry-run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, "CONFIGURATION-001", harnesserrors.GetErrorCode(err))
}

func TestRoot_QuietSuppressesSummary(t *testing.T) {
	out, err := executeArgs(t, "-c", "6.0.0", "--dry-run", "-q", "--workdir", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNormalizeFlagName(t *testing.T) {
	assert.Equal(t, "cluster_versions", string(normalizeFlagName(nil, "cluster-versions")))
	assert.Equal(t, "dry-run", string(normalizeFlagName(nil, "dry-run")))
}

func runExecute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetArgs(args)

	var stderr bytes.Buffer
	err := execute(root, &stderr)
	logger.Setup(false, false, true)
	return stderr.String(), err
}

func TestExecute_FailureHints(t *testing.T) {
	t.Run("usage error points at help", func(t *testing.T) {
		msg, err := runExecute(t, "--dry-run")
		require.Error(t, err)
		assert.Contains(t, msg, "required flag")
		assert.Contains(t, msg, "Use --help to see available options and examples")
	})

	t.Run("user error keeps its own steps", func(t *testing.T) {
		msg, err := runExecute(t, "-c", "../6.0.0", "--dry-run")
		require.Error(t, err)
		assert.Contains(t, msg, "Error [VALIDATION-001]")
		assert.NotContains(t, msg, "--debug")
		assert.Equal(t, 1, strings.Count(msg, "Use --help"))
	})

	t.Run("run failure suggests debug", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "missing", "integration.properties")
		msg, err := runExecute(t, "properties", "--seed-node", "10.0.0.5", "--out", out, "-q")
		require.Error(t, err)
		assert.Contains(t, msg, "Error [PROPERTIES-002]")
		assert.Contains(t, msg, "Run again with --debug")
	})

	t.Run("success prints nothing", func(t *testing.T) {
		msg, err := runExecute(t, "-c", "6.0.0", "--dry-run", "-q", "--workdir", t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, msg)
	})
}
