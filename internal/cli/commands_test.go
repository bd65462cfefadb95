package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"al.essio.dev/pkg/shellescape"
	"github.com/hbjs97/qaenv/internal/cache"
	"github.com/hbjs97/qaenv/internal/cli"
	"github.com/hbjs97/qaenv/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp creates an App with a FakeCommander, an isolated environment and cwd.
func newTestApp(t *testing.T, fc *testutil.FakeCommander, cfgPath string, vars map[string]string, cwd string) *cli.App {
	t.Helper()
	return &cli.App{
		Commander: fc,
		CfgPath:   cfgPath,
		Getenv:    testutil.Getenv(vars),
		Getwd:     func() (string, error) { return cwd, nil },
		HomeDir:   t.TempDir(),
	}
}

// execute runs the root command with args and returns stdout, stderr and the error.
func execute(t *testing.T, app *cli.App, args ...string) (string, string, error) {
	t.Helper()
	cmd := app.NewRootCmd()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "config.toml")
}

// --- Activate command tests ---

func TestActivateCmd_DefaultWorkDir(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), nil, cwd)

	stdout, stderr, err := execute(t, app, "activate", "--shell", "bash")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	workDir := filepath.Join(cwd, "qaworkdir")
	assert.Contains(t, stdout, "export QAWORKDIR="+shellescape.Quote(workDir))
	assert.Contains(t, stdout, "export QACACHEDIR="+shellescape.Quote(filepath.Join(workDir, "cached")))
	assert.Contains(t, stdout, "export MPLCONFIGDIR="+shellescape.Quote(workDir))

	assert.DirExists(t, filepath.Join(workDir, "cached"))
	assert.Equal(t, "backend: agg\n", testutil.ReadRC(t, workDir))
}

func TestActivateCmd_PreservesQAWORKDIR(t *testing.T) {
	t.Parallel()

	workDir := filepath.Join(t.TempDir(), "custom")
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), map[string]string{"QAWORKDIR": workDir}, "/unused")

	stdout, _, err := execute(t, app, "activate", "--shell", "zsh")
	require.NoError(t, err)
	assert.Contains(t, stdout, "export QAWORKDIR="+shellescape.Quote(workDir))
	assert.DirExists(t, workDir)
}

func TestActivateCmd_TwiceIsIdempotent(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), nil, cwd)

	first, _, err := execute(t, app, "activate")
	require.NoError(t, err)
	second, stderr, err := execute(t, app, "activate")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, stderr, "re-activation must not warn about an existing cache directory")
}

func TestActivateCmd_ShellFromConfig(t *testing.T) {
	t.Parallel()

	cfgPath := testutil.TempConfigFile(t, `shell = "fish"`)
	app := newTestApp(t, testutil.NewFakeCommander(), cfgPath, nil, t.TempDir())

	stdout, _, err := execute(t, app, "activate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "set -gx QAWORKDIR")
}

func TestActivateCmd_DirNameAndBackendFromConfig(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	cfgPath := testutil.TempConfigFile(t, "dir_name = \"qa\"\nbackend = \"svg\"")
	app := newTestApp(t, testutil.NewFakeCommander(), cfgPath, nil, cwd)

	_, _, err := execute(t, app, "activate")
	require.NoError(t, err)
	assert.Equal(t, "backend: svg\n", testutil.ReadRC(t, filepath.Join(cwd, "qa")))
}

func TestActivateCmd_Dotenv(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), map[string]string{"QAWORKDIR": t.TempDir()}, "/unused")

	stdout, _, err := execute(t, app, "activate", "--shell", "dotenv")
	require.NoError(t, err)
	assert.Contains(t, stdout, "QAWORKDIR=")
	assert.NotContains(t, stdout, "export ")
}

func TestActivateCmd_InitFailureWarnsButExports(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	workDir := filepath.Join(root, "qa")
	require.NoError(t, os.WriteFile(workDir, []byte("not a dir"), 0644))

	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), map[string]string{"QAWORKDIR": workDir}, "/unused")

	stdout, stderr, err := execute(t, app, "activate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "export QAWORKDIR="+shellescape.Quote(workDir))
	assert.Contains(t, stderr, "경고:")
}

func TestActivateCmd_UnsupportedShell(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), nil, t.TempDir())

	_, _, err := execute(t, app, "activate", "--shell", "tcsh")
	require.Error(t, err)
	assert.Equal(t, cli.ExitUnsupportedShell, cli.MapExitCode(err))
}

func TestActivateCmd_BadConfig(t *testing.T) {
	t.Parallel()

	cfgPath := testutil.TempConfigFile(t, "invalid toml [[[")
	app := newTestApp(t, testutil.NewFakeCommander(), cfgPath, nil, t.TempDir())

	_, _, err := execute(t, app, "activate")
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.MapExitCode(err))
}

func TestActivateCmd_Hook(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), nil, cwd)

	stdout, _, err := execute(t, app, "activate", "--hook", "--shell", "zsh")
	require.NoError(t, err)
	assert.Contains(t, stdout, `eval "$(qaenv activate --shell zsh)"`)
	assert.NoDirExists(t, filepath.Join(cwd, "qaworkdir"), "--hook must not touch the filesystem")
}

func TestActivateCmd_HookDotenv(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), nil, t.TempDir())

	_, _, err := execute(t, app, "activate", "--hook", "--shell", "dotenv")
	assert.ErrorIs(t, err, cli.ErrUnsupportedShell)
}

func TestActivateCmd_Verbose(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), nil, cwd)

	_, stderr, err := execute(t, app, "--verbose", "activate")
	require.NoError(t, err)
	assert.Contains(t, stderr, "QACACHEDIR="+filepath.Join(cwd, "qaworkdir", "cached"))
}

// --- Deactivate command tests ---

func TestDeactivateCmd_Bash(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), nil, "/unused")

	stdout, _, err := execute(t, app, "deactivate", "--shell", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "unset QAWORKDIR\n")
	assert.Contains(t, stdout, "unset RESET\n")
}

func TestDeactivateCmd_Fish(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), nil, "/unused")

	stdout, _, err := execute(t, app, "deactivate", "--shell", "fish")
	require.NoError(t, err)
	assert.Contains(t, stdout, "set -e MPLCONFIGDIR\n")
}

// --- Exec command tests ---

func TestExecCmd_PassesEnvironment(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	fc := testutil.NewFakeCommander()
	fc.Register("python3 tools/qa/trapdoor_pep8.py", "pep8 ok\n", nil)
	app := newTestApp(t, fc, missingConfig(t), nil, cwd)

	stdout, _, err := execute(t, app, "exec", "--", "python3", "tools/qa/trapdoor_pep8.py", "feature")
	require.NoError(t, err)
	assert.Equal(t, "pep8 ok\n", stdout)

	require.Len(t, fc.EnvCalls, 1)
	workDir := filepath.Join(cwd, "qaworkdir")
	assert.Equal(t, workDir, fc.EnvCalls[0]["QAWORKDIR"])
	assert.Equal(t, filepath.Join(workDir, "cached"), fc.EnvCalls[0]["QACACHEDIR"])
	assert.Equal(t, workDir, fc.EnvCalls[0]["MPLCONFIGDIR"])
	assert.Equal(t, "\033[0m", fc.EnvCalls[0]["RESET"])

	assert.Equal(t, "backend: agg\n", testutil.ReadRC(t, workDir))
}

func TestExecCmd_ChildFailure(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fc.Register("make check", "", errors.New("exit status 2"))
	app := newTestApp(t, fc, missingConfig(t), nil, t.TempDir())

	_, _, err := execute(t, app, "exec", "--", "make", "check")
	require.Error(t, err)
	assert.Equal(t, cli.ExitGeneral, cli.MapExitCode(err))
}

func TestExecCmd_ChildFailureNotRepeatedOnStderr(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fc.Register("make check", "", errors.New("exit status 2"))
	app := newTestApp(t, fc, missingConfig(t), nil, t.TempDir())

	_, stderr, err := execute(t, app, "exec", "--", "make", "check")
	require.Error(t, err)
	assert.NotContains(t, stderr, "Error:")
}

func TestExecCmd_NoArgs(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), nil, t.TempDir())

	_, _, err := execute(t, app, "exec")
	assert.Error(t, err)
}

// --- Status command tests ---

func TestStatusCmd_BeforeActivate(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), nil, cwd)

	stdout, _, err := execute(t, app, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(cwd, "qaworkdir")+" (없음)")
	assert.NoDirExists(t, filepath.Join(cwd, "qaworkdir"), "status must not create anything")
}

func TestStatusCmd_JSON(t *testing.T) {
	t.Parallel()

	workDir := testutil.TempWorkDir(t)
	testutil.WriteCacheFile(t, workDir, "coverage.json", "12345")
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), map[string]string{"QAWORKDIR": workDir}, "/unused")

	stdout, _, err := execute(t, app, "status", "--json")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, workDir, report["workdir"])
	assert.Equal(t, filepath.Join(workDir, "cached"), report["cachedir"])
	assert.Equal(t, workDir, report["mplconfigdir"])
	assert.Equal(t, true, report["workdir_exists"])
	assert.Equal(t, true, report["rcfile_exists"])
	assert.Equal(t, float64(1), report["cache_entries"])
	assert.Equal(t, float64(5), report["cache_bytes"])
}

func TestStatusCmd_CacheDirIsFile(t *testing.T) {
	t.Parallel()

	workDir := filepath.Join(t.TempDir(), "qa")
	require.NoError(t, os.MkdirAll(workDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "cached"), []byte("not a dir"), 0644))
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), map[string]string{"QAWORKDIR": workDir}, "/unused")

	stdout, _, err := execute(t, app, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(workDir, "cached")+" (없음)")
	assert.Contains(t, stdout, "0개 항목, 0 bytes")

	stdout, _, err = execute(t, app, "status", "--json")
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, true, report["workdir_exists"])
	assert.Equal(t, false, report["cachedir_exists"])
	assert.Equal(t, float64(0), report["cache_entries"])
	assert.Equal(t, float64(0), report["cache_bytes"])
}

// --- Doctor command tests ---

func TestDoctorCmd_Healthy(t *testing.T) {
	t.Parallel()

	workDir := testutil.TempWorkDir(t)
	fc := testutil.NewFakeCommander()
	fc.Register("git --version", "git version 2.44.0", nil)
	fc.Register("python3 --version", "Python 3.12.1", nil)

	vars := map[string]string{
		"QAWORKDIR":    workDir,
		"QACACHEDIR":   filepath.Join(workDir, "cached"),
		"MPLCONFIGDIR": workDir,
		"GREEN":        "\033[0;32m",
		"RED":          "\033[0;31m",
		"RESET":        "\033[0m",
	}
	app := newTestApp(t, fc, missingConfig(t), vars, "/unused")

	stdout, _, err := execute(t, app, "doctor")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "[FAIL]")
	assert.NotContains(t, stdout, "[!!]")
	assert.Contains(t, stdout, "[OK] matplotlibrc: backend: agg")
}

func TestDoctorCmd_NotActivated(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fc.Register("git --version", "git version 2.44.0", nil)
	fc.Register("python3 --version", "", fmt.Errorf("not found"))
	app := newTestApp(t, fc, missingConfig(t), nil, t.TempDir())

	stdout, _, err := execute(t, app, "doctor")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[FAIL] python3")
	assert.Contains(t, stdout, "[FAIL] workdir")
	assert.Contains(t, stdout, "[!!] exported")
}

func TestDoctorCmd_BadConfig(t *testing.T) {
	t.Parallel()

	cfgPath := testutil.TempConfigFile(t, "invalid toml [[[")
	fc := testutil.NewFakeCommander()
	fc.DefaultResponse = &testutil.Response{Output: []byte("ok")}
	app := newTestApp(t, fc, cfgPath, nil, t.TempDir())

	stdout, _, err := execute(t, app, "doctor")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[FAIL] config")
}

// --- Clean command tests ---

func TestCleanCmd_PurgesCache(t *testing.T) {
	t.Parallel()

	workDir := testutil.TempWorkDir(t)
	testutil.WriteCacheFile(t, workDir, "a.json", "x")
	testutil.WriteCacheFile(t, workDir, "sub/b.json", "y")
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), map[string]string{"QAWORKDIR": workDir}, "/unused")

	stdout, _, err := execute(t, app, "clean")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2개 항목 삭제")

	assert.DirExists(t, filepath.Join(workDir, "cached"))
	assert.FileExists(t, filepath.Join(workDir, "matplotlibrc"))
	items, err := os.ReadDir(filepath.Join(workDir, "cached"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCleanCmd_CacheDirIsFile(t *testing.T) {
	t.Parallel()

	workDir := filepath.Join(t.TempDir(), "qa")
	require.NoError(t, os.MkdirAll(workDir, 0755))
	cached := filepath.Join(workDir, "cached")
	require.NoError(t, os.WriteFile(cached, []byte("not a dir"), 0644))
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), map[string]string{"QAWORKDIR": workDir}, "/unused")

	_, _, err := execute(t, app, "clean")
	require.ErrorIs(t, err, cache.ErrNotDir)
	assert.Contains(t, err.Error(), cached)
	assert.Equal(t, cli.ExitGeneral, cli.MapExitCode(err))
	assert.FileExists(t, cached)
}

func TestCleanCmd_All(t *testing.T) {
	t.Parallel()

	workDir := testutil.TempWorkDir(t)
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), map[string]string{"QAWORKDIR": workDir}, t.TempDir())

	_, _, err := execute(t, app, "clean", "--all")
	require.NoError(t, err)
	assert.NoDirExists(t, workDir)
}

func TestCleanCmd_AllRefusesCwd(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	app := newTestApp(t, testutil.NewFakeCommander(), missingConfig(t), map[string]string{"QAWORKDIR": cwd}, cwd)

	_, _, err := execute(t, app, "clean", "--all")
	assert.ErrorIs(t, err, cli.ErrUnsafeRemove)
	assert.DirExists(t, cwd)
}

// --- Setup command tests ---

func TestSetupCmd_WritesTemplate(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "qaenv", "config.toml")
	app := newTestApp(t, testutil.NewFakeCommander(), cfgPath, nil, t.TempDir())

	_, _, err := execute(t, app, "setup")
	require.NoError(t, err)

	info, err := os.Stat(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// 템플릿은 그대로 로드 가능해야 한다
	_, _, err = execute(t, app, "activate", "--hook")
	assert.NoError(t, err)
}

func TestSetupCmd_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	cfgPath := testutil.TempConfigFile(t, "existing content")
	app := newTestApp(t, testutil.NewFakeCommander(), cfgPath, nil, t.TempDir())

	_, _, err := execute(t, app, "setup")
	require.Error(t, err)

	data, readErr := os.ReadFile(cfgPath)
	require.NoError(t, readErr)
	assert.Equal(t, "existing content", string(data))
}

func TestSetupCmd_Force(t *testing.T) {
	t.Parallel()

	cfgPath := testutil.TempConfigFile(t, "existing content")
	app := newTestApp(t, testutil.NewFakeCommander(), cfgPath, nil, t.TempDir())

	_, _, err := execute(t, app, "setup", "--force")
	require.NoError(t, err)

	data, readErr := os.ReadFile(cfgPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `dir_name = "qaworkdir"`)
}

func TestSetupCmd_ShellSavesConfig(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "qaenv", "config.toml")
	app := newTestApp(t, testutil.NewFakeCommander(), cfgPath, nil, t.TempDir())

	_, _, err := execute(t, app, "setup", "--shell", "fish")
	require.NoError(t, err)

	info, err := os.Stat(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	stdout, _, err := execute(t, app, "deactivate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "set -e QAWORKDIR\n")
}

func TestSetupCmd_ShellUnsupported(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	app := newTestApp(t, testutil.NewFakeCommander(), cfgPath, nil, t.TempDir())

	_, _, err := execute(t, app, "setup", "--shell", "tcsh")
	require.ErrorIs(t, err, cli.ErrUnsupportedShell)
	assert.NoFileExists(t, cfgPath)
}

func TestSetupCmd_InstallHook(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	app := newTestApp(t, testutil.NewFakeCommander(), cfgPath, map[string]string{"SHELL": "/bin/bash"}, t.TempDir())

	stdout, _, err := execute(t, app, "setup", "--install-hook")
	require.NoError(t, err)
	assert.Contains(t, stdout, "셸 hook 설치")

	data, err := os.ReadFile(filepath.Join(app.HomeDir, ".bashrc"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `eval "$(qaenv activate --shell bash)"`)
}

// --- Root command tests ---

func TestRootCmd_ConfigFlag(t *testing.T) {
	t.Parallel()

	cfgPath := testutil.TempConfigFile(t, `shell = "fish"`)
	app := newTestApp(t, testutil.NewFakeCommander(), "/nonexistent/config.toml", nil, t.TempDir())

	stdout, _, err := execute(t, app, "--config", cfgPath, "deactivate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "set -e QAWORKDIR")
}

func TestNewApp(t *testing.T) {
	t.Parallel()

	app := cli.NewApp()
	assert.NotNil(t, app)
	assert.NotNil(t, app.Commander)
	assert.NotNil(t, app.Getenv)
	assert.NotNil(t, app.Getwd)
}
