package hooks

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testExe = "/opt/toasty/bin/toasty"

func newTestManager(t *testing.T) (*Manager, Env) {
	t.Helper()
	env := Env{HomeDir: t.TempDir(), WorkDir: t.TempDir()}
	return NewManager(env, zerolog.Nop()), env
}

func mustLookup(t *testing.T, name string) Integration {
	t.Helper()
	in, err := Lookup(name)
	require.NoError(t, err)
	return in
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func triggerArray(t *testing.T, doc map[string]any, path []string) []any {
	t.Helper()
	var node any = doc
	for _, key := range path {
		obj, ok := node.(map[string]any)
		require.True(t, ok, "expected object at %s", key)
		node = obj[key]
	}
	arr, ok := node.([]any)
	require.True(t, ok, "expected array at %v", path)
	return arr
}

func TestInstall_ExampleScenario(t *testing.T) {
	m, _ := newTestManager(t)
	in := mustLookup(t, Claude).WithText(HookText{Message: "Stop", Title: "X"})

	path, err := m.ConfigPath(in)
	require.NoError(t, err)
	writeFile(t, path, "{}")

	want := `{"hooks":{"Stop":[{"hooks":[{"type":"command","command":"` + testExe + ` \"Stop\" -t \"X\"","timeout":5000}]}]}}`

	res := m.Install(in, testExe)
	require.True(t, res.OK(), res.String())
	assert.Equal(t, ActionInstalled, res.Action)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, want, string(got))

	res = m.Install(in, testExe)
	require.True(t, res.OK())
	assert.Equal(t, ActionAlreadyInstalled, res.Action)

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, want, string(got))
}

func TestInstall_IdempotentForAllIntegrations(t *testing.T) {
	for _, in := range Integrations() {
		t.Run(in.Name, func(t *testing.T) {
			m, _ := newTestManager(t)
			path, err := m.ConfigPath(in)
			require.NoError(t, err)
			writeFile(t, path, `{"theme":"dark"}`)

			require.True(t, m.Install(in, testExe).OK())
			first, err := os.ReadFile(path)
			require.NoError(t, err)

			res := m.Install(in, testExe)
			require.True(t, res.OK())
			assert.Equal(t, ActionAlreadyInstalled, res.Action)

			second, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, first, second)

			arr := triggerArray(t, readJSON(t, path), in.Schema.TriggerPath)
			assert.Len(t, arr, 1)
			assert.True(t, m.IsInstalled(in))
		})
	}
}

func TestInstallUninstall_RoundTrip(t *testing.T) {
	foreign := map[string]string{
		Claude:  `{"hooks":{"Stop":[{"matcher":"","hooks":[{"type":"command","command":"say done"}]}]},"model":"opus"}`,
		Gemini:  `{"hooks":{"AfterAgent":[{"hooks":[{"type":"command","command":"notify-send gemini"}]}]}}`,
		Copilot: `{"version":1,"hooks":{"sessionEnd":[{"type":"command","bash":"echo bye","timeoutSec":3}]}}`,
		Cursor:  `{"version":1,"hooks":{"stop":[{"command":"./scripts/after.sh"}],"sessionStart":[{"command":"x"}]}}`,
	}

	for _, in := range Integrations() {
		t.Run(in.Name, func(t *testing.T) {
			m, _ := newTestManager(t)
			path, err := m.ConfigPath(in)
			require.NoError(t, err)
			writeFile(t, path, foreign[in.Name])

			before := readJSON(t, path)

			require.True(t, m.Install(in, testExe).OK())
			assert.Len(t, triggerArray(t, readJSON(t, path), in.Schema.TriggerPath), 2)

			res := m.Uninstall(in)
			require.True(t, res.OK(), res.String())
			assert.Equal(t, ActionRemoved, res.Action)
			assert.Equal(t, 1, res.Removed)

			assert.Equal(t, before, readJSON(t, path))
			assert.False(t, m.IsInstalled(in))
		})
	}
}

func TestUninstall_SelectiveRemoval(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Claude)
	path := filepath.Join(env.HomeDir, ".claude", "settings.json")

	writeFile(t, path, `{
  "hooks": {
    "Stop": [
      {"hooks": [{"type": "command", "command": "C:\\tools\\toasty.exe \"done\"", "timeout": 5000}]},
      {"matcher": "Bash", "hooks": [{"type": "command", "command": "afplay ping.aiff", "timeout": 7}]},
      "not-an-object",
      {"hooks": "not-an-array"}
    ],
    "PreToolUse": [{"hooks": [{"type": "command", "command": "toasty pre"}]}]
  }
}`)

	res := m.Uninstall(in)
	require.True(t, res.OK(), res.String())
	assert.Equal(t, 1, res.Removed)

	doc := readJSON(t, path)
	stop := triggerArray(t, doc, []string{"hooks", "Stop"})
	require.Len(t, stop, 3)
	assert.Equal(t, map[string]any{
		"matcher": "Bash",
		"hooks":   []any{map[string]any{"type": "command", "command": "afplay ping.aiff", "timeout": float64(7)}},
	}, stop[0])
	assert.Equal(t, "not-an-object", stop[1])
	assert.Equal(t, map[string]any{"hooks": "not-an-array"}, stop[2])

	// Other events are outside the trigger array and stay untouched
	assert.Len(t, triggerArray(t, doc, []string{"hooks", "PreToolUse"}), 1)
}

func TestUninstall_RemovesEveryOwnedEntry(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Cursor)
	path := filepath.Join(env.HomeDir, ".cursor", "hooks.json")
	writeFile(t, path, `{"version":1,"hooks":{"stop":[{"command":"toasty a"},{"command":"keep"},{"command":"/bin/toasty b"}]}}`)

	res := m.Uninstall(in)
	require.True(t, res.OK())
	assert.Equal(t, 2, res.Removed)
	assert.Equal(t, []any{map[string]any{"command": "keep"}}, triggerArray(t, readJSON(t, path), in.Schema.TriggerPath))
}

func TestInstall_MalformedConfigRecovery(t *testing.T) {
	var logs bytes.Buffer
	env := Env{HomeDir: t.TempDir(), WorkDir: t.TempDir()}
	m := NewManager(env, zerolog.New(&logs))
	in := mustLookup(t, Gemini)

	path, err := m.ConfigPath(in)
	require.NoError(t, err)
	const broken = `{"hooks": {"AfterAgent": [`
	writeFile(t, path, broken)

	res := m.Install(in, testExe)
	require.True(t, res.OK(), res.String())
	assert.Equal(t, ActionInstalled, res.Action)

	doc := readJSON(t, path)
	assert.Len(t, doc, 1)
	arr := triggerArray(t, doc, in.Schema.TriggerPath)
	require.Len(t, arr, 1)
	assert.True(t, in.Schema.owns(arr[0]))

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, broken, string(backup))
	assert.Contains(t, logs.String(), "failed to parse existing config")
}

func TestInstall_NonObjectDocumentStartsFresh(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Claude)
	path := filepath.Join(env.HomeDir, ".claude", "settings.json")
	writeFile(t, path, `[1, 2, 3]`)

	require.True(t, m.Install(in, testExe).OK())
	assert.Len(t, triggerArray(t, readJSON(t, path), in.Schema.TriggerPath), 1)
}

func TestUninstall_MalformedConfigFails(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Claude)
	path := filepath.Join(env.HomeDir, ".claude", "settings.json")
	writeFile(t, path, `{not json`)

	res := m.Uninstall(in)
	assert.False(t, res.OK())
	assert.Equal(t, ActionFailed, res.Action)
	require.Error(t, res.Err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{not json`, string(data))
}

func TestMissingConfigFile(t *testing.T) {
	for _, in := range Integrations() {
		t.Run(in.Name, func(t *testing.T) {
			m, _ := newTestManager(t)
			path, err := m.ConfigPath(in)
			require.NoError(t, err)

			assert.False(t, m.IsInstalled(in))

			res := m.Uninstall(in)
			assert.True(t, res.OK())
			assert.Equal(t, ActionNothingToRemove, res.Action)

			_, err = os.Stat(path)
			assert.True(t, os.IsNotExist(err), "uninstall must not create %s", path)
		})
	}
}

func TestEmptyConfigFile(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Claude)
	path := filepath.Join(env.HomeDir, ".claude", "settings.json")
	writeFile(t, path, "")

	assert.False(t, m.IsInstalled(in))
	assert.Equal(t, ActionNothingToRemove, m.Uninstall(in).Action)

	require.True(t, m.Install(in, testExe).OK())
	assert.True(t, m.IsInstalled(in))
	_, err := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err), "empty files are not backed up")
}

func TestInstall_BackslashPathRoundTrips(t *testing.T) {
	const winExe = `C:\Users\dev\AppData\Local\toasty\toasty.exe`

	for _, in := range Integrations() {
		t.Run(in.Name, func(t *testing.T) {
			m, _ := newTestManager(t)
			path, err := m.ConfigPath(in)
			require.NoError(t, err)
			if in.Scope == ScopeUser {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			}

			require.True(t, m.Install(in, winExe).OK())

			arr := triggerArray(t, readJSON(t, path), in.Schema.TriggerPath)
			require.Len(t, arr, 1)
			entry := arr[0].(map[string]any)

			var cmd string
			switch {
			case in.Schema.Layout == LayoutNested:
				cmd = entry["hooks"].([]any)[0].(map[string]any)["command"].(string)
			case in.Name == Copilot:
				cmd = entry["powershell"].(string)
			default:
				cmd = entry[in.Schema.CommandField].(string)
			}
			assert.Equal(t, winExe, cmd[:len(winExe)])
		})
	}
}

func TestInstall_PreservesUnrelatedContent(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Claude)
	path := filepath.Join(env.HomeDir, ".claude", "settings.json")
	writeFile(t, path, `{
  "permissions": {"allow": ["Bash(ls:*)", "Read"]},
  "cleanupPeriodDays": 12345678901234567890,
  "ratio": 1.50,
  "env": {"A": "<b>&"},
  "hooks": {"PreToolUse": [{"matcher": "*", "hooks": [{"type": "command", "command": "lint"}]}]}
}`)

	require.True(t, m.Install(in, testExe).OK())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "12345678901234567890")
	assert.Contains(t, string(data), "1.50")
	assert.Contains(t, string(data), `"<b>&"`)

	doc := readJSON(t, path)
	assert.Equal(t, []any{"Bash(ls:*)", "Read"}, doc["permissions"].(map[string]any)["allow"])
	assert.Len(t, triggerArray(t, doc, []string{"hooks", "PreToolUse"}), 1)
	assert.Len(t, triggerArray(t, doc, []string{"hooks", "Stop"}), 1)
}

func TestInstall_ReplacesWrongTypedNodes(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Gemini)
	path := filepath.Join(env.HomeDir, ".gemini", "settings.json")
	writeFile(t, path, `{"hooks":{"AfterAgent":"oops","BeforeTool":[]}}`)

	assert.False(t, m.IsInstalled(in))
	require.True(t, m.Install(in, testExe).OK())

	doc := readJSON(t, path)
	assert.Len(t, triggerArray(t, doc, in.Schema.TriggerPath), 1)
	assert.Equal(t, []any{}, doc["hooks"].(map[string]any)["BeforeTool"])
}

func TestInstall_DocumentDefaults(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Copilot)

	res := m.Install(in, testExe)
	require.True(t, res.OK(), res.String())
	assert.Equal(t, filepath.Join(env.WorkDir, ".github", "hooks", "toasty.json"), res.Path)

	doc := readJSON(t, res.Path)
	assert.Equal(t, float64(1), doc["version"])
	arr := triggerArray(t, doc, in.Schema.TriggerPath)
	require.Len(t, arr, 1)
	assert.Equal(t, map[string]any{
		"type":       "command",
		"bash":       testExe + ` 'Copilot finished' -t 'GitHub Copilot'`,
		"powershell": testExe + ` 'Copilot finished' -t 'GitHub Copilot'`,
		"timeoutSec": float64(5),
	}, arr[0])

	// An existing version is left alone
	writeFile(t, res.Path, `{"version":2}`)
	require.True(t, m.Install(in, testExe).OK())
	assert.Equal(t, float64(2), readJSON(t, res.Path)["version"])
}

func TestInstall_BackupsPreviousContent(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Claude)
	path := filepath.Join(env.HomeDir, ".claude", "settings.json")
	const original = "{\n  \"model\": \"sonnet\"\n}\n"
	writeFile(t, path, original)

	require.True(t, m.Install(in, testExe).OK())

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, original, string(backup))
}

func TestInstall_BackupFailureIsOnlyAWarning(t *testing.T) {
	var logs bytes.Buffer
	env := Env{HomeDir: t.TempDir()}
	m := NewManager(env, zerolog.New(&logs))
	in := mustLookup(t, Claude)
	path := filepath.Join(env.HomeDir, ".claude", "settings.json")
	writeFile(t, path, `{}`)
	require.NoError(t, os.MkdirAll(path+".bak", 0o755))

	res := m.Install(in, testExe)
	require.True(t, res.OK(), res.String())
	assert.True(t, m.IsInstalled(in))
	assert.Contains(t, logs.String(), "failed to create backup")
}

func TestInstall_WriteFailure(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Claude)

	// The user-scoped config directory is not created on install
	res := m.Install(in, testExe)
	assert.False(t, res.OK())
	assert.Equal(t, ActionFailed, res.Action)
	require.Error(t, res.Err)

	// A directory in place of the config file cannot be replaced either
	path := filepath.Join(env.HomeDir, ".claude", "settings.json")
	require.NoError(t, os.MkdirAll(path, 0o755))
	res = m.Install(in, testExe)
	assert.False(t, res.OK())
}

func TestUnresolvedBaseDirectory(t *testing.T) {
	m := NewManager(Env{}, zerolog.Nop())
	for _, in := range Integrations() {
		assert.False(t, m.Detect(in))
		assert.False(t, m.IsInstalled(in))
		assert.False(t, m.Install(in, testExe).OK())
		assert.True(t, m.Uninstall(in).OK())
	}
}

func TestDetect(t *testing.T) {
	m, env := newTestManager(t)

	require.NoError(t, os.MkdirAll(filepath.Join(env.HomeDir, ".claude"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(env.WorkDir, ".github"), 0o755))

	assert.True(t, m.Detect(mustLookup(t, Claude)))
	assert.False(t, m.Detect(mustLookup(t, Gemini)))
	assert.True(t, m.Detect(mustLookup(t, Copilot)))
	assert.False(t, m.Detect(mustLookup(t, Cursor)))
}

func TestStatus(t *testing.T) {
	m, env := newTestManager(t)
	require.NoError(t, os.MkdirAll(filepath.Join(env.HomeDir, ".claude"), 0o755))
	require.True(t, m.Install(mustLookup(t, Claude), testExe).OK())
	writeFile(t, filepath.Join(env.HomeDir, ".gemini", "settings.json"), `{oops`)

	rows := m.Status(Integrations()...)
	require.Len(t, rows, 4)

	assert.Equal(t, Claude, rows[0].Integration.Name)
	assert.True(t, rows[0].Detected)
	assert.True(t, rows[0].Installed)
	assert.NoError(t, rows[0].ConfigErr)

	assert.True(t, rows[1].Detected)
	assert.False(t, rows[1].Installed)
	assert.Error(t, rows[1].ConfigErr)

	assert.False(t, rows[2].Detected)
	assert.False(t, rows[3].Installed)
}

func TestInstall_UnreadableConfigIsNotReplaced(t *testing.T) {
	m, env := newTestManager(t)
	in := mustLookup(t, Claude)

	path := filepath.Join(env.HomeDir, ".claude", "settings.json")
	require.NoError(t, os.MkdirAll(path, 0o755))

	res := m.Install(in, testExe)
	assert.Equal(t, ActionFailed, res.Action)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "read ")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoFileExists(t, backupPath(path))
}

func TestInstall_PermissionDeniedConfigIsNotReplaced(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced")
	}
	m, env := newTestManager(t)
	in := mustLookup(t, Claude)

	path := filepath.Join(env.HomeDir, ".claude", "settings.json")
	original := `{"model":"opus"}`
	writeFile(t, path, original)
	require.NoError(t, os.Chmod(path, 0o200))

	res := m.Install(in, testExe)
	assert.False(t, res.OK())

	require.NoError(t, os.Chmod(path, 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
	assert.NoFileExists(t, backupPath(path))
}

func TestInstallUninstall_WithoutTriggerPath(t *testing.T) {
	want := map[string]string{
		Claude:  `{"a":1,"hooks":{"Stop":[]}}`,
		Gemini:  `{"a":1,"hooks":{"AfterAgent":[]}}`,
		Copilot: `{"a":1,"hooks":{"sessionEnd":[]},"version":1}`,
		Cursor:  `{"a":1,"hooks":{"stop":[]},"version":1}`,
	}

	for _, in := range Integrations() {
		t.Run(in.Name, func(t *testing.T) {
			m, _ := newTestManager(t)
			path, err := m.ConfigPath(in)
			require.NoError(t, err)
			writeFile(t, path, `{"a":1}`)

			require.True(t, m.Install(in, testExe).OK())
			res := m.Uninstall(in)
			require.True(t, res.OK(), res.String())
			assert.Equal(t, ActionRemoved, res.Action)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.JSONEq(t, want[in.Name], string(data))
		})
	}
}

func TestInstall_MarkerIsCaseSensitive(t *testing.T) {
	m, _ := newTestManager(t)
	in := mustLookup(t, Cursor)
	exe := `C:\Tools\Toasty.exe`

	path, err := m.ConfigPath(in)
	require.NoError(t, err)
	writeFile(t, path, `{}`)

	// The entry never contains the lower-case marker, so it is not ours
	require.Equal(t, ActionInstalled, m.Install(in, exe).Action)
	assert.False(t, m.IsInstalled(in))

	require.Equal(t, ActionInstalled, m.Install(in, exe).Action)
	assert.Len(t, triggerArray(t, readJSON(t, path), in.Schema.TriggerPath), 2)

	assert.Equal(t, ActionNothingToRemove, m.Uninstall(in).Action)
}
