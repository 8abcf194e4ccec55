package hooks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var errUnresolved = errors.New("base directory not resolved")

// Manager installs, detects and removes toasty hooks in integration configs
type Manager struct {
	env Env
	log zerolog.Logger
}

// NewManager creates a Manager resolving config paths against env
func NewManager(env Env, log zerolog.Logger) *Manager {
	return &Manager{
		env: env,
		log: log,
	}
}

// ConfigPath returns the absolute path of the integration's config file
func (m *Manager) ConfigPath(in Integration) (string, error) {
	base, err := m.base(in.Scope)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, filepath.FromSlash(in.ConfigFile)), nil
}

func (m *Manager) base(scope Scope) (string, error) {
	dir := m.env.HomeDir
	if scope == ScopeProject {
		dir = m.env.WorkDir
	}
	if dir == "" {
		return "", errUnresolved
	}
	return dir, nil
}

// Detect reports whether the integration's tool appears to be present
func (m *Manager) Detect(in Integration) bool {
	base, err := m.base(in.Scope)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(base, filepath.FromSlash(in.Probe)))
	return err == nil
}

// IsInstalled reports whether the integration's config already carries a
// toasty hook. Unreadable or malformed configs count as not installed.
func (m *Manager) IsInstalled(in Integration) bool {
	path, err := m.ConfigPath(in)
	if err != nil {
		return false
	}
	data, err := readConfig(path)
	if err != nil || len(data) == 0 {
		return false
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return false
	}
	arr, ok := lookupTrigger(doc, in.Schema.TriggerPath)
	if !ok {
		return false
	}
	return in.Schema.containsOwned(arr)
}

// Install adds a hook invoking exePath to the integration's config.
// Installing twice leaves the file untouched the second time.
func (m *Manager) Install(in Integration, exePath string) Result {
	result := Result{Integration: in}

	path, err := m.ConfigPath(in)
	if err != nil {
		result.Err = err
		return result
	}
	result.Path = path

	if in.Scope == ScopeProject {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			m.log.Warn().Err(err).Str("path", filepath.Dir(path)).Msg("failed to create config directory")
		}
	}

	// An existing file that cannot be read is never overwritten
	existing, err := readConfig(path)
	if err != nil {
		result.Err = fmt.Errorf("read %s: %w", path, err)
		return result
	}

	doc := make(map[string]any)
	if len(existing) > 0 {
		parsed, err := decodeDocument(existing)
		if err != nil {
			m.log.Warn().Err(err).Str("path", path).Msg("failed to parse existing config, starting fresh")
		} else {
			doc = parsed
		}
	}

	parent, arr := ensureTrigger(doc, in.Schema.TriggerPath, m.log)
	if in.Schema.containsOwned(arr) {
		result.Action = ActionAlreadyInstalled
		return result
	}

	applyDefaults(doc, in.Schema.Defaults)
	parent[in.Schema.TriggerPath[len(in.Schema.TriggerPath)-1]] = append(arr, in.Entry(exePath))

	if err := m.save(path, existing, doc); err != nil {
		result.Err = err
		return result
	}

	result.Action = ActionInstalled
	return result
}

// Uninstall removes every toasty hook from the integration's config and keeps
// all other entries in their original order.
func (m *Manager) Uninstall(in Integration) Result {
	result := Result{Integration: in, Action: ActionNothingToRemove}

	path, err := m.ConfigPath(in)
	if err != nil {
		// Nothing can be installed where nothing resolves
		return result
	}
	result.Path = path

	existing, err := readConfig(path)
	if err != nil {
		result.Action = ActionFailed
		result.Err = fmt.Errorf("read %s: %w", path, err)
		return result
	}
	if len(existing) == 0 {
		return result
	}

	doc, err := decodeDocument(existing)
	if err != nil {
		result.Action = ActionFailed
		result.Err = fmt.Errorf("parse %s: %w", path, err)
		return result
	}

	arr, ok := lookupTrigger(doc, in.Schema.TriggerPath)
	if !ok {
		return result
	}

	kept, removed := in.Schema.withoutOwned(arr)
	if removed == 0 {
		return result
	}

	parent, _ := ensureTrigger(doc, in.Schema.TriggerPath, m.log)
	parent[in.Schema.TriggerPath[len(in.Schema.TriggerPath)-1]] = kept

	if err := m.save(path, existing, doc); err != nil {
		result.Action = ActionFailed
		result.Err = err
		return result
	}

	result.Action = ActionRemoved
	result.Removed = removed
	return result
}

// Status builds the detection/installation row for each integration
func (m *Manager) Status(integrations ...Integration) []Status {
	rows := make([]Status, 0, len(integrations))
	for _, in := range integrations {
		row := Status{
			Integration: in,
			Detected:    m.Detect(in),
			Installed:   m.IsInstalled(in),
		}
		if path, err := m.ConfigPath(in); err == nil {
			row.ConfigPath = path
			row.ConfigErr = ValidateConfigFile(path, in.Schema)
		}
		rows = append(rows, row)
	}
	return rows
}

// save backs up the previous content, then writes the document. Only the
// write itself can fail the operation.
func (m *Manager) save(path string, previous []byte, doc map[string]any) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if len(previous) > 0 {
		if err := createBackup(path, previous); err != nil {
			m.log.Warn().Err(err).Str("path", backupPath(path)).Msg("failed to create backup")
		} else {
			m.log.Debug().Str("path", backupPath(path)).Msg("backup written")
		}
	}

	if err := writeConfig(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	m.log.Debug().Str("path", path).Msg("config written")
	return nil
}
