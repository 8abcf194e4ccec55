package hooks

import (
	"errors"
	"fmt"
)

// ProgramName is the marker used to recognise toasty-managed hook entries.
// An entry is ours when its command string contains this name.
const ProgramName = "toasty"

// DefaultTimeout is the hook timeout in milliseconds for schemas that take one.
const DefaultTimeout = 5000

// ErrUnknownIntegration is returned when an integration name is not in the catalogue
var ErrUnknownIntegration = errors.New("unknown integration")

// Scope selects the base directory a configuration file is resolved against
type Scope int

const (
	// ScopeUser configs live under the user's home directory
	ScopeUser Scope = iota
	// ScopeProject configs live under the current working directory
	ScopeProject
)

// Layout describes where the command string sits inside a trigger-array element
type Layout int

const (
	// LayoutNested elements wrap their commands in an inner "hooks" array:
	// {"hooks":[{"type":"command","command":"..."}]}
	LayoutNested Layout = iota
	// LayoutFlat elements carry the command as a direct field: {"command":"..."}
	LayoutFlat
)

// Schema is the JSON shape an integration uses for its hooks
type Schema struct {
	// TriggerPath is the key path from the document root to the trigger array
	TriggerPath []string
	Layout      Layout
	// CommandField is the field scanned for ProgramName
	CommandField string
	// Defaults are top-level keys set on install when absent
	Defaults map[string]any
}

// HookText is the user-visible part of a generated hook command
type HookText struct {
	Message string
	Title   string
	Timeout int
}

// Integration describes one external tool whose configuration can host a hook
type Integration struct {
	Name        string
	DisplayName string
	Scope       Scope
	// Probe is the directory, relative to the scope base, whose presence
	// signals the tool is installed
	Probe string
	// ConfigFile is the slash-separated config path relative to the scope base
	ConfigFile string
	Event      string
	Schema     Schema
	Text       HookText
	// Note is printed under a successful install line
	Note string

	entry func(exePath string, text HookText) map[string]any
}

// WithText returns a copy of the integration with non-zero fields of t applied
func (in Integration) WithText(t HookText) Integration {
	if t.Message != "" {
		in.Text.Message = t.Message
	}
	if t.Title != "" {
		in.Text.Title = t.Title
	}
	if t.Timeout > 0 {
		in.Text.Timeout = t.Timeout
	}
	return in
}

// Entry builds the hook entry that install appends to the trigger array
func (in Integration) Entry(exePath string) map[string]any {
	return in.entry(exePath, in.Text)
}

// Env holds the resolved base directories integrations are located against
type Env struct {
	HomeDir string
	WorkDir string
}

// Action is the outcome of an install or uninstall
type Action int

const (
	ActionFailed Action = iota
	ActionInstalled
	ActionAlreadyInstalled
	ActionRemoved
	ActionNothingToRemove
)

// Result reports the outcome of a single install or uninstall
type Result struct {
	Integration Integration
	Action      Action
	Path        string
	// Removed counts entries dropped by uninstall
	Removed int
	Err     error
}

// OK reports whether the operation succeeded
func (r Result) OK() bool {
	return r.Err == nil && r.Action != ActionFailed
}

// String returns the human-readable status line for the result
func (r Result) String() string {
	switch r.Action {
	case ActionInstalled:
		return fmt.Sprintf("Added %s hook", r.Integration.Event)
	case ActionAlreadyInstalled:
		return fmt.Sprintf("%s hook already installed", r.Integration.Event)
	case ActionRemoved:
		return "Removed hooks"
	case ActionNothingToRemove:
		return "No hooks to remove"
	}
	if r.Err != nil {
		return fmt.Sprintf("Failed: %v", r.Err)
	}
	return "Failed"
}

// Status is one row of the detection/installation matrix
type Status struct {
	Integration Integration
	ConfigPath  string
	Detected    bool
	Installed   bool
	// ConfigErr is set when the config file exists but cannot be edited safely
	ConfigErr error
}
