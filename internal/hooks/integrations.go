package hooks

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Integration names accepted on the command line
const (
	Claude  = "claude"
	Gemini  = "gemini"
	Copilot = "copilot"
	Cursor  = "cursor"
)

// Integrations returns the supported integrations in report order
func Integrations() []Integration {
	return []Integration{
		{
			Name:        Claude,
			DisplayName: "Claude Code",
			Scope:       ScopeUser,
			Probe:       ".claude",
			ConfigFile:  ".claude/settings.json",
			Event:       "Stop",
			Schema: Schema{
				TriggerPath:  []string{"hooks", "Stop"},
				Layout:       LayoutNested,
				CommandField: "command",
			},
			Text:  HookText{Message: "Claude needs attention", Title: "Claude Code", Timeout: DefaultTimeout},
			entry: nestedCommandEntry,
		},
		{
			Name:        Gemini,
			DisplayName: "Gemini CLI",
			Scope:       ScopeUser,
			Probe:       ".gemini",
			ConfigFile:  ".gemini/settings.json",
			Event:       "AfterAgent",
			Schema: Schema{
				TriggerPath:  []string{"hooks", "AfterAgent"},
				Layout:       LayoutNested,
				CommandField: "command",
			},
			Text:  HookText{Message: "Gemini finished", Title: "Gemini", Timeout: DefaultTimeout},
			entry: nestedCommandEntry,
		},
		{
			Name:        Copilot,
			DisplayName: "GitHub Copilot",
			Scope:       ScopeProject,
			Probe:       ".github",
			ConfigFile:  ".github/hooks/toasty.json",
			Event:       "sessionEnd",
			Schema: Schema{
				TriggerPath:  []string{"hooks", "sessionEnd"},
				Layout:       LayoutFlat,
				CommandField: "bash",
				Defaults:     map[string]any{"version": 1},
			},
			Text:  HookText{Message: "Copilot finished", Title: "GitHub Copilot", Timeout: 5},
			Note:  "This is repo-level only, not global",
			entry: copilotEntry,
		},
		{
			Name:        Cursor,
			DisplayName: "Cursor",
			Scope:       ScopeUser,
			Probe:       ".cursor",
			ConfigFile:  ".cursor/hooks.json",
			Event:       "stop",
			Schema: Schema{
				TriggerPath:  []string{"hooks", "stop"},
				Layout:       LayoutFlat,
				CommandField: "command",
				Defaults:     map[string]any{"version": 1},
			},
			Text:  HookText{Message: "Cursor finished", Title: "Cursor"},
			entry: flatCommandEntry,
		},
	}
}

// Names returns the integration names in report order
func Names() []string {
	var names []string
	for _, in := range Integrations() {
		names = append(names, in.Name)
	}
	return names
}

// Lookup finds an integration by name
func Lookup(name string) (Integration, error) {
	for _, in := range Integrations() {
		if in.Name == strings.ToLower(name) {
			return in, nil
		}
	}
	return Integration{}, fmt.Errorf("%w: %s (available: %s)", ErrUnknownIntegration, name, strings.Join(Names(), ", "))
}

// invocation renders `<exe> "<message>" -t "<title>"`. The path is embedded
// verbatim; JSON encoding takes care of escaping it.
func invocation(exePath string, text HookText) string {
	return exePath + " " + strconv.Quote(text.Message) + " -t " + strconv.Quote(text.Title)
}

func nestedCommandEntry(exePath string, text HookText) map[string]any {
	hook := map[string]any{
		"type":    "command",
		"command": invocation(exePath, text),
	}
	if text.Timeout > 0 {
		hook["timeout"] = text.Timeout
	}
	return map[string]any{
		"hooks": []any{hook},
	}
}

func flatCommandEntry(exePath string, text HookText) map[string]any {
	return map[string]any{
		"command": invocation(exePath, text),
	}
}

// copilotEntry carries one command per shell. The bash form uses forward
// slashes so Git Bash can run a Windows path.
func copilotEntry(exePath string, text HookText) map[string]any {
	entry := map[string]any{
		"type":       "command",
		"bash":       filepath.ToSlash(exePath) + " " + posixQuote(text.Message) + " -t " + posixQuote(text.Title),
		"powershell": exePath + " " + powershellQuote(text.Message) + " -t " + powershellQuote(text.Title),
	}
	if text.Timeout > 0 {
		entry["timeoutSec"] = text.Timeout
	}
	return entry
}

func posixQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func powershellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
