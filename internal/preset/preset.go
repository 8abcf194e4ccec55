// Package preset maps the agent that launched toasty to notification defaults.
package preset

import (
	"os"
	"strings"

	"github.com/sho7650/toasty/internal/procinfo"
)

// Preset holds the notification defaults for one calling application
type Preset struct {
	Name  string
	Title string
	// Processes are the executable base names that select this preset
	Processes []string
}

var presets = []Preset{
	{Name: "claude", Title: "Claude Code", Processes: []string{"claude"}},
	{Name: "gemini", Title: "Gemini", Processes: []string{"gemini"}},
	{Name: "copilot", Title: "GitHub Copilot", Processes: []string{"copilot", "github-copilot", "gh-copilot"}},
	{Name: "cursor", Title: "Cursor", Processes: []string{"cursor", "cursor-agent"}},
	{Name: "codex", Title: "Codex", Processes: []string{"codex"}},
}

// All returns every known preset
func All() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Lookup finds a preset by name
func Lookup(name string) (Preset, bool) {
	name = strings.ToLower(name)
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Match returns the preset of the nearest process in chain whose name is known
func Match(chain []procinfo.Process) (Preset, bool) {
	for _, proc := range chain {
		name := procinfo.BaseName(proc.Name)
		for _, p := range presets {
			for _, candidate := range p.Processes {
				if name == candidate {
					return p, true
				}
			}
		}
	}
	return Preset{}, false
}

// Detect walks the ancestry of the current process. Any failure to read
// the process table means no preset.
func Detect() (Preset, bool) {
	chain, err := procinfo.Ancestors(os.Getpid())
	if err != nil {
		return Preset{}, false
	}
	return Match(chain)
}
