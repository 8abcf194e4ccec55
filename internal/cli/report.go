package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sho7650/toasty/internal/hooks"
)

// ErrHookFailures is returned when at least one integration could not be updated
var ErrHookFailures = errors.New("one or more integrations failed")

// All selects every integration
const All = "all"

// Runner prints the install, uninstall and status reports
type Runner struct {
	manager      *hooks.Manager
	integrations []hooks.Integration
	out          io.Writer
}

// NewRunner creates a Runner over the given integrations
func NewRunner(manager *hooks.Manager, integrations []hooks.Integration, out io.Writer) *Runner {
	return &Runner{
		manager:      manager,
		integrations: integrations,
		out:          out,
	}
}

// Select returns the integrations named by target, or all of them for "" and "all"
func (r *Runner) Select(target string) ([]hooks.Integration, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" || target == All {
		return r.integrations, nil
	}
	for _, in := range r.integrations {
		if in.Name == target {
			return []hooks.Integration{in}, nil
		}
	}
	_, err := hooks.Lookup(target)
	if err == nil {
		err = fmt.Errorf("%w: %s", hooks.ErrUnknownIntegration, target)
	}
	return nil, err
}

// Install adds hooks invoking exePath to every selected, detected integration.
// A failing integration does not stop the others.
func (r *Runner) Install(target, exePath string) error {
	selected, err := r.Select(target)
	if err != nil {
		return err
	}
	explicit := len(selected) == 1 && strings.ToLower(target) != All && target != ""

	fmt.Fprintln(r.out, "Detecting AI CLI agents...")
	detected := make(map[string]bool)
	for _, in := range r.integrations {
		detected[in.Name] = r.manager.Detect(in)
		fmt.Fprintf(r.out, "  %s %s found%s\n", mark(detected[in.Name]), in.DisplayName, scopeSuffix(in))
	}
	fmt.Fprintln(r.out)

	fmt.Fprintln(r.out, "Installing toasty hooks...")
	installed, failed := 0, 0
	for _, in := range selected {
		if !detected[in.Name] {
			if explicit {
				fmt.Fprintf(r.out, "  %s %s: Not detected, skipped\n", mark(false), in.DisplayName)
			}
			continue
		}

		res := r.manager.Install(in, exePath)
		if !res.OK() {
			failed++
			fmt.Fprintf(r.out, "  %s %s: Failed to install: %v\n", mark(false), in.DisplayName, res.Err)
			continue
		}
		installed++
		fmt.Fprintf(r.out, "  %s %s: %s\n", mark(true), in.DisplayName, res)
		if in.Note != "" {
			fmt.Fprintf(r.out, "      Note: %s\n", in.Note)
		}
	}

	if installed > 0 {
		fmt.Fprintln(r.out, "\nDone! You'll get notifications when AI agents finish.")
	} else if failed == 0 {
		fmt.Fprintln(r.out, "\nNo agents were installed. Check detection status above.")
	}
	if failed > 0 {
		fmt.Fprintf(r.out, "\n%d integration(s) failed.\n", failed)
		return ErrHookFailures
	}
	return nil
}

// Uninstall removes hooks from every selected integration that has one
func (r *Runner) Uninstall(target string) error {
	selected, err := r.Select(target)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, "Removing toasty hooks...")
	removed, failed := 0, 0
	for _, in := range selected {
		if !r.manager.IsInstalled(in) {
			continue
		}
		res := r.manager.Uninstall(in)
		if !res.OK() {
			failed++
			fmt.Fprintf(r.out, "  %s %s: Failed to remove: %v\n", mark(false), in.DisplayName, res.Err)
			continue
		}
		removed++
		fmt.Fprintf(r.out, "  %s %s: %s\n", mark(true), in.DisplayName, res)
	}

	switch {
	case removed > 0:
		fmt.Fprintln(r.out, "\nDone! Hooks have been removed.")
	case failed == 0:
		fmt.Fprintln(r.out, "\nNo hooks were installed.")
	}
	if failed > 0 {
		fmt.Fprintf(r.out, "\n%d integration(s) failed.\n", failed)
		return ErrHookFailures
	}
	return nil
}

// Status prints the detection/installation matrix
func (r *Runner) Status() {
	rows := r.manager.Status(r.integrations...)

	fmt.Fprintln(r.out, "Installation status:")
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Detected agents:")
	for _, row := range rows {
		fmt.Fprintf(r.out, "  %s %s%s\n", mark(row.Detected), row.Integration.DisplayName, scopeSuffix(row.Integration))
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Installed hooks:")
	for _, row := range rows {
		line := fmt.Sprintf("  %s %s", mark(row.Installed), row.Integration.DisplayName)
		if row.ConfigErr != nil {
			line += fmt.Sprintf(" (%s: %v)", row.ConfigPath, row.ConfigErr)
		}
		fmt.Fprintln(r.out, line)
	}
}

// ConfigPaths returns the resolvable config file of every integration
func (r *Runner) ConfigPaths() []string {
	var paths []string
	for _, in := range r.integrations {
		if p, err := r.manager.ConfigPath(in); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}

func mark(ok bool) string {
	if ok {
		return "[x]"
	}
	return "[ ]"
}

func scopeSuffix(in hooks.Integration) string {
	if in.Scope == hooks.ScopeProject {
		return " (in current repo)"
	}
	return ""
}
