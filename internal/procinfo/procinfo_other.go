//go:build !linux && !windows

package procinfo

import (
	"fmt"
	"os/exec"
)

func newTable() (table, error) {
	out, err := exec.Command("ps", "-A", "-o", "pid=", "-o", "ppid=", "-o", "comm=").Output()
	if err != nil {
		return nil, fmt.Errorf("ps: %w", err)
	}
	return parsePS(string(out)), nil
}
