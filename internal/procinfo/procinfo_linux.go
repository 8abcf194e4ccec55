//go:build linux

package procinfo

import (
	"fmt"
	"os"
)

type procTable struct{}

func newTable() (table, error) {
	return procTable{}, nil
}

func (procTable) lookup(pid int) (Process, bool) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return Process{}, false
	}
	return parseStat(pid, string(data))
}
