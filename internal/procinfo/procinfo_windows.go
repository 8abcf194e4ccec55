//go:build windows

package procinfo

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// newTable takes a single Toolhelp32 snapshot of every running process
func newTable() (table, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("process snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	tbl := make(mapTable)
	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snap, &entry); err != nil {
		return nil, fmt.Errorf("process snapshot: %w", err)
	}
	for {
		pid := int(entry.ProcessID)
		tbl[pid] = Process{
			PID:  pid,
			PPID: int(entry.ParentProcessID),
			Name: windows.UTF16ToString(entry.ExeFile[:]),
		}
		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}
	return tbl, nil
}
