// Package procinfo walks the parent-process chain of a process.
package procinfo

import (
	"path/filepath"
	"strconv"
	"strings"
)

// maxDepth bounds the walk in case the process table contains a cycle
const maxDepth = 64

// Process is one entry of the process table
type Process struct {
	PID  int
	PPID int
	// Name is the executable base name as reported by the OS
	Name string
}

type table interface {
	lookup(pid int) (Process, bool)
}

// Ancestors returns the parents of pid, nearest first. Processes that
// vanish mid-walk end the chain early.
func Ancestors(pid int) ([]Process, error) {
	tbl, err := newTable()
	if err != nil {
		return nil, err
	}
	return walk(tbl, pid), nil
}

func walk(tbl table, pid int) []Process {
	var chain []Process
	seen := map[int]bool{pid: true}

	self, ok := tbl.lookup(pid)
	if !ok {
		return nil
	}
	next := self.PPID

	for len(chain) < maxDepth && next > 0 && !seen[next] {
		seen[next] = true
		p, ok := tbl.lookup(next)
		if !ok {
			break
		}
		chain = append(chain, p)
		next = p.PPID
	}
	return chain
}

// BaseName normalises a process name for comparison: no directory, no
// .exe suffix, lower case.
func BaseName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.ToLower(name)
	return strings.TrimSuffix(name, ".exe")
}

// parseStat parses the content of /proc/<pid>/stat. The command name is
// wrapped in parentheses and may itself contain spaces or parentheses.
func parseStat(pid int, stat string) (Process, bool) {
	open := strings.IndexByte(stat, '(')
	end := strings.LastIndexByte(stat, ')')
	if open < 0 || end < open || end+2 >= len(stat) {
		return Process{}, false
	}
	fields := strings.Fields(stat[end+2:])
	if len(fields) < 2 {
		return Process{}, false
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return Process{}, false
	}
	return Process{PID: pid, PPID: ppid, Name: stat[open+1 : end]}, true
}

// mapTable is a fully loaded process table
type mapTable map[int]Process

func (t mapTable) lookup(pid int) (Process, bool) {
	p, ok := t[pid]
	return p, ok
}

// parsePS parses `ps -A -o pid= -o ppid= -o comm=` output
func parsePS(out string) mapTable {
	tbl := make(mapTable)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		pid, err1 := strconv.Atoi(fields[0])
		ppid, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			continue
		}
		tbl[pid] = Process{PID: pid, PPID: ppid, Name: strings.Join(fields[2:], " ")}
	}
	return tbl
}
