// Package spawn launches the shell commands the spawn command and
// river's init executable start (spec.md §4.5, §6): double-forked,
// detached from river's process group and controlling terminal, and
// reparented to init so river never waits on or is killed alongside a
// spawned child.
package spawn

import (
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// fork1 starts an intermediate /bin/sh whose sole job is to background
// script (the second fork) and exit immediately, so the process running
// script is reparented to init rather than to river. River only ever
// holds a handle on the short-lived intermediate shell.
func fork1(script string, env []string) (*os.Process, error) {
	c := exec.Command("/bin/sh", "-c", script)
	c.Stdin = nil
	c.Stdout = nil
	c.Stderr = nil
	c.Env = env
	c.SysProcAttr = &unix.SysProcAttr{Setsid: true}
	if err := c.Start(); err != nil {
		return nil, err
	}
	return c.Process, nil
}

// reap waits on the intermediate shell so it never lingers as a zombie;
// this is the explicit waitpid spec.md §4.5 calls for, as opposed to
// leaving collection to a SIGCHLD handler or letting Release() discard
// the child's exit status. It does not block on the backgrounded
// grandchild: the intermediate shell exits as soon as its `&` job is
// launched.
func reap(p *os.Process) error {
	_, err := p.Wait()
	return err
}

// Shell runs cmd through /bin/sh -c, double-forked and detached into
// its own session so a terminal emulator or long-lived client spawned
// by a keybinding outlives a compositor restart (spec.md §4.5 "spawn").
func Shell(cmd string) error {
	p, err := fork1(cmd+" &", nil)
	if err != nil {
		return err
	}
	return reap(p)
}

// Init runs path as river's init executable (spec.md §6): same
// double-fork and detachment as Shell, plus the caller-supplied
// environment is passed through unmodified so RIVER_CONTROL_SOCKET-style
// discovery variables reach it.
func Init(path string, env []string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	p, err := fork1(shellQuote(path)+" &", env)
	if err != nil {
		return err
	}
	return reap(p)
}

// shellQuote wraps s in single quotes for safe use as one /bin/sh word,
// escaping any embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
