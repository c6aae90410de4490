// Package osutil holds process-level constants and helpers.
package osutil

import (
	"os"
	"runtime"
)

const (
	Windows = "windows"
	Darwin  = "darwin"
)

// ExitCode is a process exit status.
type ExitCode int

const (
	ExitOK    ExitCode = 0
	ExitError ExitCode = 1
)

const (
	DirPermission  = 0o755
	FilePermission = 0o600
)

// Editor returns the user's preferred text editor from $VISUAL or $EDITOR,
// falling back to a platform default.
func Editor() string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if e := os.Getenv(key); e != "" {
			return e
		}
	}

	if runtime.GOOS == Windows {
		return `C:\Windows\system32\notepad.exe`
	}

	return "nano"
}
