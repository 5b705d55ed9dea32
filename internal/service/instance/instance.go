package instance

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another process with the same executable name exists.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Guard looks for other processes running the same executable.
type Guard struct {
	// processes lists running processes.
	processes func() ([]ps.Process, error)
	// pid is the current process id, skipped during the scan.
	pid int
}

// NewGuard returns a guard over the OS process table.
func NewGuard() *Guard {
	return &Guard{
		processes: ps.Processes,
		pid:       os.Getpid(),
	}
}

// EnsureSingle fails with ErrAlreadyRunning when another process named name is alive.
// An empty name disables the check.
func (g *Guard) EnsureSingle(name string) error {
	if name == "" {
		return nil
	}

	processList, err := g.processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	want := normalize(name)

	for _, process := range processList {
		if process.Pid() == g.pid {
			continue
		}

		if normalize(process.Executable()) != want {
			continue
		}

		return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, name, process.Pid())
	}

	return nil
}

func normalize(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ".exe")
}
