package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dmftio/bethe/pkg/domain"
)

// KramersKronig implements ports.RealParts by invoking the external "kk"
// tool: kk <src> <dst>.
type KramersKronig struct {
	// Command is the tool name or path; defaults to "kk".
	Command string
	// Dir is the working directory for the invocation.
	Dir string
}

// NewKramersKronig creates the adapter with the default command name.
func NewKramersKronig(dir string) *KramersKronig {
	return &KramersKronig{Command: "kk", Dir: dir}
}

// Available reports whether the tool can be found in PATH.
func (k *KramersKronig) Available() bool {
	_, err := exec.LookPath(k.Command)
	return err == nil
}

// Derive runs the tool and verifies the output file exists afterwards.
func (k *KramersKronig) Derive(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, k.Command, src, dst)
	cmd.Dir = k.Dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s %s %s: %v: %s",
			domain.ErrExternalSolver, k.Command, src, dst, err, out)
	}
	path := dst
	if k.Dir != "" {
		path = filepath.Join(k.Dir, dst)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s produced no output %s", domain.ErrExternalSolver, k.Command, dst)
	}
	return nil
}
