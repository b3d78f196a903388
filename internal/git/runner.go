// Package git wraps git subprocess execution and output parsing for gitdeck.
package git

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	log "github.com/chmouel/gitdeck/internal/log"
)

// Runner executes the git tool with an argument list and returns its
// output. Implementations must collapse every failure mode (nonzero exit,
// missing binary, permission denied) into the returned error so callers
// never have to distinguish them.
type Runner interface {
	Run(ctx context.Context, args []string, cwd string) (string, error)
}

// ExecRunner runs git as a subprocess. Only the git executable is ever
// launched; argument lists come from internal call sites and are not shell
// interpolated.
type ExecRunner struct {
	// GitPath overrides the executable name, defaulting to "git".
	GitPath string
}

// Run executes git with args in cwd (or the process working directory when
// empty). On exit 0 it returns trimmed stdout. On nonzero exit it returns
// the trimmed stderr text as the error; when the process could not be
// launched at all the launch error's description is used instead, on the
// same failure channel.
func (r *ExecRunner) Run(ctx context.Context, args []string, cwd string) (string, error) {
	name := r.GitPath
	if name == "" {
		name = "git"
	}
	command := name + " " + strings.Join(args, " ")
	log.Printf("run: %s (cwd=%s)", command, cwd)

	// #nosec G204 -- argument lists are built by internal call sites
	cmd := exec.CommandContext(ctx, name, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(string(exitErr.Stderr))
			if detail == "" {
				detail = exitErr.Error()
			}
			log.Printf("error: %s: %s", command, detail)
			return "", errors.New(detail)
		}
		log.Printf("error: %s: %v", command, err)
		return "", errors.New(err.Error())
	}

	out := strings.TrimSpace(string(output))
	log.Printf("ok: %s", command)
	return out, nil
}
