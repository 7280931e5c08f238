package runtime

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Options describes how a run environment is provisioned.
type Options struct {
	// Box is the declared base image identifier. The local runner records
	// it as metadata about the intended substrate; container execution
	// belongs to the CI host.
	Box string
	// WorkDir is the workspace root shared by every step in the run.
	// Defaults to the current directory.
	WorkDir string
}

// Environment is the single shared mutable resource a run executes in: a
// workspace directory plus the variable set steps inherit. Steps mutate it
// in turn; there is no concurrent access because execution is sequential.
type Environment struct {
	box     string
	workDir string

	mu   sync.Mutex
	vars map[string]string

	pythonOnce sync.Once
	pythonPath string
	pythonErr  error
}

// Provision materializes the workspace and captures the inherited process
// environment. The workspace directory is created when absent.
func Provision(opts Options) (*Environment, error) {
	if strings.TrimSpace(opts.Box) == "" {
		return nil, fmt.Errorf("box identifier is required")
	}

	workDir := opts.WorkDir
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		workDir = cwd
	}

	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if idx := strings.IndexByte(kv, '='); idx > 0 {
			vars[kv[:idx]] = kv[idx+1:]
		}
	}
	vars["BOXBUILD_BOX"] = opts.Box

	return &Environment{box: opts.Box, workDir: abs, vars: vars}, nil
}

// Box returns the declared base image identifier.
func (e *Environment) Box() string {
	return e.box
}

// WorkDir returns the workspace root.
func (e *Environment) WorkDir() string {
	return e.workDir
}

// Path joins parts onto the workspace root.
func (e *Environment) Path(parts ...string) string {
	return filepath.Join(append([]string{e.workDir}, parts...)...)
}

// Set records a variable for subsequent steps.
func (e *Environment) Set(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[key] = value
}

// Lookup reads a variable previously inherited or set.
func (e *Environment) Lookup(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vars[key]
	return v, ok
}

// Environ renders the variable set in the os/exec format, sorted for
// deterministic process spawning.
func (e *Environment) Environ() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, 0, len(e.vars))
	for k, v := range e.vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Activate switches the environment into the virtual environment rooted at
// venvDir: VIRTUAL_ENV is set and the sandbox bin directory is prepended to
// PATH so later steps resolve the sandboxed interpreter and installer.
func (e *Environment) Activate(venvDir string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.vars["VIRTUAL_ENV"] = venvDir
	bin := filepath.Join(venvDir, "bin")
	if path, ok := e.vars["PATH"]; ok && path != "" {
		e.vars["PATH"] = bin + string(os.PathListSeparator) + path
	} else {
		e.vars["PATH"] = bin
	}
}

// Python resolves the interpreter used to create virtual environments.
// Resolution is lazy so pipelines without Python steps never require one.
func (e *Environment) Python() (string, error) {
	e.pythonOnce.Do(func() {
		for _, candidate := range []string{"python3", "python"} {
			if path, err := exec.LookPath(candidate); err == nil {
				e.pythonPath = path
				return
			}
		}
		e.pythonErr = fmt.Errorf("no python interpreter found on PATH")
	})
	return e.pythonPath, e.pythonErr
}
