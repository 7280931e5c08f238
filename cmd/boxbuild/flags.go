package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func validateRunOptions(opts runOptions) error {
	if err := validateConfigPath(opts.ConfigPath); err != nil {
		return err
	}

	if opts.WorkDir != "" {
		abs, err := filepath.Abs(opts.WorkDir)
		if err != nil {
			return fmt.Errorf("resolve workspace path: %w", err)
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return fmt.Errorf("workspace path %s is not a directory", abs)
		}
	}

	if opts.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	return nil
}

func validateConfigPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("pipeline file is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve pipeline path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("pipeline file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("pipeline path %s is a directory", abs)
	}

	return nil
}
