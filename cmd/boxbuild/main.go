package main

import (
	"fmt"
	"os"

	"github.com/boxbuild/boxbuild/internal/logger"
	"github.com/boxbuild/boxbuild/internal/plugin"
)

func main() {
	log, err := logger.New(logger.Options{Level: "info", HumanReadable: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	registry := plugin.NewRegistry(log)
	if err := RegisterPlugins(registry); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare plugins: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(registry).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
