package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParsePipeline loads a pipeline file from disk, validates it, and returns
// the resulting model.
func ParsePipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, boxerrors.NewParseError(path, 0, err)
	}

	p, err := parsePipeline(data, path)
	if err != nil {
		return nil, err
	}

	if err := ValidatePipeline(p); err != nil {
		return nil, err
	}

	return p, nil
}

func parsePipeline(data []byte, path string) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, boxerrors.NewParseError(path, extractLine(err), err)
	}
	return &p, nil
}

// MarshalPipeline serializes the pipeline back to YAML. Step kind, name, and
// parameters survive a parse/serialize round-trip.
func MarshalPipeline(p *Pipeline) ([]byte, error) {
	return yaml.Marshal(p)
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
