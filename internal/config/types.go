package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Step kinds recognized by the loader. Anything else fails validation
// before execution begins.
const (
	KindVirtualenv = "virtualenv"
	KindPipInstall = "pip-install"
	KindScript     = "script"
	KindCheckout   = "git-checkout"
)

// Pipeline represents the full pipeline document.
type Pipeline struct {
	Box   string `yaml:"box" validate:"required,min=1,max=200"`
	Build Build  `yaml:"build"`
}

// Build holds the ordered step sequence. An empty sequence is valid: the
// environment is provisioned and the run succeeds with zero executed steps.
type Build struct {
	Steps []Step `yaml:"steps,omitempty" validate:"omitempty,dive"`
}

// Step describes one declared unit of pipeline work. On the wire it is a
// single-key mapping: the key is the step kind, the value holds the
// kind-specific parameters.
type Step struct {
	Kind string `yaml:"-"`

	Virtualenv *VirtualenvStep `yaml:"-"`
	PipInstall *PipInstallStep `yaml:"-"`
	Script     *ScriptStep     `yaml:"-"`
	Checkout   *CheckoutStep   `yaml:"-"`
}

// UnmarshalYAML decodes the single-key mapping form of a step. The key
// becomes the kind; the value is decoded into the kind-specific structure.
// Unknown kinds are kept so validation can report them with field context.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return fmt.Errorf("line %d: step must be a single-key mapping", value.Line)
	}

	keyNode := value.Content[0]
	paramsNode := value.Content[1]

	s.Kind = keyNode.Value
	s.Virtualenv = nil
	s.PipInstall = nil
	s.Script = nil
	s.Checkout = nil

	switch s.Kind {
	case KindVirtualenv:
		var venv VirtualenvStep
		if err := paramsNode.Decode(&venv); err != nil {
			return err
		}
		s.Virtualenv = &venv
	case KindPipInstall:
		var pip PipInstallStep
		if err := paramsNode.Decode(&pip); err != nil {
			return err
		}
		s.PipInstall = &pip
	case KindScript:
		var script ScriptStep
		if err := paramsNode.Decode(&script); err != nil {
			return err
		}
		s.Script = &script
	case KindCheckout:
		var checkout CheckoutStep
		if err := paramsNode.Decode(&checkout); err != nil {
			return err
		}
		s.Checkout = &checkout
	}

	return nil
}

// MarshalYAML re-emits the single-key mapping form so a parsed step list
// serializes back to the shape it was loaded from.
func (s Step) MarshalYAML() (any, error) {
	switch s.Kind {
	case KindVirtualenv:
		return map[string]*VirtualenvStep{s.Kind: s.Virtualenv}, nil
	case KindPipInstall:
		return map[string]*PipInstallStep{s.Kind: s.PipInstall}, nil
	case KindScript:
		return map[string]*ScriptStep{s.Kind: s.Script}, nil
	case KindCheckout:
		return map[string]*CheckoutStep{s.Kind: s.Checkout}, nil
	default:
		return nil, fmt.Errorf("unknown step kind %q", s.Kind)
	}
}

// ID returns the identifier used for logging and result correlation:
// the declared name when one exists, otherwise the kind.
func (s Step) ID() string {
	if s.Script != nil && strings.TrimSpace(s.Script.Name) != "" {
		return s.Script.Name
	}
	return s.Kind
}

// VirtualenvStep creates an isolated Python runtime sandbox.
type VirtualenvStep struct {
	Name string `yaml:"name" validate:"required,min=1,max=100"`
}

// PipInstallStep installs Python packages into the active sandbox.
type PipInstallStep struct {
	PackagesList string `yaml:"packages_list" validate:"required,min=1"`
}

// Packages splits the declared specifier list on spaces and commas. The
// individual specifiers are passed verbatim to the installer.
func (p PipInstallStep) Packages() []string {
	fields := strings.FieldsFunc(p.PackagesList, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ScriptStep runs multi-line shell text inside the provisioned environment.
type ScriptStep struct {
	Name string `yaml:"name,omitempty" validate:"omitempty,max=100"`
	Code string `yaml:"code" validate:"required,min=1"`
}

// CheckoutStep clones a git repository into the workspace before building.
type CheckoutStep struct {
	URL         string `yaml:"url" validate:"required"`
	Branch      string `yaml:"branch,omitempty"`
	Depth       int    `yaml:"depth,omitempty" validate:"omitempty,min=0"`
	Destination string `yaml:"destination,omitempty"`
}
