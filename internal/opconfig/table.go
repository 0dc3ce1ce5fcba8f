package opconfig

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed configs.yaml
var builtinConfigs []byte

// Table maps external operator names to their configurations.
type Table struct {
	configs map[string]*Config
}

// Lookup returns the configuration for an operator name, ok=false when the
// name has no entry. A miss carries no further diagnosis: the caller cannot
// distinguish an unregistered operator from a misspelled name.
func (t *Table) Lookup(name string) (*Config, bool) {
	c, ok := t.configs[name]
	return c, ok
}

// Names returns all registered operator names.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.configs))
	for name := range t.configs {
		names = append(names, name)
	}
	return names
}

// Builtin parses the embedded operator table.
// The embedded table is part of the build; a parse failure is a packaging
// error and panics.
func Builtin() *Table {
	t, err := Parse(builtinConfigs)
	if err != nil {
		panic(fmt.Sprintf("opconfig: embedded table invalid: %v", err))
	}
	return t
}

// YAML document layout. Variant values stay as yaml.Node until the declared
// kind selects the decode target.
type yamlDoc struct {
	Operators []yamlOperator `yaml:"operators"`
}

type yamlOperator struct {
	Name                 string                 `yaml:"name"`
	BackwardName         string                 `yaml:"backward_name"`
	ForwardArgs          []yamlArgument         `yaml:"forward_args"`
	BackwardArgs         []yamlArgument         `yaml:"backward_args"`
	BackwardInputSources []yamlBackwardSource   `yaml:"backward_input_sources"`
	OutputTypes          []yamlOutputType       `yaml:"output_types"`
	GradientInputIndices []int                  `yaml:"gradient_input_indices"`
	Defaults             map[string]yamlVariant `yaml:"defaults"`
}

type yamlArgument struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

type yamlBackwardSource struct {
	Source string `yaml:"source"`
	Index  int    `yaml:"index"`
}

type yamlOutputType struct {
	Rule  string `yaml:"rule"`
	Value int    `yaml:"value"`
}

type yamlVariant struct {
	Kind  string    `yaml:"kind"`
	Value yaml.Node `yaml:"value"`
}

// Parse reads an operator table from YAML.
func Parse(data []byte) (*Table, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("opconfig: %w", err)
	}

	t := &Table{configs: make(map[string]*Config, len(doc.Operators))}
	for _, op := range doc.Operators {
		if op.Name == "" {
			return nil, fmt.Errorf("opconfig: operator entry without a name")
		}
		if _, dup := t.configs[op.Name]; dup {
			return nil, fmt.Errorf("opconfig: duplicate operator %q", op.Name)
		}

		cfg, err := buildConfig(op)
		if err != nil {
			return nil, fmt.Errorf("opconfig: operator %q: %w", op.Name, err)
		}
		t.configs[op.Name] = cfg
	}
	return t, nil
}

func buildConfig(op yamlOperator) (*Config, error) {
	cfg := &Config{
		Name:                 op.Name,
		BackwardName:         op.BackwardName,
		GradientInputIndices: op.GradientInputIndices,
		Defaults:             make(map[string]Variant, len(op.Defaults)),
	}

	var err error
	if cfg.ForwardArgs, err = buildArguments(op.ForwardArgs); err != nil {
		return nil, err
	}
	if cfg.BackwardArgs, err = buildArguments(op.BackwardArgs); err != nil {
		return nil, err
	}

	for _, src := range op.BackwardInputSources {
		kind, err := parseBackwardSourceKind(src.Source)
		if err != nil {
			return nil, err
		}
		cfg.BackwardInputSources = append(cfg.BackwardInputSources, BackwardSource{Kind: kind, Index: src.Index})
	}

	for _, ot := range op.OutputTypes {
		kind, err := parseTypeInferKind(ot.Rule)
		if err != nil {
			return nil, err
		}
		cfg.OutputTypeRules = append(cfg.OutputTypeRules, OutputTypeRule{Kind: kind, Value: ot.Value})
	}

	declared := make(map[string]bool, len(cfg.ForwardArgs))
	for _, arg := range cfg.ForwardArgs {
		declared[arg.Name] = true
	}
	for name, raw := range op.Defaults {
		if !declared[name] {
			return nil, fmt.Errorf("default for undeclared argument %q", name)
		}
		v, err := buildVariant(raw)
		if err != nil {
			return nil, fmt.Errorf("default %q: %w", name, err)
		}
		cfg.Defaults[name] = v
	}

	return cfg, nil
}

func buildArguments(raw []yamlArgument) ([]Argument, error) {
	args := make([]Argument, 0, len(raw))
	for _, a := range raw {
		kind, err := parseArgKind(a.Kind)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", a.Name, err)
		}
		if a.Name == "" {
			return nil, fmt.Errorf("argument without a name")
		}
		args = append(args, Argument{Kind: kind, Name: a.Name})
	}
	return args, nil
}

func buildVariant(raw yamlVariant) (Variant, error) {
	kind, err := parseArgKind(raw.Kind)
	if err != nil {
		return Variant{}, err
	}

	switch kind {
	case ArgInt:
		var v int64
		if err := raw.Value.Decode(&v); err != nil {
			return Variant{}, err
		}
		return IntVariant(v), nil
	case ArgFloat:
		var v float64
		if err := raw.Value.Decode(&v); err != nil {
			return Variant{}, err
		}
		return FloatVariant(v), nil
	case ArgBool:
		var v bool
		if err := raw.Value.Decode(&v); err != nil {
			return Variant{}, err
		}
		return BoolVariant(v), nil
	case ArgIntList:
		var v []int64
		if err := raw.Value.Decode(&v); err != nil {
			return Variant{}, err
		}
		return IntListVariant(v), nil
	case ArgFloatList:
		var v []float64
		if err := raw.Value.Decode(&v); err != nil {
			return Variant{}, err
		}
		return FloatListVariant(v), nil
	case ArgBoolList:
		var v []bool
		if err := raw.Value.Decode(&v); err != nil {
			return Variant{}, err
		}
		return BoolListVariant(v), nil
	default:
		return Variant{}, fmt.Errorf("kind %s cannot carry a default value", kind)
	}
}
