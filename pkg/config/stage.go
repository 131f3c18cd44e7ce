package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/dmftio/bethe/pkg/adapters/process"
	"github.com/dmftio/bethe/pkg/domain"
)

// StageConfig declares one external solver stage. Options is a free-form
// map so stage-specific knobs can live next to the command without schema
// churn; it is decoded into StageOptions at build time.
type StageConfig struct {
	Name    string         `yaml:"name"`
	Command string         `yaml:"command"`
	Args    []string       `yaml:"args"`
	Options map[string]any `yaml:"options"`
}

// StageOptions are the recognized per-stage knobs.
type StageOptions struct {
	// LogFile receives the combined stage output (appended).
	LogFile string `mapstructure:"log_file"`
	// Env entries are appended to the inherited environment.
	Env map[string]string `mapstructure:"env"`
	// Expects lists files that must exist after a successful run.
	Expects []string `mapstructure:"expects"`
}

// Validate checks the stage declaration, including that its options decode.
func (s StageConfig) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: stage name is required", domain.ErrConfiguration)
	}
	if s.Command == "" {
		return fmt.Errorf("%w: stage %s has no command", domain.ErrConfiguration, s.Name)
	}
	if _, err := s.DecodeOptions(); err != nil {
		return err
	}
	return nil
}

// DecodeOptions decodes the free-form options map.
func (s StageConfig) DecodeOptions() (StageOptions, error) {
	var opts StageOptions
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &opts,
		ErrorUnused: true,
	})
	if err != nil {
		return opts, fmt.Errorf("failed to build options decoder: %w", err)
	}
	if err := dec.Decode(s.Options); err != nil {
		return opts, fmt.Errorf("%w: stage %s options: %v", domain.ErrConfiguration, s.Name, err)
	}
	return opts, nil
}

// PipelineStages converts the declarations into process pipeline stages.
func (c SolverConfig) PipelineStages() ([]process.Stage, error) {
	out := make([]process.Stage, 0, len(c.Stages))
	for _, sc := range c.Stages {
		opts, err := sc.DecodeOptions()
		if err != nil {
			return nil, err
		}
		out = append(out, process.Stage{
			Name:    sc.Name,
			Command: sc.Command,
			Args:    sc.Args,
			Env:     opts.Env,
			LogFile: opts.LogFile,
			Expects: opts.Expects,
		})
	}
	return out, nil
}
