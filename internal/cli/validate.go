package cli

import (
	"fmt"
	"os"

	"github.com/dmftio/bethe/pkg/config"
)

// ExecuteValidate loads and validates a configuration file, then prints a
// short summary of the resulting run plan.
func ExecuteValidate(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	stages, err := cfg.Solver.PipelineStages()
	if err != nil {
		return err
	}

	fmt.Printf("configuration OK (%s)\n", configPath)
	fmt.Printf("  workdir:   %s\n", cfg.Run.WorkDir)
	fmt.Printf("  loop:      max_iter=%d eps_delta=%g\n", cfg.Run.MaxIter, cfg.Run.EpsDelta)
	fmt.Printf("  mixing:    %s alpha=%g\n", cfg.Mixing.Method, cfg.Mixing.Alpha)
	fmt.Printf("  chempot:   n_target=%g T=%g bracket=[%g, %g]\n",
		cfg.ChemPot.Target, cfg.ChemPot.Temperature, cfg.ChemPot.MuMin, cfg.ChemPot.MuMax)
	fmt.Printf("  grid:      [%g, %g] x %d\n", cfg.Grid.OmegaMin, cfg.Grid.OmegaMax, cfg.Grid.Points)
	if len(stages) == 0 {
		fmt.Fprintln(os.Stderr, "warning: no solver stages configured, runs will fail")
	}
	for _, stage := range stages {
		fmt.Printf("  stage:     %s (%s)\n", stage.Name, stage.Command)
	}
	return nil
}
