package handlers

import (
	"fmt"
	"strconv"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/orchestration"
)

// Plan prints the phases a setup run would execute, in order, with their
// failure policy. It does not connect to the target.
func Plan(configPath, projectRoot string) error {
	cfg, err := resolveConfig(configPath, projectRoot)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout)
	printHeader(stdout, "jftf-setup plan")
	fmt.Fprintf(stdout, "  Target:       %s\n", targetName(cfg))
	fmt.Fprintf(stdout, "  Project root: %s\n", cfg.ProjectRoot)
	fmt.Fprintf(stdout, "  Schema:       %s (dropped and recreated)\n", cfg.Database.Schema)
	fmt.Fprintln(stdout)

	for i, phase := range orchestration.Plan(cfg) {
		name := fmt.Sprintf("%d. %s", i+1, phase.Name)
		if !phase.Enabled {
			printRow(stdout, dimStyle.Render(skipMark), name, dimStyle.Render("disabled"))
			continue
		}
		indicator := readyStyle.Render(checkMark)
		if phase.OnFailure == config.FailureWarn {
			indicator = warningStyle.Render(warnMark)
		}
		printRow(stdout, indicator, name, "on failure: "+string(phase.OnFailure))
	}
	fmt.Fprintln(stdout)
	return nil
}

func targetName(cfg *config.Config) string {
	if cfg.Target.Kind != config.TargetSSH {
		return "localhost"
	}
	port := cfg.Target.Port
	if port == 0 {
		port = 22
	}
	return cfg.Target.User + "@" + cfg.Target.Host + ":" + strconv.Itoa(port)
}
