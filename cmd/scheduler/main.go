// Scheduler batch CLI: solve one scenario from a JSON file and print
// the resulting schedule, without standing up the HTTP adapter.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/paiban/scheduler/internal/config"
	"github.com/paiban/scheduler/pkg/cpsolve"
	"github.com/paiban/scheduler/pkg/logger"
	"github.com/paiban/scheduler/pkg/model"
	"github.com/paiban/scheduler/pkg/scheduler"
)

// batchInput is the on-disk shape this CLI reads: a scenario plus the
// policy to solve it under. Both decode straight into the typed
// domain structs pkg/model exports — no portable-record indirection
// on the way in, since there is no prior Schedule to round-trip.
type batchInput struct {
	Scenario *model.BusinessScenario `json:"scenario"`
	Policy   model.SchedulingPolicy  `json:"policy"`
}

func main() {
	inputPath := flag.String("input", "", "path to a JSON file with {scenario, policy}")
	timeLimit := flag.Duration("time-limit", 30*time.Second, "solve time budget")
	alternative := flag.Bool("alternative", false, "solve once, then print a second alternative schedule")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Level: cfg.App.LogLevel, Format: "console"})

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: scheduler -input scenario.json")
		os.Exit(2)
	}

	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read input:", err)
		os.Exit(1)
	}

	var input batchInput
	if err := json.Unmarshal(raw, &input); err != nil {
		fmt.Fprintln(os.Stderr, "parse input:", err)
		os.Exit(1)
	}
	if input.Scenario == nil {
		fmt.Fprintln(os.Stderr, "input is missing a scenario")
		os.Exit(1)
	}

	engine, err := scheduler.NewEngineWithWeights(input.Scenario, func() cpsolve.Backend {
		return cpsolve.NewHighsBackend()
	}, cfg.Solver.Weights())
	if err != nil {
		fmt.Fprintln(os.Stderr, "build engine:", err)
		os.Exit(1)
	}

	limit := *timeLimit
	if limit <= 0 {
		limit = cfg.Solver.DefaultTimeLimit
	}

	schedule, err := engine.Solve(input.Policy, limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "solve:", err)
		os.Exit(1)
	}
	logger.Info().
		Bool("feasible", schedule.IsFeasible).
		Int("solution_index", schedule.SolutionIndex).
		Msg("solved")

	if *alternative {
		schedule, err = engine.SolveAlternative(input.Policy, limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "solve alternative:", err)
			os.Exit(1)
		}
		logger.Info().Int("solution_index", schedule.SolutionIndex).Msg("alternative solved")
	}

	out, err := json.MarshalIndent(schedule.ToRecord(), "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal schedule:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
