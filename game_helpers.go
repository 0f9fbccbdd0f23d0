package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-universe/model"
	"github.com/sheikhrachel/go-gol-universe/rules"
	"github.com/sheikhrachel/go-gol-universe/seeding"
	"github.com/sheikhrachel/go-gol-universe/utils"
)

const defaultConfigFile = "config.json"

// loadConfig reads the JSON config named by -config, falling back to defaults when the
// file does not exist, then applies any flags given explicitly in args on top of it
func loadConfig(args []string, logger *slog.Logger) (utils.Config, error) {
	var (
		fs         = flag.NewFlagSet("gol", flag.ContinueOnError)
		configPath = fs.String("config", defaultConfigFile, "JSON configuration file")
		parsed     = utils.DefaultConfig()
	)
	bindFlags(fs, &parsed)
	if err := fs.Parse(args); err != nil {
		return parsed, errors.Wrap(err, "[loadConfig] failed to parse flags")
	}

	config, err := utils.LoadConfig(*configPath)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			return config, err
		}
		logger.Info("using default configuration", slog.String("missing", *configPath))
		config = utils.DefaultConfig()
	}

	overlay := flag.NewFlagSet("overlay", flag.ContinueOnError)
	bindFlags(overlay, &config)
	if err = applyFlags(fs, overlay); err != nil {
		return config, err
	}

	return config, config.Validate()
}

// applyFlags copies every flag explicitly set on fs onto the matching flag of overlay
func applyFlags(fs, overlay *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil || overlay.Lookup(f.Name) == nil {
			return
		}
		if setErr := overlay.Set(f.Name, f.Value.String()); setErr != nil {
			err = errors.Wrapf(setErr, "[loadConfig] failed to apply flag -%s", f.Name)
		}
	})
	return err
}

// bindFlags registers command line overrides for config on fs
func bindFlags(fs *flag.FlagSet, config *utils.Config) {
	fs.StringVar(&config.Rule, "rule", config.Rule, "rule in survive/birth notation")
	fs.IntVar(&config.Width, "width", config.Width, "visible grid width")
	fs.IntVar(&config.Height, "height", config.Height, "visible grid height")
	fs.Float64Var(&config.AliveProbability, "p", config.AliveProbability, "probability that a cell starts alive")
	fs.IntVar(&config.MaxGenerations, "generations", config.MaxGenerations, "stop after this many generations, 0 runs forever")
	fs.Uint64Var(&config.Seed, "seed", config.Seed, "random seed, 0 seeds from the clock")
	fs.StringVar(&config.Renderer, "renderer", config.Renderer, "print sink: text or screen")
	fs.BoolVar(&config.UseParallel, "parallel", config.UseParallel, "step rows in parallel")
	fs.IntVar(&config.RefreshInterval, "refresh", config.RefreshInterval, "restart every n generations, 0 never")
	fs.DurationVar(&config.FrameRate, "frame", config.FrameRate, "delay between generations")
}

// newSeeder returns the random initializer for a run
func newSeeder(config utils.Config) model.Seeder {
	if config.Seed == 0 {
		return seeding.NewBernoulliFromTime()
	}
	return seeding.NewBernoulli(config.Seed)
}

// newGrid builds a freshly seeded grid from config
func newGrid(config utils.Config, seeder model.Seeder, sink model.DiagnosticSink) (*model.Grid, error) {
	rule, err := rules.Parse(config.Rule)
	if err != nil {
		return nil, errors.Wrap(err, "[newGrid] failed to parse rule")
	}

	alive, dead := config.Glyphs()
	grid, err := model.NewGrid(model.GridConfig{
		Height:           config.Height,
		Width:            config.Width,
		AliveProbability: config.AliveProbability,
		AliveGlyph:       alive,
		DeadGlyph:        dead,
	}, rule, seeder, sink)
	if err != nil {
		return nil, errors.Wrap(err, "[newGrid] failed to build grid")
	}
	return grid, nil
}

// stepGrid advances the grid one generation the way config asks
func stepGrid(grid *model.Grid, config utils.Config) error {
	if config.UseParallel {
		return grid.StepParallel(0)
	}
	return grid.Step()
}

// gameStatus is the per-frame summary shown under the grid
type gameStatus struct {
	livingCells int
	density     float64
	status      string
	isStagnant  bool
}

// updateGameState updates the game state and returns status information
func updateGameState(
	grid *model.Grid,
	totalGenerations int,
	lastFrameTime time.Time,
	stats *utils.Stats,
) gameStatus {
	livingCells := grid.CountLivingCells()
	density := float64(livingCells) / float64(grid.Width()*grid.Height()) * 100

	// Update performance stats
	stats.Update(totalGenerations, livingCells, time.Since(lastFrameTime))

	// Check against history before recording the current generation
	isStagnant := grid.IsStagnant()
	grid.UpdateHistory()

	status := "Active"
	if isStagnant {
		status = "Stagnant"
	}
	if livingCells == 0 {
		status = "Extinct"
	}

	return gameStatus{
		livingCells: livingCells,
		density:     density,
		status:      status,
		isStagnant:  isStagnant,
	}
}

// statusLines formats the current game status shown under the grid
func statusLines(grid *model.Grid, gs gameStatus, stats *utils.Stats, totalGenerations int) []string {
	lines := []string{
		"",
		fmt.Sprintf("Gen: %d | Rule: %s | Living: %d | Density: %.1f%% | Status: %s",
			totalGenerations, grid.Rule(), gs.livingCells, gs.density, gs.status),
		fmt.Sprintf("Performance: %.1f gen/sec | Avg Pop: %.1f | Runtime: %.1fs",
			stats.GenerationsPerSecond, stats.AveragePopulation, stats.Runtime().Seconds()),
	}
	if totalGenerations > grid.Generation() {
		lines = append(lines, fmt.Sprintf("Generations since restart: %d", grid.Generation()))
	}
	return lines
}

// checkRestartConditions determines if the game should restart. generation counts
// steps since the last restart.
func checkRestartConditions(livingCells, stagnantCount, generation int, config utils.Config) (bool, string) {
	if livingCells == 0 {
		return true, "extinction"
	}
	if stagnantCount >= config.StagnationThreshold {
		return true, "stagnation detected"
	}
	if config.RefreshInterval > 0 && generation > 0 && generation%config.RefreshInterval == 0 {
		return true, "periodic refresh"
	}
	return false, ""
}

// restartGame builds a freshly seeded grid
func restartGame(config utils.Config, seeder model.Seeder, sink model.DiagnosticSink, logger *slog.Logger) (*model.Grid, error) {
	grid, err := newGrid(config, seeder, sink)
	if err != nil {
		return nil, errors.Wrap(err, "[restartGame] failed to rebuild grid")
	}
	logger.Info("new grid seeded", slog.Int("living_cells", grid.CountLivingCells()))
	return grid, nil
}
