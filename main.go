package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sheikhrachel/go-gol-universe/model"
	"github.com/sheikhrachel/go-gol-universe/utils"
)

// openScreen creates the full-screen renderer
var openScreen = model.NewScreenRenderer

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	config, err := loadConfig(os.Args[1:], logger)
	if err != nil {
		logError(logger, "failed to load configuration", err)
		os.Exit(2)
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, config, os.Stdout, os.Stderr); err != nil {
		logError(logger, "simulation failed", err)
		stop()
		os.Exit(1)
	}
}

// logError logs err on a single line, without the stack traces pkg/errors attaches
func logError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("err", err.Error()))
}

// run drives the simulation until ctx is done, the user quits or the generation limit is reached.
// Frames go to stdout in text mode, logs go to stderr.
func run(ctx context.Context, config utils.Config, stdout, stderr io.Writer) error {
	var (
		logs   = stderr
		held   bytes.Buffer
		screen *model.ScreenRenderer
	)
	if config.Renderer == utils.RendererScreen {
		// tcell owns the terminal, hold logs until it is released
		logs = &held
		defer func() {
			if screen != nil {
				screen.Close()
			}
			_, _ = io.Copy(stderr, &held)
		}()
	}

	var (
		logger = slog.New(slog.NewTextHandler(logs, nil))
		sink   = model.NewLogSink(logger)
		seeder = newSeeder(config)
	)

	grid, err := newGrid(config, seeder, sink)
	if err != nil {
		return err
	}

	var (
		renderer model.Renderer
		quit     <-chan struct{}
	)
	switch config.Renderer {
	case utils.RendererScreen:
		alive, _ := config.Glyphs()
		if screen, err = openScreen(alive); err != nil {
			return err
		}
		renderer, quit = screen, screen.Quit()
	default:
		renderer = model.NewTerminalRenderer(stdout)
	}

	var (
		stats            = utils.NewStats()
		totalGenerations = 0
		stagnantCount    = 0
		lastFrameTime    = time.Now()
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", slog.Int("generations", totalGenerations),
				slog.Float64("avg_population", stats.AveragePopulation))
			return nil
		case <-quit:
			logger.Info("quit requested", slog.Int("generations", totalGenerations))
			return nil
		default:
		}

		frameStart := time.Now()
		gs := updateGameState(grid, totalGenerations, lastFrameTime, stats)
		lastFrameTime = frameStart

		if gs.isStagnant {
			stagnantCount++
		} else {
			stagnantCount = 0
		}

		renderer.Clear()
		frame := append(grid.Render(), statusLines(grid, gs, stats, totalGenerations)...)
		if err = renderer.Display(frame); err != nil {
			return err
		}

		if config.MaxGenerations > 0 && totalGenerations >= config.MaxGenerations {
			logger.Info("reached maximum generations", slog.Int("limit", config.MaxGenerations))
			return nil
		}

		if restart, reason := checkRestartConditions(gs.livingCells, stagnantCount, grid.Generation(), config); restart && config.AutoRestart {
			logger.Info("restarting", slog.String("reason", reason), slog.Int("generation", totalGenerations))
			if grid, err = restartGame(config, seeder, sink, logger); err != nil {
				return err
			}
			stagnantCount = 0
		}

		if err = stepGrid(grid, config); err != nil {
			return err
		}
		totalGenerations++

		time.Sleep(config.FrameRate)
	}
}
