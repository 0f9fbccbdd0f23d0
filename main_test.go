package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-universe/model"
	"github.com/sheikhrachel/go-gol-universe/seeding"
	"github.com/sheikhrachel/go-gol-universe/utils"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"width": 12, "height": 9, "rule": "34/34"}`), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	config, err := loadConfig([]string{"-config", path, "-width", "40", "-p", "0.5", "-frame", "20ms"}, discard)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if config.Width != 40 || config.Height != 9 || config.Rule != "34/34" {
		t.Fatalf("unexpected config %+v", config)
	}
	if config.AliveProbability != 0.5 || config.FrameRate != 20*time.Millisecond {
		t.Fatalf("flags not applied: %+v", config)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := loadConfig([]string{"-config", filepath.Join(t.TempDir(), "nope.json"), "-seed", "7"}, discard)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	want := utils.DefaultConfig()
	want.Seed = 7
	if config != want {
		t.Fatalf("config = %+v, expected %+v", config, want)
	}
}

func TestLoadConfigRejectsBadRenderer(t *testing.T) {
	if _, err := loadConfig([]string{"-config", filepath.Join(t.TempDir(), "nope.json"), "-renderer", "gif"}, discard); err == nil {
		t.Fatal("expected an invalid renderer to be rejected")
	}
}

func TestNewGridFromConfig(t *testing.T) {
	config := utils.DefaultConfig()
	config.Width, config.Height = 5, 4
	config.AliveGlyph = "#"

	grid, err := newGrid(config, seeding.NewPattern([]string{"*"}, '*'), model.NewLogSink(discard))
	if err != nil {
		t.Fatalf("newGrid: %v", err)
	}
	rows := grid.Render()
	if len(rows) != 4 || rows[0] != "#...." {
		t.Fatalf("rows = %q", rows)
	}

	config.Rule = "bogus"
	if _, err = newGrid(config, seeding.NewBernoulli(1), nil); err == nil {
		t.Fatal("expected a malformed rule to fail")
	}
}

func TestUpdateGameStateDetectsStagnation(t *testing.T) {
	config := utils.DefaultConfig()
	config.Width, config.Height = 6, 6
	block := seeding.NewPattern(seeding.Offset([]string{"**", "**"}, 2, 2), '*')
	grid, err := newGrid(config, block, nil)
	if err != nil {
		t.Fatalf("newGrid: %v", err)
	}

	stats := utils.NewStats()
	var gs gameStatus
	for gen := range 4 {
		gs = updateGameState(grid, gen, time.Now(), stats)
		if err = stepGrid(grid, config); err != nil {
			t.Fatalf("stepGrid: %v", err)
		}
	}
	if !gs.isStagnant || gs.status != "Stagnant" || gs.livingCells != 4 {
		t.Fatalf("unexpected status %+v", gs)
	}

	lines := statusLines(grid, gs, stats, 4)
	if !strings.Contains(strings.Join(lines, "\n"), "Rule: 23/3 | Living: 4") {
		t.Fatalf("status lines %q", lines)
	}
}

func TestCheckRestartConditions(t *testing.T) {
	config := utils.DefaultConfig()
	if restart, reason := checkRestartConditions(0, 0, 1, config); !restart || reason != "extinction" {
		t.Fatalf("extinction: %v %q", restart, reason)
	}
	if restart, _ := checkRestartConditions(10, config.StagnationThreshold, 1, config); !restart {
		t.Fatal("expected restart on stagnation")
	}
	if restart, _ := checkRestartConditions(10, 0, 1, config); restart {
		t.Fatal("unexpected restart")
	}
	if restart, reason := checkRestartConditions(10, 0, config.RefreshInterval, config); !restart || reason != "periodic refresh" {
		t.Fatalf("refresh: %v %q", restart, reason)
	}
	if restart, _ := checkRestartConditions(10, 0, 0, config); restart {
		t.Fatal("generation 0 should not trigger a refresh")
	}
	config.RefreshInterval = 0
	if restart, _ := checkRestartConditions(10, 0, 200, config); restart {
		t.Fatal("a zero refresh interval should never refresh")
	}
}

func TestApplyFlagsReportsBadValue(t *testing.T) {
	fs := flag.NewFlagSet("gol", flag.ContinueOnError)
	fs.String("width", "", "")
	if err := fs.Parse([]string{"-width", "wide"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	config := utils.DefaultConfig()
	overlay := flag.NewFlagSet("overlay", flag.ContinueOnError)
	overlay.SetOutput(io.Discard)
	bindFlags(overlay, &config)

	err := applyFlags(fs, overlay)
	if err == nil || !strings.Contains(err.Error(), "[loadConfig] failed to apply flag -width") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunRejectsMalformedRule(t *testing.T) {
	config := utils.DefaultConfig()
	config.Rule = "9/3"

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), config, &stdout, &stderr)
	if !errors.Is(err, utils.ErrInvalidRuleFormat) {
		t.Fatalf("err = %v, expected ErrInvalidRuleFormat", err)
	}

	var logs bytes.Buffer
	logError(slog.New(slog.NewTextHandler(&logs, nil)), "simulation failed", err)
	out := logs.String()
	if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected a single log line, got %q", out)
	}
	if strings.Contains(out, `\n`) || strings.Contains(out, "utils.init") {
		t.Fatalf("log line carries a stack trace: %q", out)
	}
	if !strings.Contains(out, "invalid rule format") {
		t.Fatalf("log line lacks the cause: %q", out)
	}
}

func TestRunStopsAtMaxGenerations(t *testing.T) {
	config := utils.DefaultConfig()
	config.Width, config.Height = 4, 3
	config.AliveProbability = 0.5
	config.Seed = 3
	config.MaxGenerations = 2
	config.FrameRate = 0
	config.AutoRestart = false

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), config, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	for _, gen := range []string{"Gen: 0 ", "Gen: 1 ", "Gen: 2 "} {
		if !strings.Contains(out, gen) {
			t.Fatalf("output lacks %q:\n%s", gen, out)
		}
	}
	if strings.Contains(out, "Gen: 3 ") {
		t.Fatalf("ran past the generation limit:\n%s", out)
	}
	if !strings.Contains(stderr.String(), "reached maximum generations") {
		t.Fatalf("logs = %q", stderr.String())
	}
}

func TestRunStopsWhenContextDone(t *testing.T) {
	config := utils.DefaultConfig()
	config.Width, config.Height = 4, 4
	config.MaxGenerations = 0
	config.FrameRate = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	if err := run(ctx, config, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "shutting down") {
		t.Fatalf("logs = %q", stderr.String())
	}
}

// countingWriter records how many times it was written to
type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestRunHoldsLogsWhileScreenIsOpen(t *testing.T) {
	defer func(prev func(rune) (*model.ScreenRenderer, error)) { openScreen = prev }(openScreen)
	openScreen = func(alive rune) (*model.ScreenRenderer, error) {
		return model.NewScreenRendererOn(tcell.NewSimulationScreen(""), alive)
	}

	config := utils.DefaultConfig()
	config.Renderer = utils.RendererScreen
	config.Width, config.Height = 4, 4
	config.AliveProbability = 0 // extinct at once, so the loop logs a restart
	config.MaxGenerations = 1
	config.FrameRate = 0

	var stdout bytes.Buffer
	stderr := &countingWriter{}
	if err := run(context.Background(), config, &stdout, stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	if stdout.Len() != 0 {
		t.Fatalf("screen mode wrote to stdout: %q", stdout.String())
	}
	logs := stderr.String()
	if !strings.Contains(logs, "restarting") || !strings.Contains(logs, "reached maximum generations") {
		t.Fatalf("logs = %q", logs)
	}
	if stderr.writes != 1 {
		t.Fatalf("logs were written %d times, expected one flush after the screen closed", stderr.writes)
	}
}
