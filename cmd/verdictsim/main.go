// Package main provides the simulator binary: it loads content, runs the
// level campaign with a scripted player, and logs the outcome.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/verdict/internal/config"
	"github.com/cory-johannsen/verdict/internal/game/dice"
	"github.com/cory-johannsen/verdict/internal/game/entity"
	"github.com/cory-johannsen/verdict/internal/game/outcome"
	"github.com/cory-johannsen/verdict/internal/game/presenter"
	"github.com/cory-johannsen/verdict/internal/game/prompt"
	"github.com/cory-johannsen/verdict/internal/game/world"
	"github.com/cory-johannsen/verdict/internal/gameserver"
	"github.com/cory-johannsen/verdict/internal/observability"
	"github.com/cory-johannsen/verdict/internal/scripting"
	"github.com/cory-johannsen/verdict/internal/server"
)

const deciderScope = "decider"

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	animate := flag.Bool("animate", true, "log animation triggers at debug level")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "verdictsim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source
	if cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(cfg.Simulation.Seed)
	} else {
		src = dice.NewCryptoSource()
	}

	// Load content
	contentStart := time.Now()
	templates, err := entity.LoadTemplates(cfg.Content.TemplatesDir)
	if err != nil {
		logger.Fatal("loading templates", zap.Error(err))
	}
	levels, err := world.LoadLevelsFromDir(cfg.Content.LevelsDir)
	if err != nil {
		logger.Fatal("loading levels", zap.Error(err))
	}
	campaign, err := world.NewCampaign(levels, cfg.Content.StartLevel)
	if err != nil {
		logger.Fatal("building campaign", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("templates", len(templates)),
		zap.Int("levels", campaign.Len()),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Scripting
	scriptMgr := scripting.NewManager(src, logger)
	defer scriptMgr.Close()

	prompts := prompt.NewQueue(cfg.Prompts(), logger)
	mediator := outcome.NewMediator(cfg.Outcome(), prompts, logger)
	defer mediator.Close()

	var decider gameserver.Decider
	if cfg.Content.DeciderScriptDir != "" {
		if err := scriptMgr.Load(deciderScope, cfg.Content.DeciderScriptDir, cfg.Content.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading decider scripts", zap.Error(err))
		}
		if !scriptMgr.HasHook(deciderScope, prompt.DecideHook) {
			logger.Fatal("decider scripts define no decide hook", zap.String("dir", cfg.Content.DeciderScriptDir))
		}
		decider = prompt.NewLuaDecider(scriptMgr, deciderScope, mediator, logger)
	}

	var animators world.AnimatorFunc
	if *animate {
		animators = func(e *entity.Entity) presenter.Animator {
			return presenter.LogAnimator{Logger: logger.With(zap.String("entity", e.Name), zap.String("entity_id", e.ID))}
		}
	}

	w, err := world.New(cfg.World(), mediator, prompts, src, animators, logger)
	if err != nil {
		logger.Fatal("creating world", zap.Error(err))
	}

	runner, err := gameserver.NewRunner(cfg.Runner(), w, campaign, templates, prompts, decider,
		gameserver.NewPilot(cfg.Pilots()), logger)
	if err != nil {
		logger.Fatal("creating runner", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("simulation", runner)

	logger.Info("simulator ready",
		zap.String("start_level", cfg.Content.StartLevel),
		zap.Duration("tick", cfg.Simulation.TickInterval()),
		zap.Duration("startup", time.Since(start)),
	)

	runErr := lifecycle.Run(context.Background())

	res := runner.Result()
	logger.Info("simulation result",
		zap.Int("ticks", res.Ticks),
		zap.String("level", res.Level),
		zap.Int("levels_cleared", res.LevelsCleared),
		zap.Int("decisions", res.Decisions),
		zap.Bool("completed", res.Completed),
		zap.Bool("defeated", res.Defeated),
		zap.Int("red", res.Meter.Red),
		zap.Int("white", res.Meter.White),
		zap.Any("persisted", mediator.Persisted()),
	)
	if runErr != nil {
		logger.Fatal("simulation failed", zap.Error(runErr))
	}
}
