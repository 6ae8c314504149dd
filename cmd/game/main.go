package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/agent"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/config"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/engine"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/data"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events/subscribers"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	seed := flag.Int64("seed", 0, "Shuffle seed (0 to use config, then the clock)")
	maxTurns := flag.Int("turns", 0, "Number of turns (0 to use config default)")
	factions := flag.String("factions", "", "Comma separated factions (empty to use config default)")
	agentKind := flag.String("agent", "", "Agent kind: heuristic, pass or remote (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (empty to use config default)")
	dumpState := flag.Bool("dump-state", false, "Print the final game state as JSON")
	render := flag.Bool("render", false, "Print the final board")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	// Flags override config
	set := func(key string, value interface{}) {
		if err := config.Set(key, value); err != nil {
			log.Fatal().Err(err).Str("key", key).Msg("Failed to apply flag")
		}
	}
	if *seed != 0 {
		set("game.seed", *seed)
	}
	if *maxTurns > 0 {
		set("game.max_turns", *maxTurns)
	}
	if *factions != "" {
		set("game.factions", strings.Split(*factions, ","))
	}
	if *agentKind != "" {
		set("engine.agent", *agentKind)
	}
	if *logLevel != "" {
		set("logging.level", *logLevel)
	}
	cfg := config.Get()
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	setupLogging(cfg.Logging)

	gameSeed := cfg.Game.Seed
	if gameSeed == 0 {
		gameSeed = time.Now().UnixNano()
	}
	factionList, _ := cfg.Game.FactionList()
	shuffler := game.NewSeededShuffler(uint64(gameSeed))

	state, err := game.NewGame(data.Default(), game.Options{
		Factions: factionList,
		Variant: game.Variant{
			AdvancedCombat: cfg.Game.AdvancedCombat,
			MaxTurns:       cfg.Game.MaxTurns,
		},
	}, shuffler)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create game")
	}

	decider, closeAgent, err := newAgent(cfg, uint64(gameSeed))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create agent")
	}
	defer closeAgent()

	eng := engine.New(engine.Config{
		MaxSteps:     cfg.Engine.MaxSteps,
		AgentTimeout: cfg.Engine.AgentTimeout(),
		Shuffler:     shuffler,
		Logger:       log.Logger,
		Seed:         gameSeed,
	}, decider)

	eventLevel, _ := zerolog.ParseLevel(cfg.Logging.EventLevel)
	eventLogger := subscribers.NewLoggerSubscriber("event-logger", log.Logger, eventLevel)
	eventLogger.SetDevMode(cfg.Logging.Level == "trace")
	eng.EventBus().Subscribe(eventLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("game_id", state.GameID).
		Int64("seed", gameSeed).
		Str("agent", cfg.Engine.Agent).
		Int("max_turns", cfg.Game.MaxTurns).
		Msg("Starting simulation")

	start := time.Now()
	res := eng.Run(ctx, state)

	summary := log.Info()
	if res.Err != nil {
		summary = log.Error().Err(res.Err)
	}
	summary.
		Bool("complete", res.Complete).
		Interface("winners", res.Winners).
		Int("turn", res.State.Turn).
		Int("steps", res.Steps).
		Dur("duration", time.Since(start)).
		Msg("Simulation finished")

	for _, st := range res.State.Stats() {
		log.Info().
			Str("faction", string(st.Faction)).
			Int("spice", st.Spice).
			Int("on_board", st.OnBoard).
			Int("in_tanks", st.InTanks).
			Int("cards", st.Cards).
			Int("strongholds", len(st.Strongholds)).
			Msg("Final position")
	}

	if *render {
		os.Stdout.WriteString(game.Render(res.State, cfg.Logging.Format != "json"))
	}

	if *dumpState {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.State); err != nil {
			log.Error().Err(err).Msg("Failed to encode final state")
		}
	}

	if !res.Complete {
		os.Exit(1)
	}
}

// newAgent builds the configured decision maker and a function releasing it
func newAgent(cfg *config.Config, seed uint64) (agent.Agent, func(), error) {
	switch cfg.Engine.Agent {
	case config.AgentPass:
		return agent.PassAgent{}, func() {}, nil
	case config.AgentRemote:
		conn, err := agent.DialRemote(cfg.AgentServer.Address)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("address", cfg.AgentServer.Address).Msg("Using remote agent")
		return agent.NewRemoteAgent(conn, cfg.Engine.AgentTimeout()), func() { _ = conn.Close() }, nil
	default:
		return agent.NewHeuristicAgent(seed), func() {}, nil
	}
}

func setupLogging(c config.LoggingConfig) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.Format == "json" || os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}
