package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// Config holds all configuration for the application
type Config struct {
	Game        GameConfig        `mapstructure:"game"`
	Engine      EngineConfig      `mapstructure:"engine"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	AgentServer AgentServerConfig `mapstructure:"agent_server"`
}

// GameConfig holds the rule variant and seating of a game
type GameConfig struct {
	MaxTurns       int      `mapstructure:"max_turns"`
	AdvancedCombat bool     `mapstructure:"advanced_combat"`
	Factions       []string `mapstructure:"factions"`
	// Seed drives every shuffle; 0 picks one from the clock
	Seed int64 `mapstructure:"seed"`
}

// EngineConfig holds orchestrator limits
type EngineConfig struct {
	MaxSteps       int `mapstructure:"max_steps"`
	AgentTimeoutMs int `mapstructure:"agent_timeout_ms"`
	// Agent selects who answers decisions: heuristic, pass or remote
	Agent string `mapstructure:"agent"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// EventLevel is the level game events are logged at
	EventLevel string `mapstructure:"event_level"`
}

// AgentServerConfig holds the decision service listener and the address
// remote agents are dialled at
type AgentServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Address string `mapstructure:"address"`
}

// Agent kinds accepted by engine.agent
const (
	AgentHeuristic = "heuristic"
	AgentPass      = "pass"
	AgentRemote    = "remote"
)

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.max_turns", 10)
	v.SetDefault("game.advanced_combat", false)
	v.SetDefault("game.factions", []string{
		"atreides", "bene_gesserit", "emperor", "fremen", "harkonnen", "spacing_guild",
	})
	v.SetDefault("game.seed", 0)

	// Engine defaults
	v.SetDefault("engine.max_steps", 5000)
	v.SetDefault("engine.agent_timeout_ms", 5000)
	v.SetDefault("engine.agent", AgentHeuristic)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.event_level", "debug")

	// Agent server defaults
	v.SetDefault("agent_server.host", "0.0.0.0")
	v.SetDefault("agent_server.port", 50061)
	v.SetDefault("agent_server.address", "localhost:50061")
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/arrakis")
	}

	v.SetEnvPrefix("ARRAKIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing explicit file falls back to defaults as well
		if configPath == "" && !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(next); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg = next
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// ErrNotInitialized is returned by Set before Init has loaded a config
var ErrNotInitialized = errors.New("config not initialized")

// Set allows runtime config updates. The global config is replaced only
// when the updated values still decode.
func Set(key string, value interface{}) error {
	if v == nil || cfg == nil {
		return ErrNotInitialized
	}
	v.Set(key, value)
	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to apply %s: %w", key, err)
	}
	cfg = next
	return nil
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. A change that fails
// validation is ignored and the previous values stay in effect.
func WatchConfig(onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil || Validate(next) != nil {
			return
		}
		cfg = next
		if onChange != nil {
			onChange(next)
		}
	})
	v.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.MaxTurns < 1 {
		return fmt.Errorf("game.max_turns must be positive")
	}
	if _, err := c.Game.FactionList(); err != nil {
		return err
	}

	if c.Engine.MaxSteps <= 0 {
		return fmt.Errorf("engine.max_steps must be positive")
	}
	if c.Engine.AgentTimeoutMs < 0 {
		return fmt.Errorf("engine.agent_timeout_ms must be non-negative")
	}
	switch c.Engine.Agent {
	case AgentHeuristic, AgentPass, AgentRemote:
	default:
		return fmt.Errorf("engine.agent must be one of %s, %s or %s", AgentHeuristic, AgentPass, AgentRemote)
	}
	if c.Engine.Agent == AgentRemote && c.AgentServer.Address == "" {
		return fmt.Errorf("agent_server.address is required for remote agents")
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.Logging.EventLevel); err != nil {
		return fmt.Errorf("logging.event_level: %w", err)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json")
	}

	if c.AgentServer.Port <= 0 || c.AgentServer.Port > 65535 {
		return fmt.Errorf("agent_server.port must be between 1 and 65535")
	}
	return nil
}

// FactionList parses the configured factions
func (g GameConfig) FactionList() ([]core.Faction, error) {
	if len(g.Factions) < 2 {
		return nil, fmt.Errorf("game.factions needs at least 2 factions, got %d", len(g.Factions))
	}
	seen := make(map[core.Faction]bool, len(g.Factions))
	out := make([]core.Faction, 0, len(g.Factions))
	for _, name := range g.Factions {
		f, err := core.ParseFaction(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("game.factions: %w", err)
		}
		if seen[f] {
			return nil, fmt.Errorf("game.factions lists %s twice", f)
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// AgentTimeout returns the per-decision agent timeout
func (e EngineConfig) AgentTimeout() time.Duration {
	return time.Duration(e.AgentTimeoutMs) * time.Millisecond
}

// ListenAddress returns host:port for the decision service
func (a AgentServerConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}
