// Package config reads the repo daemon's TOML configuration file, in the
// same naoina/toml idiom go-ethereum uses for its own node config.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/naoina/toml"
)

// Node holds identity and storage settings for a single repo instance.
type Node struct {
	DbDir         string
	RepoPrefix    string
	SyncPrefix    string
	CommandPrefix string
	CreatorName   string
}

// Protocol holds the timing constants the engine reads at startup.
// Durations are decoded from Go duration strings ("4s", "200ms").
type Protocol struct {
	SyncInterestReexpress time.Duration
	DefaultInterestLife   time.Duration
	RecoveryRetransmit    time.Duration
	RetryTimes            int
	Pipeline              int
	// WidePipeline doubles Pipeline via params.Enable(RevisionWidePipeline)
	// rather than being folded into the Pipeline default directly, so a
	// deployment can flip it without knowing the multiplier.
	WidePipeline bool
}

// Config is the top-level shape of repo.toml.
type Config struct {
	Node     Node
	Protocol Protocol
}

// Default returns a Config populated with the design defaults from the
// protocol specification (spec.md §4.7).
func Default() Config {
	return Config{
		Protocol: Protocol{
			SyncInterestReexpress: 4 * time.Second,
			DefaultInterestLife:   4 * time.Second,
			RecoveryRetransmit:    200 * time.Millisecond,
			RetryTimes:            4,
			Pipeline:              3,
		},
	}
}

// Load reads and decodes the TOML file at path, filling in any zero
// fields from Default().
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.Protocol.SyncInterestReexpress == 0 {
		cfg.Protocol.SyncInterestReexpress = 4 * time.Second
	}
	if cfg.Protocol.DefaultInterestLife == 0 {
		cfg.Protocol.DefaultInterestLife = 4 * time.Second
	}
	if cfg.Protocol.RecoveryRetransmit == 0 {
		cfg.Protocol.RecoveryRetransmit = 200 * time.Millisecond
	}
	if cfg.Protocol.RetryTimes == 0 {
		cfg.Protocol.RetryTimes = 4
	}
	if cfg.Protocol.Pipeline == 0 {
		cfg.Protocol.Pipeline = 3
	}
	return cfg, nil
}
