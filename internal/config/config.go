// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blinklabs-io/node-gateway/nodeclient"
	"github.com/blinklabs-io/node-gateway/session"
	"gopkg.in/yaml.v3"
)

// DefaultMinCompatibleMajorVersion is the protocol major version of the Conway era
const DefaultMinCompatibleMajorVersion = 9

type NodeConfig struct {
	Network      string        `yaml:"network"`
	NetworkMagic uint32        `yaml:"networkMagic"`
	SocketPath   string        `yaml:"socketPath"`
	Address      string        `yaml:"address"`
	UseTLS       bool          `yaml:"tls"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	// ConfigFile is the path to the cardano-node config. When set, the minimum compatible
	// major version is read from its LastKnownBlockVersion-Major value
	ConfigFile string `yaml:"configFile"`
}

type ClientConfig struct {
	MinCompatibleMajorVersion uint          `yaml:"minCompatibleMajorVersion"`
	MaxAttempts               int           `yaml:"maxAttempts"`
	RetryInitialInterval      time.Duration `yaml:"retryInitialInterval"`
	// RetryMaxInterval caps the delay between attempts. Zero leaves it uncapped
	RetryMaxInterval time.Duration `yaml:"retryMaxInterval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	ListenAddress string `yaml:"listen"`
}

type Config struct {
	Node    NodeConfig    `yaml:"node"`
	Client  ClientConfig  `yaml:"client"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Default returns the config used when no config file is provided
func Default() Config {
	connCfg := session.DefaultConnectionConfig()
	return Config{
		Node: NodeConfig{
			Network:     connCfg.Network,
			SocketPath:  connCfg.SocketPath,
			DialTimeout: connCfg.DialTimeout,
		},
		Client: ClientConfig{
			MinCompatibleMajorVersion: DefaultMinCompatibleMajorVersion,
			MaxAttempts:               nodeclient.DefaultMaxAttempts,
			RetryInitialInterval:      nodeclient.DefaultRetryInitialInterval,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path on top of the defaults. An empty path returns the defaults
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if err := cfg.Validate(); err != nil {
			return Config{}, fmt.Errorf("validate config: %w", err)
		}
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Node.SocketPath == "" && cfg.Node.Address == "" {
		return errors.New("node.socketPath or node.address must be set")
	}
	if cfg.Node.Network == "" && cfg.Node.NetworkMagic == 0 {
		return errors.New("node.network or node.networkMagic must be set")
	}
	if cfg.Node.DialTimeout < 0 {
		return errors.New("node.dialTimeout cannot be negative")
	}
	if cfg.Client.MaxAttempts < 1 {
		return fmt.Errorf("client.maxAttempts must be at least 1, got %d", cfg.Client.MaxAttempts)
	}
	if cfg.Client.RetryInitialInterval <= 0 {
		return errors.New("client.retryInitialInterval must be positive")
	}
	if cfg.Client.RetryMaxInterval < 0 {
		return errors.New("client.retryMaxInterval cannot be negative")
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported logging.format %q", cfg.Logging.Format)
	}
	return nil
}

// ConnectionConfig returns the session config for the node
func (cfg *Config) ConnectionConfig() *session.ConnectionConfig {
	return &session.ConnectionConfig{
		Network:      cfg.Node.Network,
		NetworkMagic: cfg.Node.NetworkMagic,
		SocketPath:   cfg.Node.SocketPath,
		Address:      cfg.Node.Address,
		UseTLS:       cfg.Node.UseTLS,
		DialTimeout:  cfg.Node.DialTimeout,
	}
}

// MinCompatibleMajorVersion returns the configured minimum protocol major version, reading it
// from the cardano-node config when one is configured
func (cfg *Config) MinCompatibleMajorVersion() (uint, error) {
	if cfg.Node.ConfigFile == "" {
		return cfg.Client.MinCompatibleMajorVersion, nil
	}
	return LastKnownMajorVersion(cfg.Node.ConfigFile)
}

// cardano-node config files may be JSON or YAML, both of which decode as YAML
type nodeConfigFile struct {
	LastKnownBlockVersionMajor *uint `yaml:"LastKnownBlockVersion-Major"`
}

// LastKnownMajorVersion reads LastKnownBlockVersion-Major from a cardano-node config file
func LastKnownMajorVersion(path string) (uint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read node config: %w", err)
	}
	var nodeCfg nodeConfigFile
	if err := yaml.Unmarshal(data, &nodeCfg); err != nil {
		return 0, fmt.Errorf("decode node config: %w", err)
	}
	if nodeCfg.LastKnownBlockVersionMajor == nil {
		return 0, fmt.Errorf("node config %s does not set LastKnownBlockVersion-Major", path)
	}
	return *nodeCfg.LastKnownBlockVersionMajor, nil
}
