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

package main

import (
	"github.com/blinklabs-io/node-gateway/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type globalFlags struct {
	configFile      string
	socket          string
	address         string
	useTls          bool
	network         string
	networkMagic    uint32
	nodeConfigFile  string
	minMajorVersion uint
	logLevel        string
	metricsListen   string
}

func newRootCommand() *cobra.Command {
	f := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "node-gateway",
		Short: "Supervised access to a Cardano node's local state query and tx submission",
		Long: `node-gateway connects to a cardano-node over the node-to-client protocol and waits
until the node has reached a compatible protocol era before querying it or submitting
transactions to it.`,
		Version:      version,
		SilenceUsage: true,
	}
	addGlobalFlags(rootCmd.PersistentFlags(), f)
	rootCmd.AddCommand(
		newWaitReadyCommand(f),
		newTipCommand(f),
		newProtocolParamsCommand(f),
		newSubmitTxCommand(f),
		newRunCommand(f),
	)
	return rootCmd
}

func addGlobalFlags(pf *pflag.FlagSet, f *globalFlags) {
	pf.StringVar(&f.configFile, "config", "", "path to YAML config file")
	pf.StringVar(&f.socket, "socket", "", "UNIX socket path to connect to")
	pf.StringVar(
		&f.address,
		"address",
		"",
		"TCP address to connect to in address:port format",
	)
	pf.BoolVar(&f.useTls, "tls", false, "enable TLS")
	pf.StringVar(
		&f.network,
		"network",
		"",
		"specifies network that node is participating in",
	)
	pf.Uint32Var(
		&f.networkMagic,
		"network-magic",
		0,
		"specifies network magic value. this overrides the --network option",
	)
	pf.StringVar(
		&f.nodeConfigFile,
		"node-config",
		"",
		"path to the cardano-node config to read LastKnownBlockVersion-Major from",
	)
	pf.UintVar(
		&f.minMajorVersion,
		"min-major-version",
		config.DefaultMinCompatibleMajorVersion,
		"lowest node protocol major version to accept",
	)
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(
		&f.metricsListen,
		"metrics-listen",
		"",
		"address to serve Prometheus metrics on, such as :9100",
	)
}

// loadConfig loads the config file and applies any flags that were explicitly set
func loadConfig(f *globalFlags, flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return config.Config{}, err
	}
	if flags.Changed("address") {
		cfg.Node.Address = f.address
		// The socket takes precedence, so drop the configured one
		if !flags.Changed("socket") {
			cfg.Node.SocketPath = ""
		}
	}
	if flags.Changed("socket") {
		cfg.Node.SocketPath = f.socket
	}
	if flags.Changed("tls") {
		cfg.Node.UseTLS = f.useTls
	}
	if flags.Changed("network") {
		cfg.Node.Network = f.network
		if !flags.Changed("network-magic") {
			cfg.Node.NetworkMagic = 0
		}
	}
	if flags.Changed("network-magic") {
		cfg.Node.NetworkMagic = f.networkMagic
	}
	if flags.Changed("node-config") {
		cfg.Node.ConfigFile = f.nodeConfigFile
	}
	if flags.Changed("min-major-version") {
		cfg.Client.MinCompatibleMajorVersion = f.minMajorVersion
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if flags.Changed("metrics-listen") {
		cfg.Metrics.ListenAddress = f.metricsListen
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
