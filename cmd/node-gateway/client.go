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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blinklabs-io/node-gateway/internal/config"
	"github.com/blinklabs-io/node-gateway/internal/logging"
	"github.com/blinklabs-io/node-gateway/nodeclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

type clientFunc func(ctx context.Context, cmd *cobra.Command, client *nodeclient.NodeClient) error

func newNodeClient(
	cfg config.Config,
	opts ...nodeclient.NodeClientOptionFunc,
) (*nodeclient.NodeClient, error) {
	minMajorVersion, err := cfg.MinCompatibleMajorVersion()
	if err != nil {
		return nil, err
	}
	tmpOpts := []nodeclient.NodeClientOptionFunc{
		nodeclient.WithMaxAttempts(cfg.Client.MaxAttempts),
		nodeclient.WithRetryInitialInterval(cfg.Client.RetryInitialInterval),
		nodeclient.WithRetryMaxInterval(cfg.Client.RetryMaxInterval),
	}
	tmpOpts = append(tmpOpts, opts...)
	return nodeclient.New(minMajorVersion, tmpOpts...), nil
}

// runWithClient initializes a node client from the config and flags, runs fn, and shuts
// the client down again
func runWithClient(cmd *cobra.Command, f *globalFlags, fn clientFunc) error {
	cfg, err := loadConfig(f, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.New(
		cmd.ErrOrStderr(),
		cfg.Logging.Level,
		cfg.Logging.Format,
	)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	client, err := newNodeClient(
		cfg,
		nodeclient.WithLogger(logger),
		nodeclient.WithMetricsRegisterer(reg),
	)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(
		cmd.Context(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()
	if cfg.Metrics.ListenAddress != "" {
		stopServer := startMetricsServer(
			cfg.Metrics.ListenAddress,
			newRouter(client, reg),
			logger,
		)
		defer stopServer()
	}
	defer func() {
		if err := client.Shutdown(context.Background()); err != nil {
			logger.Warn(
				fmt.Sprintf("failed to shut down node client: %s", err),
				"component", "node-client",
			)
		}
	}()
	if err := client.Initialize(ctx, cfg.ConnectionConfig()); err != nil {
		return err
	}
	return fn(ctx, cmd, client)
}
