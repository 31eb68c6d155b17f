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
	"time"

	"github.com/blinklabs-io/node-gateway/nodeclient"
	"github.com/spf13/cobra"
)

func newRunCommand(f *globalFlags) *cobra.Command {
	var tipInterval time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Stay connected to the node, tracking its tip until interrupted",
		Long: `run initializes the node client and then polls the ledger tip until it receives
SIGINT or SIGTERM. Combine it with --metrics-listen to expose /metrics, /healthz and
/readyz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithClient(
				cmd,
				f,
				func(ctx context.Context, cmd *cobra.Command, client *nodeclient.NodeClient) error {
					return pollTip(ctx, client, tipInterval, func(slot uint64, err error) {
						if err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "failed to query tip: %s\n", err)
							return
						}
						fmt.Fprintf(cmd.OutOrStdout(), "tip slot: %d\n", slot)
					})
				},
			)
		},
	}
	cmd.Flags().DurationVar(
		&tipInterval,
		"tip-interval",
		20*time.Second,
		"how often to query the ledger tip",
	)
	return cmd
}

type tipQuerier interface {
	GetTipSlotNo(ctx context.Context) (uint64, error)
}

// pollTip queries the tip every interval until ctx is done. Query errors are passed to fn
// and do not stop polling
func pollTip(
	ctx context.Context,
	client tipQuerier,
	interval time.Duration,
	fn func(uint64, error),
) error {
	if interval <= 0 {
		return fmt.Errorf("invalid tip interval: %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		slot, err := client.GetTipSlotNo(ctx)
		if ctx.Err() != nil {
			return nil
		}
		fn(slot, err)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
