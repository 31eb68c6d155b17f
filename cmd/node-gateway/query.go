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
	"encoding/json"
	"fmt"
	"io"

	"github.com/blinklabs-io/node-gateway/nodeclient"
	"github.com/blinklabs-io/node-gateway/session"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
)

func newWaitReadyCommand(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "wait-ready",
		Short: "Wait until the node is reachable and in a compatible era",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithClient(
				cmd,
				f,
				func(ctx context.Context, cmd *cobra.Command, client *nodeclient.NodeClient) error {
					pparams, err := client.GetProtocolParams(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(
						cmd.OutOrStdout(),
						"node is ready: era %s, protocol version %s\n",
						pparams.EraName(),
						pparams.ProtocolVersion,
					)
					return nil
				},
			)
		},
	}
}

func newTipCommand(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tip",
		Short: "Print the slot number of the node's ledger tip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithClient(
				cmd,
				f,
				func(ctx context.Context, cmd *cobra.Command, client *nodeclient.NodeClient) error {
					slot, err := client.GetTipSlotNo(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d\n", slot)
					return nil
				},
			)
		},
	}
}

func newProtocolParamsCommand(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "protocol-params",
		Short: "Print the protocol parameters currently in effect as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithClient(
				cmd,
				f,
				func(ctx context.Context, cmd *cobra.Command, client *nodeclient.NodeClient) error {
					pparams, err := client.GetProtocolParams(ctx)
					if err != nil {
						return err
					}
					return writeProtocolParams(cmd.OutOrStdout(), pparams)
				},
			)
		},
	}
}

// writeProtocolParams writes the UTxO RPC JSON form of the params, falling back to the
// ledger representation for eras without a UTxO RPC conversion
func writeProtocolParams(w io.Writer, pparams *session.ProtocolParameters) error {
	var out []byte
	if utxorpcParams, err := pparams.Utxorpc(); err == nil {
		out, err = protojson.MarshalOptions{
			Multiline: true,
			Indent:    "  ",
		}.Marshal(utxorpcParams)
		if err != nil {
			return fmt.Errorf("failed to encode protocol params: %w", err)
		}
	} else {
		out, err = json.MarshalIndent(pparams.Params, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode protocol params: %w", err)
		}
	}
	_, err := fmt.Fprintf(w, "%s\n", out)
	return err
}
