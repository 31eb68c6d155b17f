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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/blinklabs-io/node-gateway/nodeclient"
	"github.com/spf13/cobra"
)

// textEnvelope is the JSON transaction file format written by cardano-cli
type textEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CborHex     string `json:"cborHex"`
}

type submitTxFlags struct {
	txFile    string
	rawTxFile string
}

func newSubmitTxCommand(f *globalFlags) *cobra.Command {
	submitFlags := &submitTxFlags{}
	cmd := &cobra.Command{
		Use:   "submit-tx",
		Short: "Submit a signed transaction to the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txBytes, err := loadTx(submitFlags.txFile, submitFlags.rawTxFile)
			if err != nil {
				return err
			}
			return runWithClient(
				cmd,
				f,
				func(ctx context.Context, cmd *cobra.Command, client *nodeclient.NodeClient) error {
					result, err := client.SubmitTransaction(ctx, txBytes)
					if err != nil {
						return fmt.Errorf("error submitting transaction: %w", err)
					}
					switch result.Status {
					case nodeclient.SubmitAccepted:
						fmt.Fprintf(
							cmd.OutOrStdout(),
							"The transaction was accepted: %s\n",
							result.TxHash,
						)
					case nodeclient.SubmitIgnoredEraMismatch:
						fmt.Fprintf(
							cmd.OutOrStdout(),
							"The transaction was ignored due to an era mismatch: %s\n",
							result.Reason,
						)
					}
					return nil
				},
			)
		},
	}
	cmd.Flags().StringVar(
		&submitFlags.txFile,
		"tx-file",
		"",
		"path to the JSON transaction file to submit",
	)
	cmd.Flags().StringVar(
		&submitFlags.rawTxFile,
		"raw-tx-file",
		"",
		"path to the raw transaction file to submit",
	)
	cmd.MarkFlagsMutuallyExclusive("tx-file", "raw-tx-file")
	return cmd
}

// loadTx reads the signed transaction CBOR from a JSON text envelope or a raw CBOR file
func loadTx(txFile string, rawTxFile string) ([]byte, error) {
	if txFile == "" && rawTxFile == "" {
		return nil, errors.New("you must specify --tx-file or --raw-tx-file")
	}
	if rawTxFile != "" {
		txBytes, err := os.ReadFile(rawTxFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load transaction file: %w", err)
		}
		return txBytes, nil
	}
	txData, err := os.ReadFile(txFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction file: %w", err)
	}
	var envelope textEnvelope
	if err := json.Unmarshal(txData, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse transaction file: %w", err)
	}
	if envelope.CborHex == "" {
		return nil, errors.New("transaction file has no cborHex value")
	}
	txBytes, err := hex.DecodeString(envelope.CborHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return txBytes, nil
}
