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

package session

import (
	"context"
	"io"
	"log/slog"
)

// OuroborosFactory creates sessions backed by Ouroboros node-to-client connections
type OuroborosFactory struct {
	logger *slog.Logger
}

// NewOuroborosFactory returns a new OuroborosFactory. A nil logger discards all output
func NewOuroborosFactory(logger *slog.Logger) *OuroborosFactory {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &OuroborosFactory{
		logger: logger,
	}
}

// NewStateQuerySession dials the node and starts a new state-query session
func (f *OuroborosFactory) NewStateQuerySession(
	ctx context.Context,
	cfg *ConnectionConfig,
) (StateQuerySession, error) {
	tmpCfg := resolveConnectionConfig(cfg)
	networkMagic, err := tmpCfg.networkMagic()
	if err != nil {
		return nil, err
	}
	conn, err := dial(ctx, tmpCfg)
	if err != nil {
		return nil, err
	}
	stateQuery, err := newOuroborosStateQuery(conn, networkMagic, f.logger)
	if err != nil {
		return nil, err
	}
	return stateQuery, nil
}

// NewTxSubmissionSession dials the node and starts a new tx-submission session
func (f *OuroborosFactory) NewTxSubmissionSession(
	ctx context.Context,
	cfg *ConnectionConfig,
) (TxSubmissionSession, error) {
	tmpCfg := resolveConnectionConfig(cfg)
	networkMagic, err := tmpCfg.networkMagic()
	if err != nil {
		return nil, err
	}
	conn, err := dial(ctx, tmpCfg)
	if err != nil {
		return nil, err
	}
	txSubmission, err := newOuroborosTxSubmission(
		conn,
		networkMagic,
		tmpCfg.DefaultTxEra,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return txSubmission, nil
}
