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

// Package session defines the node sessions used by the node client and
// provides implementations backed by Ouroboros node-to-client connections.
//
// A state-query session answers ledger queries (chain tip, protocol
// parameters) using the local-state-query mini-protocol. A tx-submission
// session submits signed transactions using the local-tx-submission
// mini-protocol. Each session owns its own connection to the node.
package session

//go:generate mockgen -destination=mocks/session_mock.go -package=mocks -source=session.go

import (
	"context"
)

// Tip represents the current tip of the node's chain. The origin of the
// chain is represented by a Tip with Origin set
type Tip struct {
	Origin bool
	Slot   uint64
	Hash   []byte
}

// OriginTip returns a Tip that represents the origin of the chain
func OriginTip() Tip {
	return Tip{Origin: true}
}

// NewTip returns a Tip for the specified slot and block hash
func NewTip(slot uint64, hash []byte) Tip {
	return Tip{
		Slot: slot,
		Hash: hash,
	}
}

// StateQuerySession queries ledger state from a node
type StateQuerySession interface {
	// LedgerTip returns the current tip of the ledger
	LedgerTip(ctx context.Context) (Tip, error)
	// CurrentProtocolParameters returns the protocol parameters currently in effect
	CurrentProtocolParameters(ctx context.Context) (*ProtocolParameters, error)
	// Release releases the session and its underlying connection
	Release(ctx context.Context) error
}

// TxSubmissionSession submits transactions to a node
type TxSubmissionSession interface {
	// SubmitTx submits the raw signed transaction. An error is returned if the
	// node rejects the transaction
	SubmitTx(ctx context.Context, tx []byte) error
	// Shutdown stops the session and closes its underlying connection
	Shutdown(ctx context.Context) error
}

// Factory creates new sessions. A nil config means the default connection config
type Factory interface {
	NewStateQuerySession(
		ctx context.Context,
		cfg *ConnectionConfig,
	) (StateQuerySession, error)
	NewTxSubmissionSession(
		ctx context.Context,
		cfg *ConnectionConfig,
	) (TxSubmissionSession, error)
}
