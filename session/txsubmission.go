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
	"errors"
	"fmt"
	"log/slog"
	"net"

	ouroboros "github.com/blinklabs-io/gouroboros"
	"github.com/blinklabs-io/gouroboros/ledger"
	"github.com/blinklabs-io/gouroboros/protocol/localtxsubmission"
)

// ErrLocalTxSubmissionUnavailable is returned when the connection has no
// local-tx-submission mini-protocol
var ErrLocalTxSubmissionUnavailable = errors.New(
	"local-tx-submission protocol is not available on this connection",
)

// RejectedError is returned when the node rejects a submitted transaction. It unwraps
// to the decoded ledger error, when one could be decoded
type RejectedError struct {
	ReasonCbor []byte
	Reason     error
}

func (e *RejectedError) Error() string {
	if e.Reason != nil {
		return e.Reason.Error()
	}
	return fmt.Sprintf("transaction rejected: CBOR reason hex: %x", e.ReasonCbor)
}

func (e *RejectedError) Unwrap() error {
	return e.Reason
}

// ouroborosTxSubmission implements TxSubmissionSession using the local-tx-submission mini-protocol
type ouroborosTxSubmission struct {
	conn         *nodeConnection
	logger       *slog.Logger
	defaultTxEra uint
}

func newOuroborosTxSubmission(
	conn net.Conn,
	networkMagic uint32,
	defaultTxEra uint,
	logger *slog.Logger,
) (*ouroborosTxSubmission, error) {
	nodeConn, err := newNodeConnection(
		conn,
		networkMagic,
		logger,
		ouroboros.WithLocalTxSubmissionConfig(localtxsubmission.NewConfig()),
	)
	if err != nil {
		return nil, err
	}
	return &ouroborosTxSubmission{
		conn:         nodeConn,
		logger:       logger,
		defaultTxEra: defaultTxEra,
	}, nil
}

// txEra returns the era ID to submit the transaction with
func (s *ouroborosTxSubmission) txEra(tx []byte) uint {
	txType, err := ledger.DetermineTransactionType(tx)
	if err != nil {
		s.logger.Debug(
			fmt.Sprintf(
				"could not determine transaction type, using era %d: %s",
				s.defaultTxEra,
				err,
			),
			"component", "node-session",
			"protocol", localtxsubmission.ProtocolName,
		)
		return s.defaultTxEra
	}
	return txType
}

// SubmitTx submits the signed transaction and waits for the node to accept or reject it
func (s *ouroborosTxSubmission) SubmitTx(ctx context.Context, tx []byte) error {
	lts := s.conn.conn.LocalTxSubmission()
	if lts == nil || lts.Client == nil {
		return ErrLocalTxSubmissionUnavailable
	}
	eraId := s.txEra(tx)
	_, err := runWithContext(ctx, s.conn.abandon, func() (struct{}, error) {
		// #nosec G115
		return struct{}{}, lts.Client.SubmitTx(uint16(eraId), tx)
	})
	if err == nil {
		return nil
	}
	var rejectErr localtxsubmission.TransactionRejectedError
	if errors.As(err, &rejectErr) {
		return &RejectedError{
			ReasonCbor: rejectErr.ReasonCbor,
			Reason:     rejectErr.Reason,
		}
	}
	var rejectErrPtr *localtxsubmission.TransactionRejectedError
	if errors.As(err, &rejectErrPtr) {
		return &RejectedError{
			ReasonCbor: rejectErrPtr.ReasonCbor,
			Reason:     rejectErrPtr.Reason,
		}
	}
	return err
}

// Shutdown closes the underlying connection
func (s *ouroborosTxSubmission) Shutdown(ctx context.Context) error {
	s.logger.Debug(
		"shutting down tx submission session",
		"component", "node-session",
		"protocol", localtxsubmission.ProtocolName,
	)
	return s.conn.Close()
}
