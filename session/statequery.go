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
	"sync"

	ouroboros "github.com/blinklabs-io/gouroboros"
	"github.com/blinklabs-io/gouroboros/protocol/localstatequery"
)

// ErrLocalStateQueryUnavailable is returned when the negotiated protocol version
// does not support the local-state-query mini-protocol
var ErrLocalStateQueryUnavailable = errors.New(
	"local-state-query protocol is not available on this connection",
)

// ouroborosStateQuery implements StateQuerySession using the local-state-query mini-protocol
type ouroborosStateQuery struct {
	conn   *nodeConnection
	logger *slog.Logger
	// acquire and query must not interleave with other callers
	busyMutex sync.Mutex
}

func newOuroborosStateQuery(
	conn net.Conn,
	networkMagic uint32,
	logger *slog.Logger,
) (*ouroborosStateQuery, error) {
	nodeConn, err := newNodeConnection(
		conn,
		networkMagic,
		logger,
		ouroboros.WithLocalStateQueryConfig(localstatequery.NewConfig()),
	)
	if err != nil {
		return nil, err
	}
	return &ouroborosStateQuery{
		conn:   nodeConn,
		logger: logger,
	}, nil
}

func (s *ouroborosStateQuery) client() (*localstatequery.Client, error) {
	lsq := s.conn.conn.LocalStateQuery()
	if lsq == nil || lsq.Client == nil {
		return nil, ErrLocalStateQueryUnavailable
	}
	return lsq.Client, nil
}

// acquire acquires the volatile tip so that each query sees the latest ledger state
func (s *ouroborosStateQuery) acquire() (*localstatequery.Client, error) {
	client, err := s.client()
	if err != nil {
		return nil, err
	}
	if err := client.AcquireVolatileTip(); err != nil {
		return nil, fmt.Errorf("failed to acquire volatile tip: %w", err)
	}
	return client, nil
}

// LedgerTip returns the current chain tip
func (s *ouroborosStateQuery) LedgerTip(ctx context.Context) (Tip, error) {
	return runWithContext(ctx, s.conn.abandon, func() (Tip, error) {
		s.busyMutex.Lock()
		defer s.busyMutex.Unlock()
		client, err := s.acquire()
		if err != nil {
			return Tip{}, err
		}
		point, err := client.GetChainPoint()
		if err != nil {
			return Tip{}, fmt.Errorf("failure querying current chain point: %w", err)
		}
		if point.Slot == 0 && len(point.Hash) == 0 {
			return OriginTip(), nil
		}
		s.logger.Debug(
			fmt.Sprintf("chain point: slot = %d, hash = %x", point.Slot, point.Hash),
			"component", "node-session",
			"protocol", localstatequery.ProtocolName,
		)
		return NewTip(point.Slot, point.Hash), nil
	})
}

// CurrentProtocolParameters returns the protocol parameters for the current era
func (s *ouroborosStateQuery) CurrentProtocolParameters(
	ctx context.Context,
) (*ProtocolParameters, error) {
	return runWithContext(ctx, s.conn.abandon, func() (*ProtocolParameters, error) {
		s.busyMutex.Lock()
		defer s.busyMutex.Unlock()
		client, err := s.acquire()
		if err != nil {
			return nil, err
		}
		params, err := client.GetCurrentProtocolParams()
		if err != nil {
			return nil, fmt.Errorf("failure querying protocol params: %w", err)
		}
		pparams, err := NewProtocolParameters(params)
		if err != nil || !pparams.sharesShelleyParams() {
			return pparams, err
		}
		eraId, err := client.GetCurrentEra()
		if err != nil {
			return nil, fmt.Errorf("failure querying current era: %w", err)
		}
		// #nosec G115
		return NewProtocolParametersForEra(uint(eraId), params)
	})
}

// Release closes the underlying connection
func (s *ouroborosStateQuery) Release(ctx context.Context) error {
	s.logger.Debug(
		"releasing state query session",
		"component", "node-session",
		"protocol", localstatequery.ProtocolName,
	)
	return s.conn.Close()
}
