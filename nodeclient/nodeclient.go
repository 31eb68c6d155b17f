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

// Package nodeclient supervises the connection between a gateway and a Cardano node.
//
// A NodeClient owns a local-state-query session and a local-tx-submission session.
// Initialize creates both sessions and checks that the node has reached the minimum
// compatible protocol major version, retrying with exponential backoff while the node
// is unreachable or still syncing through older eras. All other operations fail with
// ErrNotInitialized until Initialize has succeeded.
package nodeclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/node-gateway/internal/metrics"
	"github.com/blinklabs-io/node-gateway/session"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxAttempts          = 39
	DefaultRetryInitialInterval = 1 * time.Second

	retryMultiplier = 1.5
	moduleName      = "NodeClient"
)

// InitDescription describes the operation retried by Initialize
const InitDescription = "Establishing connection to cardano-node and ensuring state is in the expected era"

// State is the lifecycle state of a NodeClient
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateInitialized
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitializing:
		return "Initializing"
	case StateInitialized:
		return "Initialized"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// FailedAttempt describes a failed initialization attempt
type FailedAttempt struct {
	Description string
	Attempt     int
	RetriesLeft int
	// Delay before the next attempt. It is zero when no attempt follows
	Delay time.Duration
	Err   error
}

// FailedAttemptFunc is called after each failed initialization attempt
type FailedAttemptFunc func(FailedAttempt)

// NodeClient provides guarded access to a Cardano node's state query and tx submission interfaces
type NodeClient struct {
	minCompatibleMajorVersion uint
	state                     atomic.Int32
	// initMutex serializes Initialize and Shutdown
	initMutex    sync.Mutex
	sessionMutex sync.RWMutex
	stateQuery   session.StateQuerySession
	txSubmission session.TxSubmissionSession

	factory              session.Factory
	logger               *slog.Logger
	metrics              *metrics.Metrics
	retryInitialInterval time.Duration
	retryMaxInterval     time.Duration
	maxAttempts          int
	retryTimer           backoff.Timer
	failedAttemptFunc    FailedAttemptFunc
}

// New returns a NodeClient that accepts nodes at or above the specified protocol major version
func New(
	minCompatibleMajorVersion uint,
	opts ...NodeClientOptionFunc,
) *NodeClient {
	c := &NodeClient{
		minCompatibleMajorVersion: minCompatibleMajorVersion,
		retryInitialInterval:      DefaultRetryInitialInterval,
		maxAttempts:               DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if c.factory == nil {
		c.factory = session.NewOuroborosFactory(c.logger)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	if c.retryInitialInterval <= 0 {
		c.retryInitialInterval = DefaultRetryInitialInterval
	}
	return c
}

// State returns the current lifecycle state
func (c *NodeClient) State() State {
	return State(c.state.Load())
}

// MinCompatibleMajorVersion returns the lowest protocol major version accepted from the node
func (c *NodeClient) MinCompatibleMajorVersion() uint {
	return c.minCompatibleMajorVersion
}

func (c *NodeClient) setState(state State) {
	c.state.Store(int32(state))
	c.metrics.SetState(int(state))
}

// Initialize connects to the node and waits until it reports a compatible protocol version.
// It does nothing unless the client is uninitialized. Concurrent calls wait for the
// in-progress call to finish and then return without doing anything. When all attempts fail
// the client stays in StateInitializing until Shutdown is called, and an
// *InitializationExhaustedError is returned. A nil cfg uses the session defaults
func (c *NodeClient) Initialize(
	ctx context.Context,
	cfg *session.ConnectionConfig,
) error {
	c.initMutex.Lock()
	defer c.initMutex.Unlock()
	if !c.state.CompareAndSwap(
		int32(StateUninitialized),
		int32(StateInitializing),
	) {
		return nil
	}
	c.metrics.SetState(int(StateInitializing))
	c.logger.Info(
		"initializing",
		"component", "node-client",
		"min_major_version", c.minCompatibleMajorVersion,
	)
	var (
		attempts     int
		notified     int
		stateQuery   session.StateQuerySession
		txSubmission session.TxSubmissionSession
	)
	operation := func() error {
		attempts++
		sq, ts, err := c.connect(ctx, cfg)
		if err != nil {
			return err
		}
		stateQuery, txSubmission = sq, ts
		return nil
	}
	notify := func(err error, delay time.Duration) {
		notified++
		c.failedAttempt(
			FailedAttempt{
				Description: InitDescription,
				Attempt:     attempts,
				RetriesLeft: c.maxAttempts - attempts,
				Delay:       delay,
				Err:         err,
			},
		)
	}
	err := backoff.RetryNotifyWithTimer(
		operation,
		c.newBackOff(ctx),
		notify,
		c.retryTimer,
	)
	if err != nil {
		// The final failure is not passed to notify since no retry follows it
		if attempts > notified {
			c.failedAttempt(
				FailedAttempt{
					Description: InitDescription,
					Attempt:     attempts,
					Err:         err,
				},
			)
		}
		c.metrics.ObserveInitAttempt(metrics.OutcomeExhausted)
		c.logger.Error(
			fmt.Sprintf("initialization failed after %d attempt(s): %s", attempts, err),
			"component", "node-client",
		)
		return &InitializationExhaustedError{
			Attempts: attempts,
			Err:      err,
		}
	}
	c.sessionMutex.Lock()
	c.stateQuery = stateQuery
	c.txSubmission = txSubmission
	c.setState(StateInitialized)
	c.sessionMutex.Unlock()
	c.metrics.ObserveInitAttempt(metrics.OutcomeSuccess)
	c.logger.Info(
		fmt.Sprintf("initialized after %d attempt(s)", attempts),
		"component", "node-client",
	)
	return nil
}

func (c *NodeClient) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitialInterval
	b.RandomizationFactor = 0
	b.Multiplier = retryMultiplier
	b.MaxInterval = c.retryMaxInterval
	if b.MaxInterval <= 0 {
		b.MaxInterval = time.Duration(math.MaxInt64)
	}
	// Attempts are bounded by count only
	b.MaxElapsedTime = 0
	// #nosec G115
	return backoff.WithContext(
		backoff.WithMaxRetries(b, uint64(c.maxAttempts-1)),
		ctx,
	)
}

func (c *NodeClient) failedAttempt(attempt FailedAttempt) {
	c.metrics.ObserveInitAttempt(metrics.OutcomeFailure)
	c.logger.Warn(
		fmt.Sprintf("%s: attempt %d failed: %s", attempt.Description, attempt.Attempt, attempt.Err),
		"component", "node-client",
		"retries_left", attempt.RetriesLeft,
		"delay", attempt.Delay,
	)
	if c.failedAttemptFunc != nil {
		c.failedAttemptFunc(attempt)
	}
}

// connect creates both sessions and checks the node era. Sessions are released when
// the attempt fails
func (c *NodeClient) connect(
	ctx context.Context,
	cfg *session.ConnectionConfig,
) (session.StateQuerySession, session.TxSubmissionSession, error) {
	stateQuery, err := c.factory.NewStateQuerySession(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create state query session: %w", err)
	}
	txSubmission, err := c.factory.NewTxSubmissionSession(ctx, cfg)
	if err != nil {
		c.release(ctx, stateQuery, nil)
		return nil, nil, fmt.Errorf("failed to create tx submission session: %w", err)
	}
	inEra, err := c.isInCurrentEra(ctx, stateQuery)
	if err == nil && !inEra {
		err = ErrNodeSyncing
	}
	if err != nil {
		c.release(ctx, stateQuery, txSubmission)
		return nil, nil, err
	}
	return stateQuery, txSubmission, nil
}

// isInCurrentEra returns whether the node reports at least the minimum compatible protocol major version
func (c *NodeClient) isInCurrentEra(
	ctx context.Context,
	stateQuery session.StateQuerySession,
) (bool, error) {
	pparams, err := stateQuery.CurrentProtocolParameters(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to query protocol parameters: %w", err)
	}
	c.logger.Debug(
		fmt.Sprintf(
			"node protocol version %s (%s), minimum major version %d",
			pparams.ProtocolVersion,
			pparams.EraName(),
			c.minCompatibleMajorVersion,
		),
		"component", "node-client",
	)
	return pparams.ProtocolVersion.Major >= c.minCompatibleMajorVersion, nil
}

// release releases sessions left over from a failed attempt
func (c *NodeClient) release(
	ctx context.Context,
	stateQuery session.StateQuerySession,
	txSubmission session.TxSubmissionSession,
) {
	if err := releaseSessions(ctx, stateQuery, txSubmission); err != nil {
		c.logger.Debug(
			fmt.Sprintf("failed to release sessions: %s", err),
			"component", "node-client",
		)
	}
}

// releaseSessions releases the provided sessions concurrently and waits for both.
// Both releases are always attempted, and the first error is returned
func releaseSessions(
	ctx context.Context,
	stateQuery session.StateQuerySession,
	txSubmission session.TxSubmissionSession,
) error {
	var g errgroup.Group
	if stateQuery != nil {
		g.Go(func() error {
			if err := stateQuery.Release(ctx); err != nil {
				return fmt.Errorf("failed to release state query session: %w", err)
			}
			return nil
		})
	}
	if txSubmission != nil {
		g.Go(func() error {
			if err := txSubmission.Shutdown(ctx); err != nil {
				return fmt.Errorf("failed to shut down tx submission session: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// sessions returns the current sessions, or a NotInitializedError naming method
func (c *NodeClient) sessions(
	method string,
) (session.StateQuerySession, session.TxSubmissionSession, error) {
	c.sessionMutex.RLock()
	defer c.sessionMutex.RUnlock()
	if c.State() != StateInitialized {
		return nil, nil, &NotInitializedError{
			Module: moduleName,
			Method: method,
		}
	}
	return c.stateQuery, c.txSubmission, nil
}

// GetTipSlotNo returns the slot number of the node's ledger tip. The origin is reported as slot 0
func (c *NodeClient) GetTipSlotNo(ctx context.Context) (uint64, error) {
	stateQuery, _, err := c.sessions("GetTipSlotNo")
	if err != nil {
		return 0, err
	}
	tip, err := stateQuery.LedgerTip(ctx)
	if err != nil {
		return 0, err
	}
	var slot uint64
	if !tip.Origin {
		slot = tip.Slot
	}
	c.logger.Debug(
		fmt.Sprintf("ledger tip slot: %d", slot),
		"component", "node-client",
	)
	c.metrics.SetTipSlot(slot)
	return slot, nil
}

// GetProtocolParams returns the protocol parameters currently in effect on the node
func (c *NodeClient) GetProtocolParams(
	ctx context.Context,
) (*session.ProtocolParameters, error) {
	stateQuery, _, err := c.sessions("GetProtocolParams")
	if err != nil {
		return nil, err
	}
	return stateQuery.CurrentProtocolParameters(ctx)
}

// Shutdown releases both sessions and returns the client to StateUninitialized, after which
// it may be initialized again. It waits for an in-progress Initialize to finish. Both
// sessions are always released, and the first release error is returned
func (c *NodeClient) Shutdown(ctx context.Context) error {
	c.initMutex.Lock()
	defer c.initMutex.Unlock()
	c.sessionMutex.Lock()
	stateQuery, txSubmission := c.stateQuery, c.txSubmission
	c.stateQuery = nil
	c.txSubmission = nil
	c.setState(StateUninitialized)
	c.sessionMutex.Unlock()
	if stateQuery == nil && txSubmission == nil {
		return nil
	}
	c.logger.Info(
		"shutting down",
		"component", "node-client",
	)
	if err := releaseSessions(ctx, stateQuery, txSubmission); err != nil {
		c.logger.Error(
			fmt.Sprintf("shutdown: %s", err),
			"component", "node-client",
		)
		return err
	}
	return nil
}
