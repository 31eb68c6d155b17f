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
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	ouroboros "github.com/blinklabs-io/gouroboros"
)

// nodeConnection wraps an Ouroboros node-to-client connection and forwards its
// async errors to the logger
type nodeConnection struct {
	conn      *ouroboros.Connection
	logger    *slog.Logger
	errorChan chan error
	doneChan  chan struct{}
	onceClose sync.Once
	closeErr  error
}

// dial establishes a network connection to the node described by cfg
func dial(ctx context.Context, cfg ConnectionConfig) (net.Conn, error) {
	dialProto, dialAddress, err := cfg.dialTarget()
	if err != nil {
		return nil, err
	}
	dialer := &net.Dialer{
		Timeout: cfg.DialTimeout,
	}
	var conn net.Conn
	if cfg.UseTLS {
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
		}
		conn, err = tlsDialer.DialContext(ctx, dialProto, dialAddress)
	} else {
		conn, err = dialer.DialContext(ctx, dialProto, dialAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("connection to %s failed: %w", dialAddress, err)
	}
	return conn, nil
}

// newNodeConnection performs the handshake over conn and returns the resulting connection.
// The provided conn is closed on failure
func newNodeConnection(
	conn net.Conn,
	networkMagic uint32,
	logger *slog.Logger,
	opts ...ouroboros.ConnectionOptionFunc,
) (*nodeConnection, error) {
	c := &nodeConnection{
		logger:    logger,
		errorChan: make(chan error, 10),
		doneChan:  make(chan struct{}),
	}
	connOpts := []ouroboros.ConnectionOptionFunc{
		ouroboros.WithConnection(conn),
		ouroboros.WithNetworkMagic(networkMagic),
		ouroboros.WithErrorChan(c.errorChan),
		ouroboros.WithNodeToNode(false),
		ouroboros.WithKeepAlive(false),
	}
	connOpts = append(connOpts, opts...)
	oConn, err := ouroboros.NewConnection(connOpts...)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("handshake failed: %w", err)
	}
	c.conn = oConn
	go c.errorLoop()
	return c, nil
}

func (c *nodeConnection) errorLoop() {
	for {
		select {
		case <-c.doneChan:
			return
		case err, ok := <-c.errorChan:
			if !ok {
				return
			}
			if errors.Is(err, io.EOF) {
				c.logger.Warn(
					"connection closed by node",
					"component", "node-session",
				)
				continue
			}
			c.logger.Error(
				fmt.Sprintf("connection error: %s", err),
				"component", "node-session",
			)
		}
	}
}

// Close shuts down the connection. It is safe to call more than once
func (c *nodeConnection) Close() error {
	c.onceClose.Do(func() {
		close(c.doneChan)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// abandon closes the connection after a call was given up on. The mini-protocol
// clients hold their busy locks until the call returns, so the session cannot be
// used again afterward
func (c *nodeConnection) abandon() {
	c.logger.Warn(
		"closing connection after abandoned call",
		"component", "node-session",
	)
	if err := c.Close(); err != nil {
		c.logger.Debug(
			fmt.Sprintf("failed to close connection: %s", err),
			"component", "node-session",
		)
	}
}

// runWithContext runs fn and waits for it to complete or for ctx to be done.
// The underlying mini-protocol calls are not cancellable, so when ctx finishes
// first abandon is called to unblock fn and the context error is returned
func runWithContext[T any](
	ctx context.Context,
	abandon func(),
	fn func() (T, error),
) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	type result struct {
		val T
		err error
	}
	resultChan := make(chan result, 1)
	go func() {
		val, err := fn()
		resultChan <- result{val: val, err: err}
	}()
	select {
	case <-ctx.Done():
		if abandon != nil {
			abandon()
		}
		return zero, ctx.Err()
	case res := <-resultChan:
		return res.val, res.err
	}
}
