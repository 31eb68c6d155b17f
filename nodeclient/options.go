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

package nodeclient

import (
	"log/slog"
	"time"

	"github.com/blinklabs-io/node-gateway/internal/metrics"
	"github.com/blinklabs-io/node-gateway/session"
	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// NodeClientOptionFunc is a type that represents functions that modify the NodeClient config
type NodeClientOptionFunc func(*NodeClient)

// WithLogger specifies the logger to use. Output is discarded by default
func WithLogger(logger *slog.Logger) NodeClientOptionFunc {
	return func(c *NodeClient) {
		c.logger = logger
	}
}

// WithSessionFactory specifies the factory used to create node sessions
func WithSessionFactory(factory session.Factory) NodeClientOptionFunc {
	return func(c *NodeClient) {
		c.factory = factory
	}
}

// WithMetricsRegisterer enables Prometheus metrics, registered with the provided registerer
func WithMetricsRegisterer(reg prometheus.Registerer) NodeClientOptionFunc {
	return func(c *NodeClient) {
		c.metrics = metrics.New(reg)
	}
}

// WithRetryInitialInterval specifies the delay after the first failed initialization attempt
func WithRetryInitialInterval(interval time.Duration) NodeClientOptionFunc {
	return func(c *NodeClient) {
		c.retryInitialInterval = interval
	}
}

// WithRetryMaxInterval caps the delay between initialization attempts. A zero value
// leaves the delay uncapped
func WithRetryMaxInterval(interval time.Duration) NodeClientOptionFunc {
	return func(c *NodeClient) {
		c.retryMaxInterval = interval
	}
}

// WithMaxAttempts specifies the total number of initialization attempts
func WithMaxAttempts(attempts int) NodeClientOptionFunc {
	return func(c *NodeClient) {
		c.maxAttempts = attempts
	}
}

// WithRetryTimer specifies the timer used to wait between initialization attempts
func WithRetryTimer(timer backoff.Timer) NodeClientOptionFunc {
	return func(c *NodeClient) {
		c.retryTimer = timer
	}
}

// WithFailedAttemptFunc specifies a function to call after each failed initialization attempt
func WithFailedAttemptFunc(fn FailedAttemptFunc) NodeClientOptionFunc {
	return func(c *NodeClient) {
		c.failedAttemptFunc = fn
	}
}
