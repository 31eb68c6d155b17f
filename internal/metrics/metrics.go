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

// Package metrics provides the Prometheus collectors for the node client.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "node_gateway"
	subsystem = "node_client"
)

// Init attempt outcomes
const (
	OutcomeFailure   = "failure"
	OutcomeSuccess   = "success"
	OutcomeExhausted = "exhausted"
)

type Metrics struct {
	initAttempts *prometheus.CounterVec
	state        prometheus.Gauge
	tipSlot      prometheus.Gauge
	submissions  *prometheus.CounterVec
}

// New creates the node client collectors and registers them with reg. A nil
// registerer leaves the collectors unregistered
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		initAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "init_attempts_total",
			Help:      "Node client initialization attempts segmented by outcome.",
		}, []string{"outcome"}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "state",
			Help:      "Node client lifecycle state (0 = uninitialized, 1 = initializing, 2 = initialized).",
		}),
		tipSlot: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tip_slot",
			Help:      "Most recently observed ledger tip slot.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tx_submissions_total",
			Help:      "Transaction submissions segmented by status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.initAttempts,
			m.state,
			m.tipSlot,
			m.submissions,
		)
	}
	return m
}

// ObserveInitAttempt counts an initialization attempt with the given outcome
func (m *Metrics) ObserveInitAttempt(outcome string) {
	if m == nil {
		return
	}
	m.initAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetState(state int) {
	if m == nil {
		return
	}
	m.state.Set(float64(state))
}

func (m *Metrics) SetTipSlot(slot uint64) {
	if m == nil {
		return
	}
	m.tipSlot.Set(float64(slot))
}

// ObserveSubmission counts a transaction submission. Status should be a stable
// string such as "accepted", "ignored_era_mismatch" or "error"
func (m *Metrics) ObserveSubmission(status string) {
	if m == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.submissions.WithLabelValues(status).Inc()
}
