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

package nodeclient_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/node-gateway/internal/test"
	"github.com/blinklabs-io/node-gateway/nodeclient"
	"github.com/blinklabs-io/node-gateway/session"
	"github.com/blinklabs-io/node-gateway/session/mocks"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

const testMinMajorVersion = 9

var errConnect = errors.New("dial unix /node-ipc/node.socket: connect: no such file or directory")

// recordingTimer fires immediately and records each requested delay
type recordingTimer struct {
	mu     sync.Mutex
	delays []time.Duration
	c      chan time.Time
}

func newRecordingTimer() *recordingTimer {
	return &recordingTimer{
		c: make(chan time.Time, 1),
	}
}

func (t *recordingTimer) Start(duration time.Duration) {
	t.mu.Lock()
	t.delays = append(t.delays, duration)
	t.mu.Unlock()
	t.c <- time.Now()
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time {
	return t.c
}

func (t *recordingTimer) Delays() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration{}, t.delays...)
}

// attemptRecorder collects failed attempt notifications
type attemptRecorder struct {
	mu       sync.Mutex
	attempts []nodeclient.FailedAttempt
}

func (r *attemptRecorder) Record(attempt nodeclient.FailedAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
}

func (r *attemptRecorder) Attempts() []nodeclient.FailedAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]nodeclient.FailedAttempt{}, r.attempts...)
}

type testFixture struct {
	ctrl         *gomock.Controller
	factory      *mocks.MockFactory
	stateQuery   *mocks.MockStateQuerySession
	txSubmission *mocks.MockTxSubmissionSession
	timer        *recordingTimer
	recorder     *attemptRecorder
}

func newTestFixture(t *testing.T) *testFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return &testFixture{
		ctrl:         ctrl,
		factory:      mocks.NewMockFactory(ctrl),
		stateQuery:   mocks.NewMockStateQuerySession(ctrl),
		txSubmission: mocks.NewMockTxSubmissionSession(ctrl),
		timer:        newRecordingTimer(),
		recorder:     &attemptRecorder{},
	}
}

func (f *testFixture) newClient(opts ...nodeclient.NodeClientOptionFunc) *nodeclient.NodeClient {
	tmpOpts := []nodeclient.NodeClientOptionFunc{
		nodeclient.WithLogger(test.NewDiscardLogger()),
		nodeclient.WithSessionFactory(f.factory),
		nodeclient.WithRetryTimer(f.timer),
		nodeclient.WithFailedAttemptFunc(f.recorder.Record),
	}
	tmpOpts = append(tmpOpts, opts...)
	return nodeclient.New(testMinMajorVersion, tmpOpts...)
}

// expectConnect sets up a single successful attempt with the provided protocol major version
func (f *testFixture) expectConnect(major uint) {
	f.factory.EXPECT().
		NewStateQuerySession(gomock.Any(), gomock.Any()).
		Return(f.stateQuery, nil)
	f.factory.EXPECT().
		NewTxSubmissionSession(gomock.Any(), gomock.Any()).
		Return(f.txSubmission, nil)
	f.stateQuery.EXPECT().
		CurrentProtocolParameters(gomock.Any()).
		Return(testProtocolParams(major), nil)
}

// initializedClient returns a client that has been successfully initialized
func (f *testFixture) initializedClient(t *testing.T) *nodeclient.NodeClient {
	f.expectConnect(testMinMajorVersion)
	c := f.newClient()
	require.NoError(t, c.Initialize(context.Background(), nil))
	require.Equal(t, nodeclient.StateInitialized, c.State())
	return c
}

func testProtocolParams(major uint) *session.ProtocolParameters {
	return &session.ProtocolParameters{
		ProtocolVersion: session.ProtocolVersion{
			Major: major,
		},
	}
}

func TestNotInitialized(t *testing.T) {
	f := newTestFixture(t)
	c := f.newClient()
	assert.Equal(t, nodeclient.StateUninitialized, c.State())

	_, err := c.GetTipSlotNo(context.Background())
	require.ErrorIs(t, err, nodeclient.ErrNotInitialized)
	var notInitErr *nodeclient.NotInitializedError
	require.ErrorAs(t, err, &notInitErr)
	assert.Equal(t, "GetTipSlotNo", notInitErr.Method)
	assert.NotEmpty(t, notInitErr.Module)

	_, err = c.GetProtocolParams(context.Background())
	require.ErrorIs(t, err, nodeclient.ErrNotInitialized)
	require.ErrorAs(t, err, &notInitErr)
	assert.Equal(t, "GetProtocolParams", notInitErr.Method)

	_, err = c.SubmitTransaction(context.Background(), []byte{0x80})
	require.ErrorIs(t, err, nodeclient.ErrNotInitialized)
	require.ErrorAs(t, err, &notInitErr)
	assert.Equal(t, "SubmitTransaction", notInitErr.Method)
}

func TestGetTipSlotNo(t *testing.T) {
	testDefs := []struct {
		name         string
		tip          session.Tip
		expectedSlot uint64
	}{
		{
			name:         "Origin",
			tip:          session.OriginTip(),
			expectedSlot: 0,
		},
		{
			name:         "Slot",
			tip:          session.NewTip(12345, []byte{0xa, 0xb, 0xc}),
			expectedSlot: 12345,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			f := newTestFixture(t)
			c := f.initializedClient(t)
			f.stateQuery.EXPECT().
				LedgerTip(gomock.Any()).
				Return(testDef.tip, nil)
			slot, err := c.GetTipSlotNo(context.Background())
			require.NoError(t, err)
			assert.Equal(t, testDef.expectedSlot, slot)
		})
	}
}

func TestGetTipSlotNoError(t *testing.T) {
	f := newTestFixture(t)
	c := f.initializedClient(t)
	queryErr := errors.New("query failed")
	f.stateQuery.EXPECT().
		LedgerTip(gomock.Any()).
		Return(session.Tip{}, queryErr)
	_, err := c.GetTipSlotNo(context.Background())
	assert.Same(t, queryErr, err)
}

func TestGetProtocolParams(t *testing.T) {
	f := newTestFixture(t)
	c := f.initializedClient(t)
	expected := testProtocolParams(10)
	f.stateQuery.EXPECT().
		CurrentProtocolParameters(gomock.Any()).
		Return(expected, nil)
	pparams, err := c.GetProtocolParams(context.Background())
	require.NoError(t, err)
	assert.Same(t, expected, pparams)
}

func TestInitializeRetriesThenSucceeds(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newTestFixture(t)
	f.factory.EXPECT().
		NewStateQuerySession(gomock.Any(), gomock.Any()).
		Return(nil, errConnect).
		Times(nodeclient.DefaultMaxAttempts - 1)
	f.expectConnect(testMinMajorVersion)
	c := f.newClient()

	require.NoError(t, c.Initialize(context.Background(), nil))
	assert.Equal(t, nodeclient.StateInitialized, c.State())

	delays := f.timer.Delays()
	require.Len(t, delays, nodeclient.DefaultMaxAttempts-1)
	assert.Equal(t, nodeclient.DefaultRetryInitialInterval, delays[0])
	for i := 1; i < len(delays); i++ {
		assert.GreaterOrEqual(t, delays[i], delays[i-1])
		assert.InEpsilon(t, 1.5, float64(delays[i])/float64(delays[i-1]), 1e-6)
	}

	attempts := f.recorder.Attempts()
	require.Len(t, attempts, nodeclient.DefaultMaxAttempts-1)
	for i, attempt := range attempts {
		assert.Equal(t, i+1, attempt.Attempt)
		assert.Equal(t, nodeclient.DefaultMaxAttempts-(i+1), attempt.RetriesLeft)
		assert.Equal(t, delays[i], attempt.Delay)
		assert.Equal(t, nodeclient.InitDescription, attempt.Description)
		assert.ErrorIs(t, attempt.Err, errConnect)
	}
}

func TestInitializeExhausted(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newTestFixture(t)
	f.factory.EXPECT().
		NewStateQuerySession(gomock.Any(), gomock.Any()).
		Return(nil, errConnect).
		Times(nodeclient.DefaultMaxAttempts)
	c := f.newClient()

	err := c.Initialize(context.Background(), nil)
	require.ErrorIs(t, err, nodeclient.ErrInitializationExhausted)
	require.ErrorIs(t, err, errConnect)
	var exhaustedErr *nodeclient.InitializationExhaustedError
	require.ErrorAs(t, err, &exhaustedErr)
	assert.Equal(t, nodeclient.DefaultMaxAttempts, exhaustedErr.Attempts)
	assert.Equal(t, nodeclient.StateInitializing, c.State())

	attempts := f.recorder.Attempts()
	require.Len(t, attempts, nodeclient.DefaultMaxAttempts)
	last := attempts[len(attempts)-1]
	assert.Equal(t, nodeclient.DefaultMaxAttempts, last.Attempt)
	assert.Equal(t, 0, last.RetriesLeft)
	assert.Equal(t, time.Duration(0), last.Delay)
	assert.Len(t, f.timer.Delays(), nodeclient.DefaultMaxAttempts-1)

	// Further calls are no-ops and operations stay guarded
	require.NoError(t, c.Initialize(context.Background(), nil))
	_, err = c.GetTipSlotNo(context.Background())
	require.ErrorIs(t, err, nodeclient.ErrNotInitialized)
}

func TestInitializeMaxAttempts(t *testing.T) {
	f := newTestFixture(t)
	f.factory.EXPECT().
		NewStateQuerySession(gomock.Any(), gomock.Any()).
		Return(nil, errConnect).
		Times(3)
	c := f.newClient(
		nodeclient.WithMaxAttempts(3),
		nodeclient.WithRetryInitialInterval(100*time.Millisecond),
		nodeclient.WithRetryMaxInterval(120*time.Millisecond),
	)
	err := c.Initialize(context.Background(), nil)
	var exhaustedErr *nodeclient.InitializationExhaustedError
	require.ErrorAs(t, err, &exhaustedErr)
	assert.Equal(t, 3, exhaustedErr.Attempts)
	assert.Equal(
		t,
		[]time.Duration{100 * time.Millisecond, 120 * time.Millisecond},
		f.timer.Delays(),
	)
}

func TestInitializeContextCanceled(t *testing.T) {
	f := newTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.factory.EXPECT().
		NewStateQuerySession(gomock.Any(), gomock.Any()).
		Return(nil, context.Canceled)
	c := f.newClient()
	err := c.Initialize(ctx, nil)
	require.ErrorIs(t, err, nodeclient.ErrInitializationExhausted)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.recorder.Attempts(), 1)
	assert.Empty(t, f.timer.Delays())
}

func TestInitializeEraBoundary(t *testing.T) {
	f := newTestFixture(t)
	// Equal major version is compatible
	f.expectConnect(testMinMajorVersion)
	c := f.newClient()
	require.NoError(t, c.Initialize(context.Background(), nil))
	assert.Equal(t, nodeclient.StateInitialized, c.State())
	assert.Empty(t, f.recorder.Attempts())
}

func TestInitializeNodeSyncing(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newTestFixture(t)
	// Node is on an older era for two attempts, then catches up
	for range 2 {
		f.expectConnect(testMinMajorVersion - 1)
		f.stateQuery.EXPECT().Release(gomock.Any()).Return(nil)
		f.txSubmission.EXPECT().Shutdown(gomock.Any()).Return(nil)
	}
	f.expectConnect(testMinMajorVersion + 1)
	c := f.newClient()

	require.NoError(t, c.Initialize(context.Background(), nil))
	assert.Equal(t, nodeclient.StateInitialized, c.State())
	attempts := f.recorder.Attempts()
	require.Len(t, attempts, 2)
	for _, attempt := range attempts {
		assert.ErrorIs(t, attempt.Err, nodeclient.ErrNodeSyncing)
	}
}

func TestInitializeReleasesStateQueryOnTxSessionFailure(t *testing.T) {
	f := newTestFixture(t)
	f.factory.EXPECT().
		NewStateQuerySession(gomock.Any(), gomock.Any()).
		Return(f.stateQuery, nil)
	f.factory.EXPECT().
		NewTxSubmissionSession(gomock.Any(), gomock.Any()).
		Return(nil, errConnect)
	f.stateQuery.EXPECT().Release(gomock.Any()).Return(nil)
	c := f.newClient(nodeclient.WithMaxAttempts(1))
	err := c.Initialize(context.Background(), nil)
	require.ErrorIs(t, err, errConnect)
}

func TestInitializePassesConnectionConfig(t *testing.T) {
	f := newTestFixture(t)
	cfg := &session.ConnectionConfig{
		Network:    "preview",
		SocketPath: "/tmp/node.socket",
	}
	f.factory.EXPECT().
		NewStateQuerySession(gomock.Any(), cfg).
		Return(f.stateQuery, nil)
	f.factory.EXPECT().
		NewTxSubmissionSession(gomock.Any(), cfg).
		Return(f.txSubmission, nil)
	f.stateQuery.EXPECT().
		CurrentProtocolParameters(gomock.Any()).
		Return(testProtocolParams(testMinMajorVersion), nil)
	c := f.newClient()
	require.NoError(t, c.Initialize(context.Background(), cfg))
}

func TestInitializeIdempotent(t *testing.T) {
	f := newTestFixture(t)
	c := f.initializedClient(t)
	// No further factory calls are expected
	require.NoError(t, c.Initialize(context.Background(), nil))
	assert.Equal(t, nodeclient.StateInitialized, c.State())
}

func TestInitializeConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newTestFixture(t)
	f.expectConnect(testMinMajorVersion)
	c := f.newClient()
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Initialize(context.Background(), nil)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, nodeclient.StateInitialized, c.State())
}

func TestShutdownWaitsForBothSessions(t *testing.T) {
	defer goleak.VerifyNone(t)
	f := newTestFixture(t)
	c := f.initializedClient(t)
	var released, shutDown atomic.Bool
	f.stateQuery.EXPECT().
		Release(gomock.Any()).
		DoAndReturn(func(context.Context) error {
			time.Sleep(50 * time.Millisecond)
			released.Store(true)
			return nil
		})
	f.txSubmission.EXPECT().
		Shutdown(gomock.Any()).
		DoAndReturn(func(context.Context) error {
			time.Sleep(20 * time.Millisecond)
			shutDown.Store(true)
			return nil
		})
	require.NoError(t, c.Shutdown(context.Background()))
	assert.True(t, released.Load())
	assert.True(t, shutDown.Load())
	assert.Equal(t, nodeclient.StateUninitialized, c.State())
	_, err := c.GetTipSlotNo(context.Background())
	require.ErrorIs(t, err, nodeclient.ErrNotInitialized)
}

func TestShutdownBestEffort(t *testing.T) {
	f := newTestFixture(t)
	c := f.initializedClient(t)
	releaseErr := errors.New("release failed")
	var shutDown atomic.Bool
	f.stateQuery.EXPECT().
		Release(gomock.Any()).
		Return(releaseErr)
	f.txSubmission.EXPECT().
		Shutdown(gomock.Any()).
		DoAndReturn(func(context.Context) error {
			time.Sleep(20 * time.Millisecond)
			shutDown.Store(true)
			return nil
		})
	err := c.Shutdown(context.Background())
	require.ErrorIs(t, err, releaseErr)
	assert.True(t, shutDown.Load())
	assert.Equal(t, nodeclient.StateUninitialized, c.State())
}

func TestShutdownBeforeInitialize(t *testing.T) {
	f := newTestFixture(t)
	c := f.newClient()
	require.NoError(t, c.Shutdown(context.Background()))
	assert.Equal(t, nodeclient.StateUninitialized, c.State())
}

func TestShutdownAfterExhaustedAllowsRetry(t *testing.T) {
	f := newTestFixture(t)
	f.factory.EXPECT().
		NewStateQuerySession(gomock.Any(), gomock.Any()).
		Return(nil, errConnect)
	c := f.newClient(nodeclient.WithMaxAttempts(1))
	require.Error(t, c.Initialize(context.Background(), nil))
	assert.Equal(t, nodeclient.StateInitializing, c.State())
	require.NoError(t, c.Shutdown(context.Background()))
	assert.Equal(t, nodeclient.StateUninitialized, c.State())
	f.expectConnect(testMinMajorVersion)
	require.NoError(t, c.Initialize(context.Background(), nil))
	assert.Equal(t, nodeclient.StateInitialized, c.State())
}

func TestReinitializeAfterShutdown(t *testing.T) {
	f := newTestFixture(t)
	c := f.initializedClient(t)
	f.stateQuery.EXPECT().Release(gomock.Any()).Return(nil)
	f.txSubmission.EXPECT().Shutdown(gomock.Any()).Return(nil)
	require.NoError(t, c.Shutdown(context.Background()))
	f.expectConnect(testMinMajorVersion)
	require.NoError(t, c.Initialize(context.Background(), nil))
	assert.Equal(t, nodeclient.StateInitialized, c.State())
}

func TestInitializeMetrics(t *testing.T) {
	f := newTestFixture(t)
	reg := prometheus.NewPedanticRegistry()
	f.factory.EXPECT().
		NewStateQuerySession(gomock.Any(), gomock.Any()).
		Return(nil, errConnect).
		Times(2)
	f.expectConnect(testMinMajorVersion)
	c := f.newClient(nodeclient.WithMetricsRegisterer(reg))
	require.NoError(t, c.Initialize(context.Background(), nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Equal(
		t,
		float64(2),
		counterValue(families, "node_gateway_node_client_init_attempts_total", "failure"),
	)
	assert.Equal(
		t,
		float64(1),
		counterValue(families, "node_gateway_node_client_init_attempts_total", "success"),
	)
	assert.Equal(
		t,
		float64(nodeclient.StateInitialized),
		gaugeValue(families, "node_gateway_node_client_state"),
	)
}

func counterValue(families []*dto.MetricFamily, name string, outcome string) float64 {
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func gaugeValue(families []*dto.MetricFamily, name string) float64 {
	for _, family := range families {
		if family.GetName() == name && len(family.GetMetric()) > 0 {
			return family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Uninitialized", nodeclient.StateUninitialized.String())
	assert.Equal(t, "Initializing", nodeclient.StateInitializing.String())
	assert.Equal(t, "Initialized", nodeclient.StateInitialized.String())
	assert.Equal(t, "State(7)", nodeclient.State(7).String())
}
