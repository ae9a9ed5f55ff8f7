// Copyright 2024 NextCare Systems
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

package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	run   func(calls int64)
	calls atomic.Int64
}

func (f *fakeRunner) RunOnce(_ context.Context) (CycleReport, error) {
	n := f.calls.Add(1)
	if f.run != nil {
		f.run(n)
	}
	return CycleReport{}, nil
}

func waitForCalls(t *testing.T, runner *fakeRunner, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runner.calls.Load() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected at least %d cycles, got %d", want, runner.calls.Load())
}

func TestSupervisorRunsCyclesOnInterval(t *testing.T) {
	runner := &fakeRunner{}
	reader := &fakeReader{}
	s := NewSupervisor(runner, reader, "127.0.0.1", 5020, 10*time.Millisecond)

	s.Start()
	waitForCalls(t, runner, 3)
	s.Stop()

	assert.False(t, s.Status().Running)
	assert.Equal(t, 1, reader.disconnectCount())
}

func TestSupervisorStartIsIdempotent(t *testing.T) {
	runner := &fakeRunner{}
	reader := &fakeReader{}
	s := NewSupervisor(runner, reader, "127.0.0.1", 5020, time.Hour)

	s.Start()
	// Second Start must not spawn a second loop.
	s.Start()
	waitForCalls(t, runner, 1)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), runner.calls.Load())
	s.Stop()
}

func TestSupervisorStopIsIdempotent(t *testing.T) {
	runner := &fakeRunner{}
	reader := &fakeReader{}
	s := NewSupervisor(runner, reader, "127.0.0.1", 5020, 10*time.Millisecond)

	s.Start()
	waitForCalls(t, runner, 1)
	s.Stop()
	s.Stop()

	assert.False(t, s.Status().Running)
	// Disconnect happens once per actual stop.
	assert.Equal(t, 1, reader.disconnectCount())
}

func TestSupervisorStopWithoutStart(t *testing.T) {
	s := NewSupervisor(&fakeRunner{}, &fakeReader{}, "127.0.0.1", 5020, time.Second)
	s.Stop()
	assert.False(t, s.Status().Running)
}

func TestSupervisorOverrunStartsNextCycleImmediately(t *testing.T) {
	// Each cycle takes ~3x the interval; cycles must still run back to back
	// instead of being skipped.
	runner := &fakeRunner{run: func(int64) { time.Sleep(30 * time.Millisecond) }}
	reader := &fakeReader{}
	s := NewSupervisor(runner, reader, "127.0.0.1", 5020, 10*time.Millisecond)

	s.Start()
	waitForCalls(t, runner, 3)
	s.Stop()
}

func TestSupervisorRecoversFromPanic(t *testing.T) {
	runner := &fakeRunner{run: func(calls int64) {
		if calls == 1 {
			panic("broken cycle")
		}
	}}
	reader := &fakeReader{}
	s := NewSupervisor(runner, reader, "127.0.0.1", 5020, 10*time.Millisecond)

	s.Start()
	// The loop survives the panic and keeps cycling after a full sleep.
	waitForCalls(t, runner, 3)
	assert.True(t, s.Status().Running)
	s.Stop()
}

func TestSupervisorStatus(t *testing.T) {
	reader := &fakeReader{connected: true}
	s := NewSupervisor(&fakeRunner{}, reader, "plc.example.com", 502, 5*time.Second)

	status := s.Status()
	assert.False(t, status.Running)
	assert.True(t, status.Connected)
	assert.Equal(t, "plc.example.com", status.Host)
	assert.Equal(t, 502, status.Port)
	assert.Equal(t, 5*time.Second, status.Interval)

	s.Start()
	require.True(t, s.Status().Running)
	s.Stop()
	assert.False(t, s.Status().Running)
}
