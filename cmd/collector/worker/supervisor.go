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
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// defaultStopTimeout bounds how long Stop waits for the loop to acknowledge
// before abandoning it.
const defaultStopTimeout = 5 * time.Second

// CycleRunner is implemented by *Cycle.
type CycleRunner interface {
	RunOnce(ctx context.Context) (CycleReport, error)
}

// Status is a point-in-time view of the supervisor, safe to read from any
// goroutine.
type Status struct {
	Host      string
	Interval  time.Duration
	Port      int
	Running   bool
	Connected bool
}

// Supervisor owns the acquisition cadence: one background goroutine running
// strictly sequential cycles on a fixed interval with drift correction. It is
// constructed by the composition root and passed around explicitly, there is
// no package-level instance.
type Supervisor struct {
	runner      CycleRunner
	reader      RegisterReader
	stop        chan struct{}
	done        chan struct{}
	host        string
	interval    time.Duration
	stopTimeout time.Duration
	port        int
	mu          sync.Mutex
	running     bool
}

func NewSupervisor(runner CycleRunner, reader RegisterReader, host string, port int, interval time.Duration) *Supervisor {
	return &Supervisor{
		runner:      runner,
		reader:      reader,
		host:        host,
		port:        port,
		interval:    interval,
		stopTimeout: defaultStopTimeout,
	}
}

// Start launches the acquisition loop. Calling Start while already running is
// a logged no-op.
func (s *Supervisor) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		zap.S().Warnf("Data collection is already running")
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
	zap.S().Infof("Data collection started")
}

// Stop signals the loop to exit after its current iteration, waits up to the
// stop timeout, then disconnects the protocol client. Idempotent.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		zap.S().Warnf("Data collection is not running")
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(s.stopTimeout):
		zap.S().Warnf("Acquisition loop did not stop within %s, abandoning it", s.stopTimeout)
	}

	s.reader.Disconnect()
	zap.S().Infof("Data collection stopped")
}

// Status reports the current supervisor state.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return Status{
		Running:   running,
		Connected: s.reader.IsConnected(),
		Host:      s.host,
		Port:      s.port,
		Interval:  s.interval,
	}
}

// loop runs cycles back to back, sleeping max(0, interval-elapsed) between
// them. The stop channel is observed at the top of each iteration and during
// the inter-cycle sleep; a cycle in progress always completes.
func (s *Supervisor) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	zap.S().Infof("Starting data collection loop with %s interval", s.interval)

	for {
		select {
		case <-stop:
			zap.S().Infof("Data collection loop exiting")
			return
		default:
		}

		start := time.Now()
		panicked := s.runProtected()
		elapsed := time.Since(start)
		cyclesTotal.Inc()
		cycleDuration.Observe(elapsed.Seconds())

		var sleep time.Duration
		switch {
		case panicked:
			// A faulted cycle gets a full interval of quiet before the retry.
			sleep = s.interval
		case elapsed >= s.interval:
			cycleOverruns.Inc()
			zap.S().Warnf("Data collection took %.2fs, longer than interval %s", elapsed.Seconds(), s.interval)
		default:
			sleep = s.interval - elapsed
		}

		if sleep > 0 {
			select {
			case <-stop:
				zap.S().Infof("Data collection loop exiting")
				return
			case <-time.After(sleep):
			}
		}
	}
}

// runProtected keeps a panicking cycle from killing the loop; only an explicit
// Stop terminates it.
func (s *Supervisor) runProtected() (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			cycleFailures.Inc()
			stackTrace := make([]byte, 1024*8)
			written := runtime.Stack(stackTrace, false)
			zap.S().Errorw(
				"Recovered panic in data collection cycle",
				"panic", r,
				"stackTrace", string(stackTrace[:written]),
			)
		}
	}()

	// Cycle-level errors (snapshot load, commit) are already logged and
	// counted inside RunOnce; the loop just keeps its cadence.
	_, _ = s.runner.RunOnce(context.Background())
	return false
}
