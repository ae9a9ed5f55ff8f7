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

package main

import (
	"math"
	"math/rand"
	"time"
)

// waveform describes one simulated sensor: a sine swing around a base value
// with uniform noise, clamped to a realistic range.
type waveform struct {
	name      string
	base      float64
	amplitude float64
	frequency float64
	noise     float64
	min       float64
	max       float64
}

// profiles mirrors the default register mapping of the monitoring dashboard:
// D20 temperature, D21 vibration, D22 shock, D23 oil supply, D24 sound.
var profiles = map[uint16]waveform{
	20: {name: "Temperature", base: 25, amplitude: 10, frequency: 0.1, noise: 2, min: 20, max: 80},
	21: {name: "Vibration", base: 50, amplitude: 15, frequency: 0.2, noise: 5, min: 0, max: 100},
	22: {name: "Shock", base: 2, amplitude: 1.5, frequency: 0.3, noise: 0.5, min: 0, max: 10},
	23: {name: "Oil Supply", base: 85, amplitude: 10, frequency: 0.05, noise: 3, min: 0, max: 100},
	24: {name: "Sound", base: 60, amplitude: 8, frequency: 0.15, noise: 4, min: 30, max: 90},
}

// Simulator produces engineering values for the simulated registers.
type Simulator struct {
	start time.Time
	rng   *rand.Rand
}

func NewSimulator(seed int64) *Simulator {
	return &Simulator{
		start: time.Now(),
		/* #nosec G404 -- simulated sensor noise, not cryptography */
		rng: rand.New(rand.NewSource(seed)),
	}
}

// ValueAt returns the engineering value of a register at the given elapsed
// simulation time, rounded to the two decimal places the wire format can
// carry. The second return is false for registers outside the simulated set.
func (s *Simulator) ValueAt(register uint16, elapsed time.Duration) (float64, bool) {
	profile, ok := profiles[register]
	if !ok {
		return 0, false
	}

	seconds := elapsed.Seconds()
	sine := profile.amplitude * math.Sin(profile.frequency*seconds)
	noise := (s.rng.Float64()*2 - 1) * profile.noise

	value := profile.base + sine + noise
	value = math.Max(profile.min, math.Min(profile.max, value))
	return math.Round(value*100) / 100, true
}

// Value returns the current engineering value of a register.
func (s *Simulator) Value(register uint16) (float64, bool) {
	return s.ValueAt(register, time.Since(s.start))
}

// RawValue returns the fixed-point wire representation, scaled by 100.
func (s *Simulator) RawValue(register uint16) (uint16, bool) {
	value, ok := s.Value(register)
	if !ok {
		return 0, false
	}
	return uint16(math.Round(value * 100)), true
}

// SimulatedRegisters returns the registers this simulator serves.
func SimulatedRegisters() []uint16 {
	return []uint16{20, 21, 22, 23, 24}
}
