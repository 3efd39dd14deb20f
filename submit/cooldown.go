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

package submit

import (
	"errors"
	"sync"
	"time"
)

// DefaultCooldownWindow is the minimum interval between accepted ledger
// writes. All notes for one identity spend from the same funding address,
// so overlapping writes risk double-spending the same unconfirmed output
const DefaultCooldownWindow = 90 * time.Second

// CooldownStatus is a point-in-time view of the write gate
type CooldownStatus struct {
	Active    bool
	Remaining time.Duration
}

// Cooldown is the process-wide write gate. It fails closed: any write
// attempted inside the window of the previous accepted write is rejected
// before touching the network. It's an injected instance rather than
// package-level state so tests can construct independent gates
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	last   time.Time
	// now is replaceable for tests
	now func() time.Time
}

// NewCooldown creates a write gate with the given window. A zero or
// negative window uses the default
func NewCooldown(window time.Duration) *Cooldown {
	if window <= 0 {
		window = DefaultCooldownWindow
	}
	return &Cooldown{
		window: window,
		now:    time.Now,
	}
}

// Check returns nil when a write may proceed, or a CooldownActiveError
// carrying the remaining wait when the gate is closed
func (c *Cooldown) Check() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last.IsZero() {
		return nil
	}
	elapsed := c.now().Sub(c.last)
	if elapsed < c.window {
		return &CooldownActiveError{
			Remaining: c.window - elapsed,
		}
	}
	return nil
}

// Accept records the current instant as the new baseline. Called only after
// a write has been successfully submitted, never on a failed attempt
func (c *Cooldown) Accept() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = c.now()
}

// Status reports whether the gate is currently closed and for how long
func (c *Cooldown) Status() CooldownStatus {
	err := c.Check()
	if err == nil {
		return CooldownStatus{}
	}
	var cooldownErr *CooldownActiveError
	if errors.As(err, &cooldownErr) {
		return CooldownStatus{
			Active:    true,
			Remaining: cooldownErr.Remaining,
		}
	}
	return CooldownStatus{Active: true}
}
