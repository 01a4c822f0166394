// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// MockService is a suture.Service that blocks until canceled, optionally
// failing its first few runs.
type MockService struct {
	name       string
	startCount atomic.Int32
	failures   atomic.Int32
	maxFails   int32
	block      chan struct{}
}

func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

// failing returns a service whose first n runs fail immediately.
func failing(name string, n int32) *MockService {
	return &MockService{name: name, maxFails: n}
}

// stuck returns a service that ignores cancellation until released.
func stuck(name string) *MockService {
	return &MockService{name: name, block: make(chan struct{})}
}

func (m *MockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)

	if m.maxFails > 0 && m.failures.Add(1) <= m.maxFails {
		return errors.New("simulated failure")
	}
	if m.block != nil {
		<-m.block
		return nil
	}

	<-ctx.Done()
	return ctx.Err()
}

func (m *MockService) StartCount() int32 {
	return m.startCount.Load()
}

func (m *MockService) String() string {
	return m.name
}
