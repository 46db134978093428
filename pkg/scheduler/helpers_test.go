package scheduler_test

import (
	"errors"
	"math"
	"sync"
)

type dispatch struct {
	work func()
	done func()
}

// recordingPool runs work inline and keeps done until the test calls Complete.
type recordingPool struct {
	mu         sync.Mutex
	dispatches []dispatch
}

func (p *recordingPool) Enqueue(work func(), done func()) error {
	p.mu.Lock()
	p.dispatches = append(p.dispatches, dispatch{work: work, done: done})
	p.mu.Unlock()

	work()
	return nil
}

func (p *recordingPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dispatches)
}

func (p *recordingPool) Complete(i int) {
	p.mu.Lock()
	d := p.dispatches[i]
	p.mu.Unlock()

	d.done()
}

var errPoolFull = errors.New("pool is full")

// limitedPool accepts the first limit units like recordingPool and declines
// the rest until Reopen. beforeDecline runs once, ahead of the first decline.
type limitedPool struct {
	recordingPool

	lmu           sync.Mutex
	limit         int
	calls         int
	beforeDecline func()
}

func (p *limitedPool) Enqueue(work func(), done func()) error {
	p.lmu.Lock()
	p.calls++
	accept := p.calls <= p.limit
	hook := p.beforeDecline
	if !accept {
		p.beforeDecline = nil
	}
	p.lmu.Unlock()

	if accept {
		return p.recordingPool.Enqueue(work, done)
	}
	if hook != nil {
		hook()
	}
	return errPoolFull
}

func (p *limitedPool) Reopen() {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.limit = math.MaxInt
}

type rejectingPool struct{}

func (rejectingPool) Enqueue(work func(), done func()) error {
	return errPoolFull
}

type countingMetrics struct {
	mu         sync.Mutex
	admitted   int
	rejected   int
	maxRunning int
	lastPend   int
}

func (m *countingMetrics) TaskAdmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admitted++
}

func (m *countingMetrics) TaskRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected++
}

func (m *countingMetrics) Occupancy(running, pending int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if running > m.maxRunning {
		m.maxRunning = running
	}
	m.lastPend = pending
}

func (m *countingMetrics) Admitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admitted
}
