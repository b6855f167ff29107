package sandbox

import (
	"context"
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("sandbox pool is closed")

// PoolStats is a point-in-time view of a Pool.
type PoolStats struct {
	Size   int  `json:"size"`
	Idle   int  `json:"idle"`
	InUse  int  `json:"in_use"`
	Closed bool `json:"closed"`
}

// Pool lends out a fixed number of runtimes so concurrent fills never share
// a JavaScript VM.
type Pool struct {
	config Config
	size   int
	idle   chan *Runtime
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewPool starts size runtimes, two when size is not positive.
func NewPool(config Config, size int) (*Pool, error) {
	if size <= 0 {
		size = 2
	}
	p := &Pool{
		config: config,
		size:   size,
		idle:   make(chan *Runtime, size),
		done:   make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		rt, err := New(config)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		p.idle <- rt
	}
	return p, nil
}

// Acquire waits for an idle runtime, for ctx, or for Close.
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}
	select {
	case rt := <-p.idle:
		return rt, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release resets rt and hands it back. A runtime that fails to reset is
// replaced with a fresh one so the pool keeps its size.
func (p *Pool) Release(rt *Runtime) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return rt.Close()
	}
	resetErr := rt.Reset()
	if resetErr != nil {
		_ = rt.Close()
		fresh, err := New(p.config)
		if err != nil {
			return errors.Join(resetErr, err)
		}
		rt = fresh
	}
	select {
	case p.idle <- rt:
	default:
		_ = rt.Close()
	}
	return resetErr
}

// Run executes handler on a borrowed runtime.
func (p *Pool) Run(ctx context.Context, handler string, b Binding) (*Result, error) {
	rt, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = p.Release(rt) }()
	return rt.Run(ctx, handler, b)
}

// Close wakes any waiters and closes idle runtimes. Borrowed runtimes are
// closed as they are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	for {
		select {
		case rt := <-p.idle:
			_ = rt.Close()
		default:
			return nil
		}
	}
}

// Stats reports pool occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	idle := len(p.idle)
	return PoolStats{Size: p.size, Idle: idle, InUse: p.size - idle, Closed: p.closed}
}
