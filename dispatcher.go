package finance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrDispatcherClosed is returned when dispatching to a closed Dispatcher.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// CommitFunc is called after each applied command with the resulting state.
// It is where collaborators persist, journal or invalidate caches.
type CommitFunc func(ctx context.Context, s *State, cmd Command) error

// Dispatcher is the single writer of a state. Commands are applied one at a
// time in submission order by a dedicated goroutine.
type Dispatcher struct {
	engine *Engine
	hooks  []CommitFunc

	requests chan dispatchRequest
	done     chan struct{}
	close    sync.Once

	mu    sync.RWMutex
	state *State
}

type dispatchRequest struct {
	ctx   context.Context
	cmd   Command
	reset ResetFunc // replaces the state instead of applying cmd.
	reply chan dispatchResult
}

type dispatchResult struct {
	state *State
	err   error
}

// NewDispatcher starts a dispatcher owning initial. Hooks are called in order
// after each command.
func NewDispatcher(engine *Engine, initial *State, hooks ...CommitFunc) *Dispatcher {
	d := &Dispatcher{
		engine:   engine,
		hooks:    hooks,
		requests: make(chan dispatchRequest),
		done:     make(chan struct{}),
		state:    initial,
	}
	go d.loop()
	return d
}

// State returns the current state. It must not be modified.
func (d *Dispatcher) State() *State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Dispatch applies cmd and returns the resulting state.
//
// The state is committed even if a hook fails, the hooks errors are returned
// joined.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (*State, error) {
	return d.submit(ctx, dispatchRequest{ctx: ctx, cmd: cmd})
}

// ResetFunc produces the state replacing the current one.
type ResetFunc func(ctx context.Context) (*State, error)

// Reset replaces the state, once the commands already submitted are applied.
// Hooks are not called.
func (d *Dispatcher) Reset(ctx context.Context, s *State) error {
	if s == nil {
		panic("finance: Reset to a nil state")
	}
	_, err := d.ResetWith(ctx, func(context.Context) (*State, error) { return s, nil })
	return err
}

// ResetWith runs fn in turn with the commands and replaces the state by its
// result. No command is applied, and no hook runs, while fn is running, so
// that fn can write the new state to a store without being overwritten, e.g.
// on import. When fn fails the state is left unchanged.
func (d *Dispatcher) ResetWith(ctx context.Context, fn ResetFunc) (*State, error) {
	return d.submit(ctx, dispatchRequest{ctx: ctx, reset: fn})
}

func (d *Dispatcher) submit(ctx context.Context, req dispatchRequest) (*State, error) {
	select {
	case <-d.done:
		return nil, ErrDispatcherClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req.reply = make(chan dispatchResult, 1)
	select {
	case <-d.done:
		return nil, ErrDispatcherClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case d.requests <- req:
	}
	res := <-req.reply
	return res.state, res.err
}

// Close stops the dispatcher. Commands already accepted are completed.
func (d *Dispatcher) Close() {
	d.close.Do(func() { close(d.done) })
}

func (d *Dispatcher) loop() {
	for {
		select {
		case <-d.done:
			return
		case req := <-d.requests:
			req.reply <- d.commit(req)
		}
	}
}

func (d *Dispatcher) commit(req dispatchRequest) dispatchResult {
	if req.reset != nil {
		next, err := req.reset(req.ctx)
		if err != nil {
			return dispatchResult{err: err}
		}
		if next == nil {
			return dispatchResult{err: errors.New("reset to a nil state")}
		}
		d.mu.Lock()
		d.state = next
		d.mu.Unlock()
		return dispatchResult{state: next}
	}
	prev := d.State()
	next := d.engine.Apply(prev, req.cmd)
	if next == prev {
		return dispatchResult{state: next}
	}
	d.mu.Lock()
	d.state = next
	d.mu.Unlock()

	var errs []error
	for _, hook := range d.hooks {
		if err := hook(req.ctx, next, req.cmd); err != nil {
			log.Printf("commit hook failed for %s: %v", req.cmd.What(), err)
			errs = append(errs, fmt.Errorf("%s: %w", req.cmd.What(), err))
		}
	}
	return dispatchResult{state: next, err: errors.Join(errs...)}
}
