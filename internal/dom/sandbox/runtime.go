package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

var ErrTimeout = errors.New("handler execution timeout exceeded")

// Runtime wraps a goja VM.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	console []LogEntry
	timers  []goja.Callable
}

// New creates a new sandboxed runtime
func New(config Config) (*Runtime, error) {
	r := &Runtime{config: config}
	if err := r.reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// Run evaluates handler as the body of a function called with this bound
// to b.This and a single event argument.
func (r *Runtime) Run(ctx context.Context, handler string, b Binding) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, errors.New("runtime is closed")
	}

	start := time.Now()
	r.console = nil
	r.timers = nil

	timeout := r.config.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	timer := time.NewTimer(timeout)
	done := make(chan struct{})
	exited := make(chan struct{})
	defer func() {
		timer.Stop()
		close(done)
		<-exited
		r.vm.ClearInterrupt()
	}()

	go func() {
		defer close(exited)
		select {
		case <-timer.C:
			r.vm.Interrupt(ErrTimeout)
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	proxies := newProxyFactory(r.vm, b.Doc)
	if err := r.vm.Set("document", proxies.document()); err != nil {
		return nil, err
	}
	event := proxies.event(b.Event)

	fnVal, err := r.vm.RunString("(function(event) {\n" + handler + "\n})")
	if err != nil {
		return nil, r.translate(err)
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, fmt.Errorf("handler did not compile to a function")
	}

	val, err := fn(proxies.element(b.This), event)
	if err != nil {
		return nil, r.translate(err)
	}

	if err := r.drainTimers(); err != nil {
		return nil, err
	}

	return &Result{
		Value:    export(val),
		Console:  append([]LogEntry(nil), r.console...),
		Duration: time.Since(start),
	}, nil
}

func (r *Runtime) drainTimers() error {
	limit := r.config.MaxTimers
	for ran := 0; len(r.timers) > 0 && ran < limit; ran++ {
		next := r.timers[0]
		r.timers = r.timers[1:]
		if _, err := next(goja.Undefined()); err != nil {
			return r.translate(err)
		}
	}
	r.timers = nil
	return nil
}

// translate unwraps interrupts into the error passed to Interrupt.
func (r *Runtime) translate(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return cause
		}
		return ErrTimeout
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		return fmt.Errorf("handler threw: %s", exception.Value().String())
	}
	return err
}

func (r *Runtime) reset() error {
	vm := goja.New()
	if r.config.MaxCallStack > 0 {
		vm.SetMaxCallStackSize(r.config.MaxCallStack)
	}

	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	console := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error"} {
		if err := console.Set(level, r.consoleFunc(level)); err != nil {
			return err
		}
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}

	schedule := func(call goja.FunctionCall) goja.Value {
		if fn, ok := goja.AssertFunction(call.Argument(0)); ok {
			r.timers = append(r.timers, fn)
		}
		return vm.ToValue(len(r.timers))
	}
	if err := vm.Set("setTimeout", schedule); err != nil {
		return err
	}
	if err := vm.Set("queueMicrotask", schedule); err != nil {
		return err
	}

	r.vm = vm
	r.console = nil
	r.timers = nil
	return nil
}

func (r *Runtime) consoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if !r.config.EnableConsole {
			return goja.Undefined()
		}
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		return goja.Undefined()
	}
}

// Reset replaces the VM so no globals leak into the next handler.
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reset()
}

// Close releases the VM.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	r.timers = nil
	return nil
}

func export(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}
