package cli

import (
	"context"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
)

func newTestSignalHandler(cancel context.CancelFunc) *SignalHandler {
	return NewSignalHandler(cancel, hclog.NewNullLogger())
}

func TestSignalHandler_New(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := newTestSignalHandler(cancel)

	if handler == nil {
		t.Fatal("NewSignalHandler(cancel) should not return nil")
	}

	if handler.cancel == nil {
		t.Error("SignalHandler.cancel should be set")
	}

	if handler.signals == nil {
		t.Error("SignalHandler.signals channel should be initialized")
	}

	if handler.shutdown == nil {
		t.Error("SignalHandler.shutdown channel should be initialized")
	}

	if handler.onShutdown == nil {
		t.Error("SignalHandler.onShutdown slice should be initialized")
	}
}

func TestSignalHandler_GracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	handler := newTestSignalHandler(cancel)

	callbackCalled := false

	handler.OnShutdown(func() {
		callbackCalled = true
	})

	handler.StartWithNotify(false)
	defer handler.Stop()

	// Send SIGINT
	handler.signals <- syscall.SIGINT

	// Wait for shutdown to complete
	select {
	case <-handler.shutdown:
		// Shutdown completed
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown did not complete in time")
	}

	if !callbackCalled {
		t.Error("SIGINT should trigger callback execution")
	}

	select {
	case <-ctx.Done():
		// Context was cancelled
	case <-time.After(100 * time.Millisecond):
		t.Error("SIGINT should trigger context cancellation")
	}
}

func TestSignalHandler_MultipleCallbacks(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := newTestSignalHandler(cancel)

	var mu sync.Mutex
	callOrder := []int{}

	handler.OnShutdown(func() {
		mu.Lock()
		callOrder = append(callOrder, 1)
		mu.Unlock()
	})

	handler.OnShutdown(func() {
		mu.Lock()
		callOrder = append(callOrder, 2)
		mu.Unlock()
	})

	handler.OnShutdown(func() {
		mu.Lock()
		callOrder = append(callOrder, 3)
		mu.Unlock()
	})

	handler.StartWithNotify(false)
	defer handler.Stop()

	// Send SIGTERM
	handler.signals <- syscall.SIGTERM

	// Wait for shutdown to complete
	select {
	case <-handler.shutdown:
		// Shutdown completed
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown did not complete in time")
	}

	mu.Lock()
	defer mu.Unlock()

	if len(callOrder) != 3 {
		t.Errorf("Expected 3 callbacks to be called, got %d", len(callOrder))
	}

	// Verify callbacks were called in registration order
	for i, expected := range []int{1, 2, 3} {
		if i >= len(callOrder) {
			t.Errorf("Missing callback at index %d", i)
			continue
		}
		if callOrder[i] != expected {
			t.Errorf("Callback %d: expected %d, got %d", i, expected, callOrder[i])
		}
	}
}

func TestSignalHandler_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	handler := newTestSignalHandler(cancel)

	handler.StartWithNotify(false)
	defer handler.Stop()

	// Send SIGINT
	handler.signals <- syscall.SIGINT

	// Wait for shutdown to complete
	select {
	case <-handler.shutdown:
		// Shutdown completed
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown did not complete in time")
	}

	// Verify context was cancelled
	select {
	case <-ctx.Done():
		// Context was cancelled
	case <-time.After(100 * time.Millisecond):
		t.Error("Context should be cancelled on signal")
	}

	if ctx.Err() != context.Canceled {
		t.Errorf("Expected context.Canceled error, got %v", ctx.Err())
	}
}

func TestSignalHandler_Stop(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := newTestSignalHandler(cancel)
	handler.StartWithNotify(false)

	// Stop should not panic, and the goroutine should exit
	handler.Stop()

	select {
	case <-handler.done:
		// Goroutine exited
	case <-time.After(1 * time.Second):
		t.Fatal("Handler goroutine did not exit after Stop")
	}

	// A signal after Stop is ignored; the buffered channel absorbs it
	handler.signals <- syscall.SIGINT
	time.Sleep(50 * time.Millisecond)

	select {
	case <-handler.shutdown:
		t.Error("Shutdown should not trigger after Stop")
	default:
	}
}
