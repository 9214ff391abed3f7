package graceful

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestGracefulContext(t *testing.T) {
	codes := make(chan int, 1)
	exit = func(code int) { codes <- code }
	defer func() { exit = os.Exit }()

	ctx, cancel := Context(context.Background())
	defer cancel()

	// Simulate sending an interrupt signal to the process.
	go func() {
		time.Sleep(100 * time.Millisecond) // Give the signal handler time to get ready
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
			t.Errorf("Failed to send SIGINT: %v", err)
		}
	}()

	select {
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.Canceled) {
			t.Errorf("Expected context.Canceled error, got %v", ctx.Err())
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Test timed out waiting for context to be canceled.")
	}

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("Failed to send second SIGINT: %v", err)
	}
	select {
	case code := <-codes:
		if code != 1 {
			t.Errorf("Expected exit code 1, got %d", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Second signal did not exit")
	}
}

func TestGracefulContext_ParentCancel(t *testing.T) {
	parent, stop := context.WithCancel(context.Background())
	ctx, cancel := Context(parent)
	defer cancel()

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("Context not canceled with its parent")
	}
}
