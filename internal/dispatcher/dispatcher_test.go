package dispatcher

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}

	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	return d, logger
}

func TestDispatcher_SyncHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got Event
	d.Register(":PORTFOLIO:ENTITY:", func(e Event) (any, error) {
		got = e
		return "stored", nil
	})

	result, err := d.Dispatch(Event{Command: ":PORTFOLIO:ENTITY:", Args: []string{"property", "PROP-1a2b3c4d"}})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "stored" {
		t.Errorf("expected 'stored', got %v", result)
	}
	if len(got.Args) != 2 || got.Args[1] != "PROP-1a2b3c4d" {
		t.Errorf("handler saw wrong args: %v", got.Args)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(Event{Command: ":RECORD:UNKNOWN:"})

	if err == nil {
		t.Error("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), ":RECORD:UNKNOWN:") {
		t.Errorf("error should name the command, got %v", err)
	}
}

func TestDispatcher_BufferedHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var processed atomic.Int32
	var wg sync.WaitGroup
	wg.Add(3)

	d.Register(":RECORD:SERIES:", func(e Event) (any, error) {
		processed.Add(1)
		wg.Done()
		return nil, nil
	}, Buffered(100))

	// Dispatch 3 events
	for i := 0; i < 3; i++ {
		result, err := d.Dispatch(Event{Command: ":RECORD:SERIES:", Args: []string{fmt.Sprintf("TC-EVENT-%d", i)}})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result != "queued" {
			t.Errorf("expected 'queued', got %v", result)
		}
	}

	// Wait for processing
	wg.Wait()

	if processed.Load() != 3 {
		t.Errorf("expected 3 processed, got %d", processed.Load())
	}
}

func TestDispatcher_BufferedDropsWhenFull(t *testing.T) {
	d, _ := newTestDispatcher(t)

	// Block the handler so queue fills up
	block := make(chan struct{})
	d.Register(":RECORD:READING:", func(e Event) (any, error) {
		<-block
		return nil, nil
	}, Buffered(2))

	// Fill the queue (2 items) + 1 being processed
	d.Dispatch(Event{Command: ":RECORD:READING:"}) // being processed
	d.Dispatch(Event{Command: ":RECORD:READING:"}) // queued
	d.Dispatch(Event{Command: ":RECORD:READING:"}) // queued

	// This should be dropped
	_, err := d.Dispatch(Event{Command: ":RECORD:READING:"})

	if err == nil {
		t.Error("expected error when queue is full")
	}

	close(block)
}

func TestDispatcher_BufferedBlocking(t *testing.T) {
	d, _ := newTestDispatcher(t)

	block := make(chan struct{})
	d.Register(":TRACK:POINT:", func(e Event) (any, error) {
		<-block
		return nil, nil
	}, Buffered(1), Blocking())

	// First event starts processing
	d.Dispatch(Event{Command: ":TRACK:POINT:"})
	// Second event fills the queue
	d.Dispatch(Event{Command: ":TRACK:POINT:"})

	// Third event should block (test with timeout)
	done := make(chan struct{})
	go func() {
		d.Dispatch(Event{Command: ":TRACK:POINT:"})
		close(done)
	}()

	select {
	case <-done:
		t.Error("dispatch should have blocked")
	case <-time.After(50 * time.Millisecond):
		// Expected - dispatch is blocking
	}

	close(block)
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(":RECORD:SERIES:", func(e Event) (any, error) {
		return "ok", nil
	}, Logged())

	d.Dispatch(Event{Command: ":RECORD:SERIES:", Args: []string{"TC-EVENT-abc123", "0"}})

	// Give time for logging
	time.Sleep(10 * time.Millisecond)

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) < 2 {
		t.Errorf("expected at least 2 log messages, got %d", len(logger.messages))
	}
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(":RECORD:READING:", func(e Event) (any, error) {
		return nil, fmt.Errorf("gauge not cached")
	}, Logged())

	d.Dispatch(Event{Command: ":RECORD:READING:"})

	logger.mu.Lock()
	defer logger.mu.Unlock()

	hasError := false
	for _, msg := range logger.messages {
		if strings.HasPrefix(msg, "ERROR") {
			hasError = true
			break
		}
	}

	if !hasError {
		t.Error("expected error log message")
	}
}

func TestDispatcher_HasHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register(":TRACK:POINT:", func(e Event) (any, error) { return nil, nil })

	if !d.HasHandler(":TRACK:POINT:") {
		t.Error("expected handler to exist")
	}

	if d.HasHandler(":RECORD:SERIES:") {
		t.Error("expected handler to not exist")
	}
}

func TestDispatcher_QueueLengths(t *testing.T) {
	d, _ := newTestDispatcher(t)

	if lengths := d.QueueLengths(); len(lengths) != 0 {
		t.Errorf("expected no buffered commands, got %v", lengths)
	}

	block := make(chan struct{})
	started := make(chan struct{}, 8)
	d.Register(":RECORD:READING:", func(e Event) (any, error) {
		started <- struct{}{}
		<-block
		return nil, nil
	}, Buffered(8))
	d.Register(":RECORD:SERIES:", func(e Event) (any, error) { return nil, nil }, Buffered(8))

	// The first event comes off the buffer immediately; wait until its
	// handler holds so the next two stay queued.
	d.Dispatch(Event{Command: ":RECORD:READING:"})
	<-started
	d.Dispatch(Event{Command: ":RECORD:READING:"})
	d.Dispatch(Event{Command: ":RECORD:READING:"})

	lengths := d.QueueLengths()
	if lengths[":RECORD:READING:"] != 2 {
		t.Errorf("expected 2 queued readings, got %d", lengths[":RECORD:READING:"])
	}
	if lengths[":RECORD:SERIES:"] != 0 {
		t.Errorf("expected empty series queue, got %d", lengths[":RECORD:SERIES:"])
	}

	close(block)
}

func TestDispatcher_DrainWaitsForSlowHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var handled atomic.Int32
	d.Register(":RECORD:READING:", func(e Event) (any, error) {
		time.Sleep(50 * time.Millisecond)
		handled.Add(1)
		return nil, nil
	}, Buffered(10))

	for i := 0; i < 3; i++ {
		if _, err := d.Dispatch(Event{Command: ":RECORD:READING:"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// The queue reads empty as soon as the last event is taken off the
	// buffer; Drain must wait for the handler itself to return.
	if err := d.Drain(5 * time.Second); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}
	if got := handled.Load(); got != 3 {
		t.Errorf("expected 3 handled events after drain, got %d", got)
	}
}

func TestDispatcher_DrainTimeout(t *testing.T) {
	d, _ := newTestDispatcher(t)

	block := make(chan struct{})
	defer close(block)
	d.Register(":RECORD:READING:", func(e Event) (any, error) {
		<-block
		return nil, nil
	}, Buffered(10))

	d.Dispatch(Event{Command: ":RECORD:READING:"})

	if err := d.Drain(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error while a handler is blocked")
	}
}

func TestDispatcher_DrainWithoutBufferedHandlers(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Register(":PORTFOLIO:ENTITY:", func(e Event) (any, error) { return nil, nil })

	if err := d.Drain(time.Second); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDispatcher_CombinedOptions(t *testing.T) {
	d, logger := newTestDispatcher(t)

	var processed atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1)

	d.Register(":PORTFOLIO:ENTITY:", func(e Event) (any, error) {
		processed.Add(1)
		wg.Done()
		return "done", nil
	}, Buffered(100), Logged())

	result, err := d.Dispatch(Event{Command: ":PORTFOLIO:ENTITY:", Args: []string{"mortgage", "MTG-9f8e7d6c"}})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "queued" {
		t.Errorf("expected 'queued', got %v", result)
	}

	wg.Wait()

	if processed.Load() != 1 {
		t.Errorf("expected 1 processed, got %d", processed.Load())
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) < 2 {
		t.Errorf("expected log messages, got %d", len(logger.messages))
	}
}
