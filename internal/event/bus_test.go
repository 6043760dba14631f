package event

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/termwatch/internal/logging"
)

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	id := bus.Subscribe(TypeSessionOpened, func(e Event) { received = e })
	if id == "" {
		t.Fatal("Subscribe should return a non-empty ID")
	}

	bus.Publish(NewSessionOpenedEvent("01ABC", "build", false))

	opened, ok := received.(SessionOpenedEvent)
	if !ok {
		t.Fatalf("expected SessionOpenedEvent, got %T", received)
	}
	if opened.SessionID != "01ABC" || opened.Label != "build" {
		t.Errorf("unexpected payload: %+v", opened)
	}
	if opened.Timestamp().IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestBus_OrderSpecificBeforeWildcard(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "wild") })
	bus.Subscribe(TypeMonitorTick, func(Event) { order = append(order, "first") })
	bus.Subscribe(TypeMonitorTick, func(Event) { order = append(order, "second") })
	bus.Subscribe(TypeStateCleared, func(Event) { order = append(order, "other") })

	bus.Publish(NewTickEvent(2, 1, 0, false, true))

	want := []string{"first", "second", "wild"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("dispatch order = %v, expected %v", order, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	keep := bus.Subscribe(TypeMonitorEnabled, func(Event) { calls++ })
	drop := bus.Subscribe(TypeMonitorEnabled, func(Event) { calls += 100 })

	if !bus.Unsubscribe(drop) {
		t.Fatal("Unsubscribe should find the subscription")
	}
	if bus.Unsubscribe(drop) {
		t.Error("second Unsubscribe should report false")
	}

	bus.Publish(NewMonitorEnabledEvent(0))
	if calls != 1 {
		t.Errorf("calls = %d, expected 1", calls)
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, expected 1", bus.SubscriptionCount())
	}
	_ = keep
}

func TestBus_PanicIsRecoveredAndLogged(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWriterLogger(&buf, logging.LevelDebug))

	reached := false
	bus.Subscribe(TypeNotificationSent, func(Event) { panic("boom") })
	bus.Subscribe(TypeNotificationSent, func(Event) { reached = true })

	bus.Publish(NewNotificationSentEvent("s", "build", "msg"))

	if !reached {
		t.Error("handler after the panicking one should still run")
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe(TypeSessionClosed, func(Event) {})
	bus.SubscribeAll(func(Event) {})

	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear", bus.SubscriptionCount())
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				bus.Publish(NewClassifierFailedEvent("s", "timeout", "deadline exceeded"))
			}
		}()
	}
	wg.Wait()

	if count != 500 {
		t.Errorf("count = %d, expected 500", count)
	}
}

func TestEventTypes(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewSessionOpenedEvent("a", "b", true), TypeSessionOpened},
		{NewSessionClosedEvent("a"), TypeSessionClosed},
		{NewMonitorEnabledEvent(5), TypeMonitorEnabled},
		{NewMonitorDisabledEvent(), TypeMonitorDisabled},
		{NewTickEvent(0, 0, 0, true, false), TypeMonitorTick},
		{NewStateClearedEvent(3), TypeStateCleared},
		{NewNotificationSentEvent("a", "b", "c"), TypeNotificationSent},
		{NewClassifierFailedEvent("a", "auth", "401"), TypeClassifierFailed},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.event.EventType(); got != tt.want {
				t.Errorf("EventType() = %q, expected %q", got, tt.want)
			}
		})
	}
}
