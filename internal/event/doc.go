// Package event provides a pub-sub event bus that lets the dashboard and
// notifiers observe the monitor without the monitor knowing about them.
//
// # Main Types
//
//   - [Event]: interface with EventType() and Timestamp()
//   - [Bus]: synchronous dispatcher, safe for concurrent use
//   - [Handler]: func(Event)
//
// # Event Categories
//
// Session lifecycle:
//   - [SessionOpenedEvent], [SessionClosedEvent]
//
// Monitor:
//   - [MonitorStateEvent] (monitor.enabled / monitor.disabled)
//   - [TickEvent], [StateClearedEvent]
//
// Outcomes:
//   - [NotificationSentEvent], [ClassifierFailedEvent]
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//	bus.Subscribe(event.TypeNotificationSent, func(e event.Event) {
//	    sent := e.(event.NotificationSentEvent)
//	    fmt.Println(sent.Message)
//	})
//
// Handlers are called synchronously on the publishing goroutine. A handler
// that panics is logged and does not stop delivery to the others.
package event
