package core

import "sync"

// EventContext carries the payload of a fired event.
type EventContext struct {
	// Name is the asset the event refers to, if any.
	Name string
	Err  error
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Stops the running engine.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// An asset was dirtied by a change on disk.
	/* Context usage:
	 * name = data.Name
	 */
	EVENT_CODE_ASSET_DIRTIED SystemEventCode = 0x02

	// The file watcher reported an error.
	/* Context usage:
	 * err = data.Err
	 */
	EVENT_CODE_WATCHER_ERROR SystemEventCode = 0x03

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventSystemState struct {
	mutex      sync.RWMutex
	registered map[SystemEventCode][]*registeredEvent
}

var onceEvent sync.Once
var eventState *eventSystemState = nil

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool

// EventInitialize prepares the event system. Calling it again is a no-op.
func EventInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[SystemEventCode][]*registeredEvent),
		}
	})
	return true
}

// EventShutdown drops every registration.
func EventShutdown() error {
	if eventState == nil {
		return nil
	}
	eventState.mutex.Lock()
	defer eventState.mutex.Unlock()
	eventState.registered = make(map[SystemEventCode][]*registeredEvent)
	return nil
}

/**
 * Register to listen for when events are sent with the provided code. A listener
 * registered twice for the same code is rejected and this returns false.
 */
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if eventState == nil || code < 0 || code >= MAX_MESSAGE_CODES {
		return false
	}
	eventState.mutex.Lock()
	defer eventState.mutex.Unlock()

	for _, e := range eventState.registered[code] {
		if e.listener == listener {
			LogWarn("Listener already registered for event code %d", code)
			return false
		}
	}
	eventState.registered[code] = append(eventState.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// EventUnregister removes the registration of listener for code.
func EventUnregister(code SystemEventCode, listener interface{}) bool {
	if eventState == nil {
		return false
	}
	eventState.mutex.Lock()
	defer eventState.mutex.Unlock()

	events := eventState.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eventState.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 */
func EventFire(code SystemEventCode, sender interface{}, context EventContext) bool {
	if eventState == nil {
		return false
	}
	eventState.mutex.RLock()
	events := append([]*registeredEvent(nil), eventState.registered[code]...)
	eventState.mutex.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			return true
		}
	}
	return false
}
