package dispatch

import "log"

// EventLogger is a hook that prints information about each dispatched event.
type EventLogger struct {
	*log.Logger
}

// NewEventLogger returns a new EventLogger which will write into the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx HookCtx) {
	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosBeforeHandler:
		info := ctx.Detail.(HandlerInfo)
		h.Printf("event %s, type 0x%08x, level %d -> %s (priority %d)",
			evt.ID, uint32(evt.Type), evt.PriorityLevel,
			info.Key, info.Priority)
	case HookPosEventDropped:
		h.Printf("event %s, type 0x%08x, level %d dropped, no handler",
			evt.ID, uint32(evt.Type), evt.PriorityLevel)
	}
}
