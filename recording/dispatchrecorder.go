package recording

import "github.com/kestrellab/relay/dispatch"

// eventRow is the shape of one recorded dispatch.
type eventRow struct {
	EventID       string
	TypeID        uint32
	PriorityLevel int
	Payload       string
	HandlerKey    string
	Handled       bool
}

// A DispatchRecorder is a dispatch hook that records every handler invocation
// and every dropped event into a DataRecorder table.
type DispatchRecorder struct {
	recorder  DataRecorder
	tableName string
}

// NewDispatchRecorder creates a DispatchRecorder writing into the given
// table. The table is created immediately.
func NewDispatchRecorder(
	recorder DataRecorder,
	tableName string,
) *DispatchRecorder {
	r := &DispatchRecorder{
		recorder:  recorder,
		tableName: tableName,
	}

	recorder.CreateTable(tableName, eventRow{})

	return r
}

// Func records handler invocations and dropped events.
func (r *DispatchRecorder) Func(ctx dispatch.HookCtx) {
	evt, ok := ctx.Item.(dispatch.Event)
	if !ok {
		return
	}

	switch ctx.Pos {
	case dispatch.HookPosBeforeHandler:
		info := ctx.Detail.(dispatch.HandlerInfo)
		r.recorder.InsertData(r.tableName, eventRow{
			EventID:       evt.ID,
			TypeID:        uint32(evt.Type),
			PriorityLevel: evt.PriorityLevel,
			Payload:       payloadText(evt),
			HandlerKey:    info.Key,
			Handled:       true,
		})
	case dispatch.HookPosEventDropped:
		r.recorder.InsertData(r.tableName, eventRow{
			EventID:       evt.ID,
			TypeID:        uint32(evt.Type),
			PriorityLevel: evt.PriorityLevel,
			Payload:       payloadText(evt),
		})
	}
}

func payloadText(evt dispatch.Event) string {
	if evt.Payload == nil {
		return ""
	}

	return evt.Payload.ToText()
}
