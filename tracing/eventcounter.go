package tracing

import (
	"sync"

	"github.com/sarchlab/vmsim/sim/hooking"
	"github.com/sarchlab/vmsim/translator"
)

// EventCountTracer counts how many steps ended with each event.
type EventCountTracer struct {
	lock sync.Mutex

	eventNames []string
	eventCount map[string]uint64
}

// NewEventCountTracer creates a new EventCountTracer
func NewEventCountTracer() *EventCountTracer {
	return &EventCountTracer{
		eventCount: make(map[string]uint64),
	}
}

// EventNames returns the names of the events seen, in order of first
// appearance.
func (t *EventCountTracer) EventNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.eventNames))
	copy(names, t.eventNames)

	return names
}

// EventCount returns the number of steps that ended with the event.
func (t *EventCountTracer) EventCount(eventName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.eventCount[eventName]
}

// Func counts the event of a step.
func (t *EventCountTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != translator.HookPosStep {
		return
	}

	report, ok := ctx.Item.(translator.StepReport)
	if !ok || report.Complete {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	name := report.Event.String()
	if _, seen := t.eventCount[name]; !seen {
		t.eventNames = append(t.eventNames, name)
	}

	t.eventCount[name]++
}
