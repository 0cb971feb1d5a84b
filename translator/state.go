package translator

import "fmt"

// State is the position of the address in flight within its translation.
type State int

// The states of a translation, in the order a TLB miss visits them.
const (
	StateDecode State = iota
	StatePageTableCheck
	StateInstall
	StateFinalize
)

func (s State) String() string {
	switch s {
	case StateDecode:
		return "Decode"
	case StatePageTableCheck:
		return "PageTableCheck"
	case StateInstall:
		return "Install"
	case StateFinalize:
		return "Finalize"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event is what happened while the engine was in a state.
type Event int

// Events produced by the steps.
const (
	EventNone Event = iota
	EventTLBHit
	EventTLBMiss
	EventPTHit
	EventPageFault
	EventTLBFill
	EventPageInstalled
	EventPageEvicted
	EventAddressDone
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventTLBHit:
		return "tlb-hit"
	case EventTLBMiss:
		return "tlb-miss"
	case EventPTHit:
		return "pt-hit"
	case EventPageFault:
		return "page-fault"
	case EventTLBFill:
		return "tlb-fill"
	case EventPageInstalled:
		return "page-installed"
	case EventPageEvicted:
		return "page-evicted"
	case EventAddressDone:
		return "address-done"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

type transitionKey struct {
	from  State
	event Event
}

var transitions = map[transitionKey]State{
	{StateDecode, EventTLBHit}:            StateFinalize,
	{StateDecode, EventTLBMiss}:           StatePageTableCheck,
	{StatePageTableCheck, EventPTHit}:     StateInstall,
	{StatePageTableCheck, EventPageFault}: StateInstall,
	{StateInstall, EventTLBFill}:          StateFinalize,
	{StateInstall, EventPageInstalled}:    StateFinalize,
	{StateInstall, EventPageEvicted}:      StateInstall,
	{StateFinalize, EventAddressDone}:     StateDecode,
}

func transition(from State, event Event) State {
	to, ok := transitions[transitionKey{from, event}]
	if !ok {
		panic(fmt.Sprintf("no transition from state %s on event %s",
			from, event))
	}

	return to
}
