// Package replacement provides the page-replacement policies that choose which
// resident page to evict when physical memory is full.
package replacement

import (
	"container/list"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned when a policy name cannot be parsed.
var ErrUnknownPolicy = errors.New("unknown page replacement policy")

// Kind identifies a page-replacement policy.
type Kind int

// Supported policies.
const (
	FIFO Kind = iota
	LRU
)

func (k Kind) String() string {
	switch k {
	case FIFO:
		return "FIFO"
	case LRU:
		return "LRU"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a policy name such as "FIFO" or "lru" to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "FIFO":
		return FIFO, nil
	case "LRU":
		return LRU, nil
	default:
		return FIFO, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// A Policy tracks the resident pages and decides which one to evict.
type Policy interface {
	// Kind returns the kind of the policy.
	Kind() Kind

	// Touch records that a page was just accessed or installed.
	Touch(vpn uint64)

	// SelectVictim returns the page that should be evicted next. It panics if
	// no page is tracked.
	SelectVictim() uint64

	// Remove stops tracking a page.
	Remove(vpn uint64)

	// Tracked returns the tracked pages, the next victim first.
	Tracked() []uint64

	// Len returns the number of tracked pages.
	Len() int
}

// New creates a policy of the given kind.
func New(kind Kind) Policy {
	switch kind {
	case FIFO:
		return &fifoPolicy{history: newHistory()}
	case LRU:
		return &lruPolicy{history: newHistory()}
	default:
		panic(fmt.Sprintf("policy %s is not supported", kind))
	}
}

// history keeps pages ordered from the next victim to the most recent one.
type history struct {
	order *list.List
	index map[uint64]*list.Element
}

func newHistory() history {
	return history{
		order: list.New(),
		index: make(map[uint64]*list.Element),
	}
}

func (h *history) SelectVictim() uint64 {
	front := h.order.Front()
	if front == nil {
		panic("nothing to evict")
	}

	return front.Value.(uint64)
}

func (h *history) Remove(vpn uint64) {
	elem, found := h.index[vpn]
	if !found {
		return
	}

	h.order.Remove(elem)
	delete(h.index, vpn)
}

func (h *history) Tracked() []uint64 {
	pages := make([]uint64, 0, h.order.Len())
	for e := h.order.Front(); e != nil; e = e.Next() {
		pages = append(pages, e.Value.(uint64))
	}

	return pages
}

func (h *history) Len() int {
	return h.order.Len()
}

func (h *history) pushBack(vpn uint64) {
	h.index[vpn] = h.order.PushBack(vpn)
}

// fifoPolicy evicts pages in the order they were first touched.
type fifoPolicy struct {
	history
}

func (p *fifoPolicy) Kind() Kind {
	return FIFO
}

func (p *fifoPolicy) Touch(vpn uint64) {
	if _, found := p.index[vpn]; found {
		return
	}

	p.pushBack(vpn)
}

// lruPolicy evicts the page that was touched least recently.
type lruPolicy struct {
	history
}

func (p *lruPolicy) Kind() Kind {
	return LRU
}

func (p *lruPolicy) Touch(vpn uint64) {
	if elem, found := p.index[vpn]; found {
		p.order.MoveToBack(elem)
		return
	}

	p.pushBack(vpn)
}
