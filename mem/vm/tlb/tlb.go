package tlb

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
)

// An Entry caches the frame of one virtual page.
type Entry struct {
	Tag   uint64
	Frame vm.FrameID
	Valid bool
}

// A Slot describes one way of one set. Index is the global index of the slot,
// which is SetID*NumWays + WayID.
type Slot struct {
	SetID    int
	WayID    int
	Index    int
	Entry    Entry
	Occupied bool
}

// TLB is a set-associative cache that maintains virtual page to frame
// mappings. Entries are placed in set VPN mod NumSets, and a full set always
// evicts its oldest entry first.
type TLB struct {
	numSets int
	numWays int

	Sets []internal.Set
}

// Reset sets all the entries in the TLB to be invalid.
func (t *TLB) Reset() {
	t.Sets = make([]internal.Set, t.numSets)
	for i := 0; i < t.numSets; i++ {
		t.Sets[i] = internal.NewSet(t.numWays)
	}
}

// NumSets returns the number of sets.
func (t *TLB) NumSets() int {
	return t.numSets
}

// NumWays returns the number of entries in each set.
func (t *TLB) NumWays() int {
	return t.numWays
}

// NumEntries returns the capacity of the TLB.
func (t *TLB) NumEntries() int {
	return t.numSets * t.numWays
}

// SetID returns the set that a virtual page maps to.
func (t *TLB) SetID(vpn uint64) int {
	return int(vpn % uint64(t.numSets))
}

// GlobalIndex converts a set and a way to the index of the slot in the whole
// TLB.
func (t *TLB) GlobalIndex(setID, wayID int) int {
	return setID*t.numWays + wayID
}

// Lookup searches for a valid entry of the virtual page. It returns the entry
// and its global index.
func (t *TLB) Lookup(vpn uint64) (Entry, int, bool) {
	setID := t.SetID(vpn)

	wayID, entry, found := t.Sets[setID].Lookup(vpn)
	if !found {
		return Entry{}, 0, false
	}

	return fromInternal(entry), t.GlobalIndex(setID, wayID), true
}

// Install caches the mapping and returns the global index of the slot used.
func (t *TLB) Install(vpn uint64, frame vm.FrameID) int {
	setID := t.SetID(vpn)
	wayID := t.Sets[setID].Install(vpn, frame)

	return t.GlobalIndex(setID, wayID)
}

// Invalidate invalidates the entry of the virtual page, wherever it is. It
// returns the global index of the invalidated slot, or false if the page is not
// cached.
func (t *TLB) Invalidate(vpn uint64) (int, bool) {
	for setID, set := range t.Sets {
		wayID, found := set.Invalidate(vpn)
		if found {
			return t.GlobalIndex(setID, wayID), true
		}
	}

	return 0, false
}

// Slots lists every slot of the TLB ordered by global index.
func (t *TLB) Slots() []Slot {
	slots := make([]Slot, 0, t.NumEntries())

	for setID, set := range t.Sets {
		for wayID := 0; wayID < set.NumWays(); wayID++ {
			entry, occupied := set.Way(wayID)
			slots = append(slots, Slot{
				SetID:    setID,
				WayID:    wayID,
				Index:    t.GlobalIndex(setID, wayID),
				Entry:    fromInternal(entry),
				Occupied: occupied,
			})
		}
	}

	return slots
}

func fromInternal(e internal.Entry) Entry {
	return Entry{Tag: e.Tag, Frame: e.Frame, Valid: e.Valid}
}
