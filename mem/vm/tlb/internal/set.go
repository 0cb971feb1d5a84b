// Package internal provides the definition required for defining TLB.
package internal

import "github.com/sarchlab/vmsim/mem/vm"

// An Entry maps a tag (the virtual page number) to a frame.
type Entry struct {
	Tag   uint64
	Frame vm.FrameID
	Valid bool
}

// A Set holds a certain number of entries. Entries that are valid are kept in
// insertion order, and the oldest one is evicted first.
type Set interface {
	Lookup(tag uint64) (wayID int, entry Entry, found bool)
	Install(tag uint64, frame vm.FrameID) (wayID int)
	Invalidate(tag uint64) (wayID int, found bool)
	Evict() (wayID int, ok bool)
	Way(wayID int) (entry Entry, occupied bool)
	NumWays() int
	NumValid() int
}

// NewSet creates a new TLB set.
func NewSet(numWays int) Set {
	s := &setImpl{}
	s.blocks = make([]*block, numWays)
	s.fifo = make([]*block, 0, numWays)

	for i := range s.blocks {
		s.blocks[i] = &block{wayID: i}
	}

	return s
}

type block struct {
	entry    Entry
	wayID    int
	occupied bool
}

type setImpl struct {
	blocks []*block
	fifo   []*block
}

func (s *setImpl) NumWays() int {
	return len(s.blocks)
}

func (s *setImpl) NumValid() int {
	return len(s.fifo)
}

func (s *setImpl) Way(wayID int) (Entry, bool) {
	b := s.blocks[wayID]
	return b.entry, b.occupied
}

func (s *setImpl) Lookup(tag uint64) (wayID int, entry Entry, found bool) {
	for _, b := range s.blocks {
		if b.occupied && b.entry.Valid && b.entry.Tag == tag {
			return b.wayID, b.entry, true
		}
	}

	return 0, Entry{}, false
}

func (s *setImpl) Install(tag uint64, frame vm.FrameID) int {
	if wayID, _, found := s.Lookup(tag); found {
		s.blocks[wayID].entry.Frame = frame
		return wayID
	}

	if len(s.fifo) >= len(s.blocks) {
		s.Evict()
	}

	b := s.firstFreeBlock()
	b.entry = Entry{Tag: tag, Frame: frame, Valid: true}
	b.occupied = true
	s.fifo = append(s.fifo, b)

	return b.wayID
}

func (s *setImpl) Invalidate(tag uint64) (int, bool) {
	wayID, _, found := s.Lookup(tag)
	if !found {
		return 0, false
	}

	b := s.blocks[wayID]
	b.entry.Valid = false
	s.removeFromFIFO(b)

	return wayID, true
}

// Evict removes the oldest valid entry from the set. The slot keeps the stale
// entry until a new one is installed there.
func (s *setImpl) Evict() (wayID int, ok bool) {
	if len(s.fifo) == 0 {
		return 0, false
	}

	oldest := s.fifo[0]
	oldest.entry.Valid = false
	s.fifo = s.fifo[1:]

	return oldest.wayID, true
}

func (s *setImpl) firstFreeBlock() *block {
	for _, b := range s.blocks {
		if !b.occupied || !b.entry.Valid {
			return b
		}
	}

	panic("no free block in a set that has room")
}

func (s *setImpl) removeFromFIFO(target *block) {
	for i, b := range s.fifo {
		if b == target {
			s.fifo = append(s.fifo[:i], s.fifo[i+1:]...)
			return
		}
	}
}
