package vm

import "fmt"

// A FrameTable records which frames of the physical memory are occupied.
type FrameTable struct {
	occupied []bool
}

// NewFrameTable creates a FrameTable with numFrames free frames.
func NewFrameTable(numFrames int) *FrameTable {
	return &FrameTable{
		occupied: make([]bool, numFrames),
	}
}

// NumFrames returns the number of frames.
func (ft *FrameTable) NumFrames() int {
	return len(ft.occupied)
}

// IsOccupied tells if a frame holds a page.
func (ft *FrameTable) IsOccupied(frame FrameID) bool {
	ft.frameMustBeInRange(frame)

	return ft.occupied[frame]
}

// Occupy marks a free frame as occupied.
func (ft *FrameTable) Occupy(frame FrameID) {
	ft.frameMustBeInRange(frame)

	if ft.occupied[frame] {
		panic(fmt.Sprintf("frame 0x%X is already occupied", int(frame)))
	}

	ft.occupied[frame] = true
}

// Release marks an occupied frame as free.
func (ft *FrameTable) Release(frame FrameID) {
	ft.frameMustBeInRange(frame)

	if !ft.occupied[frame] {
		panic(fmt.Sprintf("frame 0x%X is not occupied", int(frame)))
	}

	ft.occupied[frame] = false
}

// Occupancy returns a copy of the occupied flags, indexed by frame.
func (ft *FrameTable) Occupancy() []bool {
	occupancy := make([]bool, len(ft.occupied))
	copy(occupancy, ft.occupied)

	return occupancy
}

func (ft *FrameTable) frameMustBeInRange(frame FrameID) {
	if frame < 0 || int(frame) >= len(ft.occupied) {
		panic(fmt.Sprintf("frame %d is out of range, there are %d frames",
			int(frame), len(ft.occupied)))
	}
}
