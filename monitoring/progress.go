package monitoring

import (
	"time"

	"github.com/rs/xid"

	"github.com/sarchlab/vmsim/translator"
)

// A ProgressBar tracks how much of the address sequence has been translated.
type ProgressBar struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func newProgressBar(name string) *ProgressBar {
	return &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
	}
}

// update reads the sequence cursor of the engine. The address in flight is in
// progress once its first step has run.
func (b *ProgressBar) update(e *translator.Engine) {
	b.Total = uint64(len(e.AddressSequence()))
	b.Finished = uint64(e.CurrentAddressIndex())
	b.InProgress = 0

	if !e.Done() && e.State() != translator.StateDecode {
		b.InProgress = 1
	}
}
