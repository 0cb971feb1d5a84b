package translator

import (
	"fmt"
	"sort"
)

// Table identifies one of the tables that the highlights refer to.
type Table int

// Tables that can be highlighted. VAS and PageTable are indexed by virtual page
// number, TLB by global slot index, and RAM by frame.
const (
	TableVAS Table = iota
	TablePageTable
	TableTLB
	TableRAM
)

// Tables lists all the tables in display order.
var Tables = []Table{TableVAS, TablePageTable, TableTLB, TableRAM}

func (t Table) String() string {
	switch t {
	case TableVAS:
		return "vas"
	case TablePageTable:
		return "pt"
	case TableTLB:
		return "tlb"
	case TableRAM:
		return "ram"
	default:
		return fmt.Sprintf("Table(%d)", int(t))
	}
}

// MarshalText lets tables appear by name in JSON, including as map keys.
func (t Table) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Color is the highlight of a table entry.
type Color int

// Highlight colors. Confirmed turns into Settled, and Miss and Evicted turn
// back into Default, at the beginning of the next step.
const (
	ColorDefault Color = iota
	ColorInProgress
	ColorConfirmed
	ColorMiss
	ColorEvicted
	ColorSettled
)

func (c Color) String() string {
	switch c {
	case ColorDefault:
		return "white"
	case ColorInProgress:
		return "pink"
	case ColorConfirmed:
		return "green"
	case ColorMiss:
		return "red"
	case ColorEvicted:
		return "gray"
	case ColorSettled:
		return "DodgerBlue"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// MarshalText lets colors appear by name in JSON.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// HighlightKey addresses one entry of one table.
type HighlightKey struct {
	Table Table
	Index int
}

// A HighlightChange records that an entry changed its color.
type HighlightChange struct {
	Table Table `json:"table"`
	Index int   `json:"index"`
	Color Color `json:"color"`
}

// Highlights holds the current color of every entry that was ever highlighted
// and a log of the changes that have not been consumed yet.
type Highlights struct {
	colors  map[HighlightKey]Color
	changes []HighlightChange
}

// NewHighlights creates an empty highlight state.
func NewHighlights() *Highlights {
	return &Highlights{
		colors: make(map[HighlightKey]Color),
	}
}

// Set changes the color of an entry. Nothing is logged if the color is the
// same.
func (h *Highlights) Set(table Table, index int, color Color) {
	key := HighlightKey{Table: table, Index: index}
	if h.colors[key] == color {
		return
	}

	h.colors[key] = color
	h.changes = append(h.changes, HighlightChange{
		Table: table,
		Index: index,
		Color: color,
	})
}

// Color returns the current color of an entry.
func (h *Highlights) Color(table Table, index int) Color {
	return h.colors[HighlightKey{Table: table, Index: index}]
}

// Fade ages the highlights of the previous step.
func (h *Highlights) Fade() {
	for _, key := range h.sortedKeys() {
		switch h.colors[key] {
		case ColorMiss, ColorEvicted:
			h.Set(key.Table, key.Index, ColorDefault)
		case ColorConfirmed:
			h.Set(key.Table, key.Index, ColorSettled)
		}
	}
}

// Snapshot returns the current colors grouped by table.
func (h *Highlights) Snapshot() map[Table]map[int]Color {
	snapshot := make(map[Table]map[int]Color, len(Tables))
	for _, t := range Tables {
		snapshot[t] = make(map[int]Color)
	}

	for key, color := range h.colors {
		snapshot[key.Table][key.Index] = color
	}

	return snapshot
}

// Consume returns the changes logged since the last call and clears the log.
func (h *Highlights) Consume() []HighlightChange {
	changes := h.changes
	h.changes = nil

	return changes
}

func (h *Highlights) sortedKeys() []HighlightKey {
	keys := make([]HighlightKey, 0, len(h.colors))
	for key := range h.colors {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Table != keys[j].Table {
			return keys[i].Table < keys[j].Table
		}

		return keys[i].Index < keys[j].Index
	})

	return keys
}
