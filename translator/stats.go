package translator

// Stats counts the outcome of every TLB and page table lookup.
type Stats struct {
	TLBHit  uint64
	TLBMiss uint64
	PTHit   uint64
	PTMiss  uint64
}

// TLBHitRate returns the percentage of TLB lookups that hit.
func (s Stats) TLBHitRate() float64 {
	return hitRate(s.TLBHit, s.TLBMiss)
}

// PTHitRate returns the percentage of page table lookups that hit. Page table
// lookups only happen after a TLB miss.
func (s Stats) PTHitRate() float64 {
	return hitRate(s.PTHit, s.PTMiss)
}

func hitRate(hit, miss uint64) float64 {
	total := hit + miss
	if total == 0 {
		return 0.0
	}

	return float64(hit) / float64(total) * 100
}
