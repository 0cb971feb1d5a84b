package translator

import "github.com/sarchlab/vmsim/mem/vm"

func (e *Engine) lookupTLB(r *StepReport) {
	e.pending = pendingLookup{}

	e.narrate("Break down virtual address into VPN, PO(page offset)")
	e.narrate("VPN: 0x%X, PO: 0x%X", r.VPN, r.Offset)
	e.highlights.Set(TableVAS, int(r.VPN), ColorInProgress)

	setID := e.tlb.SetID(r.VPN)
	e.narrate("Breaking VPN into TLB Index and tag")
	e.narrate("TLB Set: 0x%X, tag: 0x%X", setID, r.VPN)
	e.narrate("Checking if set contains a valid entry with tag: 0x%X", r.VPN)

	entry, index, hit := e.tlb.Lookup(r.VPN)
	if hit {
		e.stats.TLBHit++
		e.policy.Touch(r.VPN)
		e.pending = pendingLookup{frame: entry.Frame}

		e.highlights.Set(TableTLB, index, ColorConfirmed)
		e.highlights.Set(TableRAM, int(entry.Frame), ColorConfirmed)
		e.narrate("TLB hit")
		e.narrate("PPN: 0x%X", int(entry.Frame))

		r.Event = EventTLBHit
		r.Frame = entry.Frame
		r.TLBIndex = index

		return
	}

	e.stats.TLBMiss++

	for wayID := 0; wayID < e.tlb.NumWays(); wayID++ {
		e.highlights.Set(TableTLB, e.tlb.GlobalIndex(setID, wayID), ColorMiss)
	}
	e.narrate("TLB miss")

	r.Event = EventTLBMiss
}

func (e *Engine) lookupPageTable(r *StepReport) {
	e.narrate("Checking page table...")
	e.narrate("Checking if VPN: 0x%X has valid entry", r.VPN)

	page := e.pageTable.Lookup(r.VPN)
	if page.Valid {
		e.stats.PTHit++
		e.policy.Touch(r.VPN)
		e.pending = pendingLookup{frame: page.Frame}

		e.highlights.Set(TablePageTable, int(r.VPN), ColorConfirmed)
		e.narrate("Page Table hit")

		r.Event = EventPTHit
		r.Frame = page.Frame

		return
	}

	e.stats.PTMiss++
	e.pending = pendingLookup{fault: true, frame: vm.Unmapped}

	e.highlights.Set(TablePageTable, int(r.VPN), ColorMiss)
	e.narrate("Page Table miss")
	e.narrate("Page fault: data will be loaded from secondary memory")

	r.Event = EventPageFault
}

func (e *Engine) install(r *StepReport) {
	if !e.pending.fault {
		e.fillTLB(r, e.pending.frame)
		r.Event = EventTLBFill

		return
	}

	frame, found := e.pageTable.FirstFreeFrame(e.frames)
	if !found {
		e.evict(r)
		return
	}

	e.pageTable.Install(r.VPN, frame)
	e.frames.Occupy(frame)
	e.policy.Touch(r.VPN)
	e.pending = pendingLookup{frame: frame}

	e.highlights.Set(TablePageTable, int(r.VPN), ColorConfirmed)
	e.narrate("Loaded page 0x%X into free frame 0x%X", r.VPN, int(frame))

	e.fillTLB(r, frame)
	r.Event = EventPageInstalled
}

func (e *Engine) fillTLB(r *StepReport, frame vm.FrameID) {
	index := e.tlb.Install(r.VPN, frame)

	e.highlights.Set(TableTLB, index, ColorConfirmed)
	e.highlights.Set(TableRAM, int(frame), ColorConfirmed)
	e.narrate("Update TLB with new PTE using First In First Out replacement policy")
	e.narrate("PPN: 0x%X", int(frame))

	r.Frame = frame
	r.TLBIndex = index
}

// evict frees one frame. The engine stays in StateInstall so that the next
// step retries the allocation.
func (e *Engine) evict(r *StepReport) {
	victim := e.policy.SelectVictim()
	freed := e.pageTable.Evict(victim)
	e.frames.Release(freed)
	tlbIndex, invalidated := e.tlb.Invalidate(victim)
	e.policy.Remove(victim)

	e.highlights.Set(TablePageTable, int(victim), ColorEvicted)
	e.highlights.Set(TableRAM, int(freed), ColorEvicted)
	if invalidated {
		e.highlights.Set(TableTLB, tlbIndex, ColorEvicted)
		r.TLBIndex = tlbIndex
	}

	e.narrate("No free frame, evicting with %s replacement policy",
		e.config.Policy)
	e.narrate("Evicted page index: 0x%X", victim)

	r.Event = EventPageEvicted
	r.Frame = freed
	r.Evicted = true
	r.EvictedVPN = victim
}

func (e *Engine) finalize(r *StepReport) {
	e.highlights.Set(TableVAS, int(r.VPN), ColorSettled)
	e.narrate("Done!")

	e.current++

	r.Event = EventAddressDone
	r.Frame = e.pending.frame
}
