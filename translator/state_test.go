package translator

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("transition", func() {
	DescribeTable("defined transitions",
		func(from State, event Event, to State) {
			Expect(transition(from, event)).To(Equal(to))
		},
		Entry("tlb hit skips the page table", StateDecode, EventTLBHit, StateFinalize),
		Entry("tlb miss", StateDecode, EventTLBMiss, StatePageTableCheck),
		Entry("page table hit", StatePageTableCheck, EventPTHit, StateInstall),
		Entry("page fault", StatePageTableCheck, EventPageFault, StateInstall),
		Entry("tlb fill", StateInstall, EventTLBFill, StateFinalize),
		Entry("page installed", StateInstall, EventPageInstalled, StateFinalize),
		Entry("eviction retries in place", StateInstall, EventPageEvicted, StateInstall),
		Entry("address done", StateFinalize, EventAddressDone, StateDecode),
	)

	It("should panic on an undefined transition", func() {
		Expect(func() { transition(StateDecode, EventPageEvicted) }).To(Panic())
	})

	It("should name states and events", func() {
		Expect(StateInstall.String()).To(Equal("Install"))
		Expect(EventPageFault.String()).To(Equal("page-fault"))
	})
})
