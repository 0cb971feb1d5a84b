package tlb_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
)

var _ = Describe("Builder", func() {
	It("should build sets from the associativity", func() {
		t := tlb.MakeBuilder().WithNumEntries(16).WithNumWays(4).Build()

		Expect(t.NumSets()).To(Equal(4))
		Expect(t.NumWays()).To(Equal(4))
		Expect(t.NumEntries()).To(Equal(16))
		Expect(t.Slots()).To(HaveLen(16))
	})

	It("should panic if entries cannot be divided into ways", func() {
		Expect(func() {
			tlb.MakeBuilder().WithNumEntries(16).WithNumWays(3).Build()
		}).To(Panic())
	})

	It("should panic on zero ways", func() {
		Expect(func() {
			tlb.MakeBuilder().WithNumWays(0).Build()
		}).To(Panic())
	})
})

var _ = Describe("TLB", func() {
	var t *tlb.TLB

	BeforeEach(func() {
		t = tlb.MakeBuilder().WithNumEntries(16).WithNumWays(2).Build()
	})

	It("should miss when empty", func() {
		_, _, found := t.Lookup(1)

		Expect(found).To(BeFalse())
	})

	It("should hit after install", func() {
		index := t.Install(9, 3)

		entry, hitIndex, found := t.Lookup(9)

		Expect(found).To(BeTrue())
		Expect(hitIndex).To(Equal(index))
		Expect(entry).To(Equal(tlb.Entry{Tag: 9, Frame: 3, Valid: true}))
	})

	It("should place entries in set vpn mod numSets", func() {
		index := t.Install(9, 3)

		Expect(t.SetID(9)).To(Equal(1))
		Expect(index).To(Equal(2))

		index = t.Install(17, 4)
		Expect(index).To(Equal(3))
	})

	It("should evict the oldest entry of a full set", func() {
		t.Install(1, 0)
		t.Install(9, 1)

		index := t.Install(17, 2)

		Expect(index).To(Equal(2))
		_, _, found := t.Lookup(1)
		Expect(found).To(BeFalse())
		_, _, found = t.Lookup(9)
		Expect(found).To(BeTrue())
		_, _, found = t.Lookup(17)
		Expect(found).To(BeTrue())
	})

	It("should evict by insertion order regardless of hits", func() {
		t.Install(1, 0)
		t.Install(9, 1)
		t.Lookup(1)
		t.Lookup(1)

		t.Install(17, 2)

		_, _, found := t.Lookup(1)
		Expect(found).To(BeFalse())
	})

	It("should never affect other sets", func() {
		t.Install(2, 5)
		t.Install(1, 0)
		t.Install(9, 1)
		t.Install(17, 2)
		t.Install(25, 3)

		entry, index, found := t.Lookup(2)
		Expect(found).To(BeTrue())
		Expect(entry.Frame).To(Equal(vm.FrameID(5)))
		Expect(index).To(Equal(4))
	})

	It("should refresh an entry that is already cached", func() {
		first := t.Install(9, 3)
		second := t.Install(9, 4)

		Expect(second).To(Equal(first))
		entry, _, _ := t.Lookup(9)
		Expect(entry.Frame).To(Equal(vm.FrameID(4)))

		valid := 0
		for _, s := range t.Slots() {
			if s.Entry.Valid && s.Entry.Tag == 9 {
				valid++
			}
		}
		Expect(valid).To(Equal(1))
	})

	Context("invalidate", func() {
		It("should invalidate a cached entry", func() {
			index := t.Install(9, 3)

			invalidated, found := t.Invalidate(9)

			Expect(found).To(BeTrue())
			Expect(invalidated).To(Equal(index))
			_, _, hit := t.Lookup(9)
			Expect(hit).To(BeFalse())
		})

		It("should do nothing when the page is not cached", func() {
			_, found := t.Invalidate(9)

			Expect(found).To(BeFalse())
		})

		It("should keep the stale tag visible", func() {
			index := t.Install(9, 3)
			t.Invalidate(9)

			slot := t.Slots()[index]
			Expect(slot.Occupied).To(BeTrue())
			Expect(slot.Entry.Valid).To(BeFalse())
			Expect(slot.Entry.Tag).To(Equal(uint64(9)))
		})

		It("should remove the entry from the eviction order", func() {
			t.Install(1, 0)
			t.Install(9, 1)
			t.Invalidate(1)

			index := t.Install(17, 2)

			Expect(index).To(Equal(2))
			_, _, found := t.Lookup(9)
			Expect(found).To(BeTrue())
		})

		It("should not match a stale entry", func() {
			t.Install(1, 0)
			t.Invalidate(1)
			t.Install(9, 1)
			reinstalled := t.Install(1, 2)

			index, found := t.Invalidate(1)

			Expect(found).To(BeTrue())
			Expect(index).To(Equal(reinstalled))
			_, found = t.Invalidate(1)
			Expect(found).To(BeFalse())
		})
	})

	It("should reset all the entries", func() {
		t.Install(9, 3)

		t.Reset()

		_, _, found := t.Lookup(9)
		Expect(found).To(BeFalse())
		for _, s := range t.Slots() {
			Expect(s.Occupied).To(BeFalse())
		}
	})
})
