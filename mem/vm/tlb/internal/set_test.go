package internal_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
)

var _ = Describe("Set", func() {
	var s internal.Set

	BeforeEach(func() {
		s = internal.NewSet(2)
	})

	It("should install into the lowest free way", func() {
		Expect(s.Install(1, 10)).To(Equal(0))
		Expect(s.Install(2, 11)).To(Equal(1))
		Expect(s.NumValid()).To(Equal(2))
	})

	It("should evict in insertion order", func() {
		s.Install(1, 10)
		s.Install(2, 11)

		wayID := s.Install(3, 12)

		Expect(wayID).To(Equal(0))
		_, _, found := s.Lookup(1)
		Expect(found).To(BeFalse())
	})

	It("should evict nothing from an empty set", func() {
		_, ok := s.Evict()

		Expect(ok).To(BeFalse())
	})

	It("should reuse an invalidated way", func() {
		s.Install(1, 10)
		s.Install(2, 11)
		s.Invalidate(1)

		wayID := s.Install(3, 12)

		Expect(wayID).To(Equal(0))
		_, _, found := s.Lookup(2)
		Expect(found).To(BeTrue())
	})

	It("should report empty ways", func() {
		_, occupied := s.Way(1)

		Expect(occupied).To(BeFalse())
		Expect(s.NumWays()).To(Equal(2))
	})
})
