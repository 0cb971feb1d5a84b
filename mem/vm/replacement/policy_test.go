package replacement

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseKind", func() {
	DescribeTable("names",
		func(name string, kind Kind) {
			k, err := ParseKind(name)

			Expect(err).NotTo(HaveOccurred())
			Expect(k).To(Equal(kind))
		},
		Entry("FIFO", "FIFO", FIFO),
		Entry("lower case lru", "lru", LRU),
		Entry("padded", " Fifo ", FIFO),
	)

	It("should reject unknown names", func() {
		_, err := ParseKind("CLOCK")

		Expect(err).To(MatchError(ErrUnknownPolicy))
	})

	It("should print its name", func() {
		Expect(LRU.String()).To(Equal("LRU"))
		Expect(Kind(7).String()).To(Equal("Kind(7)"))
	})
})

var _ = Describe("FIFO", func() {
	var p Policy

	BeforeEach(func() {
		p = New(FIFO)
	})

	It("should report its kind", func() {
		Expect(p.Kind()).To(Equal(FIFO))
	})

	It("should panic when there is nothing to evict", func() {
		Expect(func() { p.SelectVictim() }).To(PanicWith("nothing to evict"))
	})

	It("should select victims in first-touch order", func() {
		p.Touch(3)
		p.Touch(1)
		p.Touch(2)

		Expect(p.SelectVictim()).To(Equal(uint64(3)))
		Expect(p.Tracked()).To(Equal([]uint64{3, 1, 2}))
	})

	It("should not reorder on repeated touches", func() {
		p.Touch(3)
		p.Touch(1)
		p.Touch(3)

		Expect(p.SelectVictim()).To(Equal(uint64(3)))
		Expect(p.Len()).To(Equal(2))
	})

	It("should move on after the victim is removed", func() {
		p.Touch(3)
		p.Touch(1)

		p.Remove(p.SelectVictim())

		Expect(p.SelectVictim()).To(Equal(uint64(1)))
	})

	It("should track a removed page again from the back", func() {
		p.Touch(3)
		p.Touch(1)
		p.Remove(3)
		p.Touch(3)

		Expect(p.Tracked()).To(Equal([]uint64{1, 3}))
	})

	It("should ignore removing an untracked page", func() {
		p.Touch(1)
		p.Remove(5)

		Expect(p.Len()).To(Equal(1))
	})
})

var _ = Describe("LRU", func() {
	var p Policy

	BeforeEach(func() {
		p = New(LRU)
	})

	It("should report its kind", func() {
		Expect(p.Kind()).To(Equal(LRU))
	})

	It("should panic when there is nothing to evict", func() {
		Expect(func() { p.SelectVictim() }).To(Panic())
	})

	It("should promote a page on every touch", func() {
		p.Touch(3)
		p.Touch(1)
		p.Touch(2)
		p.Touch(3)

		Expect(p.SelectVictim()).To(Equal(uint64(1)))
		Expect(p.Tracked()).To(Equal([]uint64{1, 2, 3}))
	})

	It("should select victims in ascending recency", func() {
		p.Touch(1)
		p.Touch(2)
		p.Touch(1)

		victims := []uint64{}
		for p.Len() > 0 {
			v := p.SelectVictim()
			victims = append(victims, v)
			p.Remove(v)
		}

		Expect(victims).To(Equal([]uint64{2, 1}))
	})
})
