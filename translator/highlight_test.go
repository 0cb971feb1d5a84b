package translator

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Highlights", func() {
	var h *Highlights

	BeforeEach(func() {
		h = NewHighlights()
	})

	It("should log changes in order", func() {
		h.Set(TableTLB, 3, ColorMiss)
		h.Set(TableVAS, 1, ColorInProgress)

		Expect(h.Consume()).To(Equal([]HighlightChange{
			{Table: TableTLB, Index: 3, Color: ColorMiss},
			{Table: TableVAS, Index: 1, Color: ColorInProgress},
		}))
		Expect(h.Consume()).To(BeEmpty())
	})

	It("should not log a color that did not change", func() {
		h.Set(TableRAM, 0, ColorConfirmed)
		h.Consume()

		h.Set(TableRAM, 0, ColorConfirmed)
		h.Set(TableRAM, 1, ColorDefault)

		Expect(h.Consume()).To(BeEmpty())
	})

	It("should fade the previous step", func() {
		h.Set(TableTLB, 0, ColorMiss)
		h.Set(TableRAM, 2, ColorEvicted)
		h.Set(TablePageTable, 1, ColorConfirmed)
		h.Set(TableVAS, 1, ColorInProgress)
		h.Consume()

		h.Fade()

		Expect(h.Color(TableTLB, 0)).To(Equal(ColorDefault))
		Expect(h.Color(TableRAM, 2)).To(Equal(ColorDefault))
		Expect(h.Color(TablePageTable, 1)).To(Equal(ColorSettled))
		Expect(h.Color(TableVAS, 1)).To(Equal(ColorInProgress))
		Expect(h.Consume()).To(Equal([]HighlightChange{
			{Table: TablePageTable, Index: 1, Color: ColorSettled},
			{Table: TableTLB, Index: 0, Color: ColorDefault},
			{Table: TableRAM, Index: 2, Color: ColorDefault},
		}))
	})

	It("should keep the colors after the log is consumed", func() {
		h.Set(TableRAM, 5, ColorSettled)
		h.Consume()

		snapshot := h.Snapshot()

		Expect(snapshot[TableRAM]).To(HaveKeyWithValue(5, ColorSettled))
		Expect(snapshot[TableVAS]).To(BeEmpty())
	})

	It("should name tables and colors", func() {
		Expect(TablePageTable.String()).To(Equal("pt"))
		Expect(ColorSettled.String()).To(Equal("DodgerBlue"))

		text, err := ColorMiss.MarshalText()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(Equal("red"))

		text, err = TableTLB.MarshalText()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(Equal("tlb"))
	})
})
