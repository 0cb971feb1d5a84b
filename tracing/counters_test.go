package tracing

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/translator"
)

var _ = Describe("EventCountTracer", func() {
	It("should count the events of every step", func() {
		engine, err := translator.MakeBuilder().Build()
		Expect(err).NotTo(HaveOccurred())

		counter := NewEventCountTracer()
		engine.AcceptHook(counter)

		Expect(engine.SetAddressSequence([]string{"0x1000", "0x1FFF"})).
			To(Succeed())
		for !engine.Done() {
			engine.ProcessNextAddress()
		}
		engine.ProcessNextStep()

		Expect(counter.EventNames()).To(Equal([]string{
			"tlb-miss", "page-fault", "page-installed", "address-done",
			"tlb-hit",
		}))
		Expect(counter.EventCount("address-done")).To(Equal(uint64(2)))
		Expect(counter.EventCount("tlb-hit")).To(Equal(uint64(1)))
		Expect(counter.EventCount("page-evicted")).To(BeZero())
	})
})

var _ = Describe("CSVTracer", func() {
	It("should write a header and one line per step", func() {
		engine, err := translator.MakeBuilder().Build()
		Expect(err).NotTo(HaveOccurred())

		buf := new(bytes.Buffer)
		engine.AcceptHook(NewCSVTracer(buf))

		Expect(engine.AddAddress("0x2ABC")).To(Succeed())
		engine.ProcessNextAddress()

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(5))
		Expect(lines[0] + "\n").To(Equal(CSVHeader))
		Expect(lines[1]).To(Equal(
			"0,0x2ABC,0x2,0xABC,Decode,PageTableCheck,tlb-miss,-1,-1"))
		Expect(lines[4]).To(Equal(
			"0,0x2ABC,0x2,0xABC,Finalize,Decode,address-done,0,-1"))
	})
})
