package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/tracing"
	"github.com/sarchlab/vmsim/translator"
)

func newSystemCmd(args ...string) *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addSystemFlags(c)
	Expect(c.Flags().Parse(args)).To(Succeed())

	return c
}

func setEnv(name, value string) {
	old, set := os.LookupEnv(name)
	Expect(os.Setenv(name, value)).To(Succeed())

	DeferCleanup(func() {
		if set {
			os.Setenv(name, old)
		} else {
			os.Unsetenv(name)
		}
	})
}

var _ = Describe("System flags", func() {
	It("should use the defaults", func() {
		config, err := readSystemConfig(newSystemCmd())

		Expect(err).NotTo(HaveOccurred())
		Expect(config).To(Equal(translator.Config{
			Policy:           replacement.FIFO,
			VASWidth:         16,
			TLBAssociativity: 2,
		}))
	})

	It("should take defaults from the environment", func() {
		setEnv(EnvPolicy, "lru")
		setEnv(EnvVASWidth, "20")
		c := newSystemCmd("--associativity", "4")

		Expect(applyEnvDefaults(c)).To(Succeed())
		config, err := readSystemConfig(c)

		Expect(err).NotTo(HaveOccurred())
		Expect(config.Policy).To(Equal(replacement.LRU))
		Expect(config.VASWidth).To(Equal(20))
		Expect(config.TLBAssociativity).To(Equal(4))
	})

	It("should let flags win over the environment", func() {
		setEnv(EnvVASWidth, "20")
		c := newSystemCmd("--vas-width", "18")

		Expect(applyEnvDefaults(c)).To(Succeed())
		config, err := readSystemConfig(c)

		Expect(err).NotTo(HaveOccurred())
		Expect(config.VASWidth).To(Equal(18))
	})

	It("should reject malformed environment values", func() {
		setEnv(EnvVASWidth, "wide")

		Expect(applyEnvDefaults(newSystemCmd())).
			To(MatchError(ContainSubstring(EnvVASWidth)))
	})

	It("should reject invalid systems", func() {
		_, err := readSystemConfig(newSystemCmd("--associativity", "3"))
		Expect(err).To(MatchError(translator.ErrInvalidConfig))

		_, err = readSystemConfig(newSystemCmd("--policy", "MRU"))
		Expect(err).To(MatchError(replacement.ErrUnknownPolicy))
	})
})

var _ = Describe("Run", func() {
	var (
		out  *bytes.Buffer
		opts runOptions
	)

	BeforeEach(func() {
		out = new(bytes.Buffer)
		opts = runOptions{
			config: translator.Config{
				Policy:           replacement.FIFO,
				VASWidth:         16,
				TLBAssociativity: 2,
			},
			addresses: []string{"0x1ABC", "0x1000"},
			noColor:   true,
		}
	})

	It("should print one line per address", func() {
		Expect(run(opts, out)).To(Succeed())

		Expect(out.String()).To(ContainSubstring(
			"0x1ABC -> 0xABC  tlb-miss, page-fault, page-installed, address-done"))
		Expect(out.String()).To(ContainSubstring(
			"0x1000 -> 0x0  tlb-hit, address-done"))
		Expect(out.String()).To(ContainSubstring("TLB hits: 1  misses: 1"))
		Expect(out.String()).To(ContainSubstring(
			"Steps: tlb-miss=1 page-fault=1 page-installed=1 address-done=2 tlb-hit=1"))
	})

	It("should trace steps as CSV", func() {
		trace := new(bytes.Buffer)
		opts.trace = trace

		Expect(run(opts, out)).To(Succeed())

		Expect(trace.String()).To(HavePrefix(tracing.CSVHeader))
		Expect(strings.Count(trace.String(), "\n")).To(Equal(7))
	})

	It("should print every step", func() {
		opts.step = true

		Expect(run(opts, out)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Decode -> PageTableCheck"))
		Expect(out.String()).To(ContainSubstring("Page Table miss"))
	})

	It("should append random addresses", func() {
		opts.addresses = nil
		opts.random = 3
		opts.seed = 7

		Expect(run(opts, out)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("PT  hits:"))
	})

	It("should reject invalid addresses", func() {
		opts.addresses = []string{"0xZZ"}

		Expect(run(opts, out)).To(MatchError(translator.ErrInvalidAddress))
	})

	It("should record and inspect the steps", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		opts.record = path
		opts.recordSet = true

		Expect(run(opts, out)).To(Succeed())

		out.Reset()
		Expect(inspect(context.Background(), out, path+".sqlite3",
			"tlb-hit", 0)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("0x1000"))
		Expect(out.String()).To(ContainSubstring("1 of 1 steps"))

		out.Reset()
		Expect(inspect(context.Background(), out, path+".sqlite3", "", 2)).
			To(Succeed())
		Expect(out.String()).To(ContainSubstring("2 of 6 steps"))
	})

	It("should return an error if the recording already exists", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		Expect(os.WriteFile(path+".sqlite3", nil, 0o644)).To(Succeed())
		opts.record = path
		opts.recordSet = true

		err := run(opts, out)

		Expect(err).To(MatchError(datarecording.ErrDatabaseExists))
		Expect(err.Error()).To(HavePrefix("failed to create recorder"))
	})

	It("should fail to inspect a missing recording", func() {
		err := inspect(context.Background(), out,
			filepath.Join(GinkgoT().TempDir(), "none.sqlite3"), "", 0)

		Expect(err).To(HaveOccurred())
	})
})
