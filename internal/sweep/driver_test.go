package sweep_test

import (
	"context"
	"errors"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/sweep"
)

func smallConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Temperature = config.TemperatureConfig{Min: 1.0, Max: 3.5, Step: 0.5}
	cfg.LatticeSize = 6
	cfg.FlipsToSkip = 500
	cfg.MeasurementsPerT = 40
	cfg.FlipsPerMeasurement = 36
	cfg.AttemptsPerFlip = 5
	cfg.Seed = 2024
	cfg.Workers = 3
	return *cfg
}

var _ = Describe("Driver", func() {
	var cfg config.Config

	BeforeEach(func() {
		cfg = smallConfig()
	})

	It("rejects an invalid configuration before running", func() {
		cfg.LatticeSize = 0
		_, err := sweep.New(cfg)
		Expect(errors.Is(err, config.ErrInvalid)).To(BeTrue())
	})

	It("returns one record per temperature in ascending order", func() {
		d, err := sweep.New(cfg)
		Expect(err).NotTo(HaveOccurred())

		res, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		temps := d.Temperatures()
		Expect(temps).To(HaveLen(6))
		Expect(res.Records).To(HaveLen(len(temps)))
		for i, rec := range res.Records {
			Expect(rec.T).To(Equal(temps[i]))
			Expect(rec.I).To(BeNumerically(">=", 0))
			Expect(rec.I).To(BeNumerically("<=", 1))
			Expect(rec.DE).To(BeNumerically(">=", 0))
			Expect(rec.X).To(BeNumerically(">=", 0))
		}
		Expect(res.Diagnostics).To(HaveLen(len(temps)))
	})

	It("delivers every progress signal before returning", func() {
		var calls, last, expected atomic.Int64
		d, err := sweep.New(cfg, sweep.WithObserver(func(done, total int64) {
			calls.Add(1)
			last.Store(done)
			expected.Store(total)
		}))
		Expect(err).NotTo(HaveOccurred())

		res, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Signals).To(Equal(int64(40 * 6)))
		Expect(calls.Load()).To(Equal(int64(40 * 6)))
		Expect(last.Load()).To(Equal(int64(40 * 6)))
		Expect(expected.Load()).To(Equal(int64(40 * 6)))
	})

	It("is deterministic for a fixed seed regardless of worker count", func() {
		cfg.Temperature = config.TemperatureConfig{Min: 2.2, Max: 2.2, Step: 0.1}
		cfg.Workers = 1

		run := func(c config.Config) *sweep.Result {
			d, err := sweep.New(c)
			Expect(err).NotTo(HaveOccurred())
			res, err := d.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			return res
		}

		first := run(cfg)
		Expect(first.Records).To(HaveLen(1))
		Expect(run(cfg).Records).To(Equal(first.Records))

		wide := smallConfig()
		wide.Workers = 1
		serial := run(wide)
		wide.Workers = 6
		Expect(run(wide).Records).To(Equal(serial.Records))
	})

	It("reproduces the untouched two-by-two lattice scenario", func() {
		cfg.LatticeSize = 2
		cfg.J, cfg.K = 1.0, 1.0
		cfg.Temperature = config.TemperatureConfig{Min: 1.0, Max: 1.0, Step: 0.1}
		cfg.FlipsToSkip = 0
		cfg.MeasurementsPerT = 1
		cfg.FlipsPerMeasurement = 0
		cfg.AttemptsPerFlip = 1

		d, err := sweep.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		res, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Records).To(HaveLen(1))
		rec := res.Records[0]
		Expect(rec.DE).To(BeZero())
		Expect(rec.X).To(BeZero())
		Expect(rec.I).To(BeElementOf(0.0, 0.5, 1.0))
		Expect(res.Diagnostics[0].Proposals).To(BeZero())
		Expect(res.Signals).To(Equal(int64(1)))
	})

	It("stops unstarted workers when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d, err := sweep.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		res, err := d.Run(ctx)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res).To(BeNil())
	})

	It("selects the configured susceptibility strategy", func() {
		cfg.Observables = config.ObservablesConfig{SusceptibilitySource: "order", SusceptibilityScaling: "thermal"}
		energy := smallConfig()

		d, err := sweep.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		byOrder, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		d, err = sweep.New(energy)
		Expect(err).NotTo(HaveOccurred())
		byEnergy, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		for i := range byOrder.Records {
			Expect(byOrder.Records[i].DE).To(Equal(byEnergy.Records[i].DE))
			Expect(byOrder.Records[i].I).To(Equal(byEnergy.Records[i].I))
		}
		Expect(byOrder.Records).NotTo(Equal(byEnergy.Records))
	})
})
