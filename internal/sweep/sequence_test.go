package sweep_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ising/internal/stats"
	"github.com/san-kum/ising/internal/sweep"
)

var _ = Describe("Temperatures", func() {
	It("spans 0.2 to 4.0 in steps of 0.1", func() {
		ts := sweep.Temperatures(0.2, 4.0, 0.1)

		Expect(ts).To(HaveLen(int(math.Floor((4.0-0.2)/0.1+1e-9)) + 1))
		Expect(ts).To(HaveLen(39))
		Expect(ts[0]).To(Equal(0.2))
		Expect(ts[len(ts)-1]).To(BeNumerically("<=", 4.0))
		Expect(ts[len(ts)-1]).To(BeNumerically("~", 4.0, 1e-9))
		for i := 1; i < len(ts); i++ {
			Expect(ts[i] - ts[i-1]).To(BeNumerically("~", 0.1, 1e-9))
		}
	})

	It("stops below an upper bound off the grid", func() {
		ts := sweep.Temperatures(1.0, 2.05, 0.5)
		Expect(ts).To(HaveLen(3))
		Expect(ts[2]).To(BeNumerically("~", 2.0, 1e-12))
	})

	It("returns a single point when the bounds coincide", func() {
		Expect(sweep.Temperatures(2.27, 2.27, 0.1)).To(Equal([]float64{2.27}))
	})

	It("returns nothing for an empty range", func() {
		Expect(sweep.Temperatures(3, 1, 0.1)).To(BeEmpty())
		Expect(sweep.Temperatures(1, 3, 0)).To(BeEmpty())
		Expect(sweep.Temperatures(1, 3, math.NaN())).To(BeEmpty())
	})
})

var _ = Describe("SortRecords", func() {
	It("sorts ascending by temperature", func() {
		recs := []stats.Record{{T: 3}, {T: 1}, {T: 2.5}, {T: 0.2}}
		sweep.SortRecords(recs)
		Expect(recs).To(Equal([]stats.Record{{T: 0.2}, {T: 1}, {T: 2.5}, {T: 3}}))
	})

	It("falls back to less for NaN temperatures", func() {
		Expect(sweep.CompareTemperatures(math.NaN(), 1)).To(Equal(-1))
		Expect(sweep.CompareTemperatures(1, math.NaN())).To(Equal(-1))
		Expect(sweep.CompareTemperatures(1, 2)).To(Equal(-1))
		Expect(sweep.CompareTemperatures(2, 1)).To(Equal(1))
		Expect(sweep.CompareTemperatures(2, 2)).To(Equal(0))

		recs := []stats.Record{{T: 2}, {T: math.NaN()}, {T: 1}}
		Expect(func() { sweep.SortRecords(recs) }).NotTo(Panic())
		Expect(recs).To(HaveLen(3))
	})
})
