package metrics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fpl-tracker/fpl-proxy/internal/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.NewMetrics()
	})

	Describe("IncrementRequests", func() {
		It("should count requests per route", func() {
			m.IncrementRequests("live-data")
			m.IncrementRequests("live-data")
			m.IncrementRequests("bootstrap-static")

			snap := m.Snapshot()
			Expect(snap.Routes["live-data"].Requests).To(Equal(int64(2)))
			Expect(snap.Routes["bootstrap-static"].Requests).To(Equal(int64(1)))
			Expect(snap.TotalRequests).To(Equal(int64(3)))
		})
	})

	Describe("RecordUpstream", func() {
		It("should count calls and failures by reason", func() {
			m.RecordUpstream("manager-history", 10*time.Millisecond, "")
			m.RecordUpstream("manager-history", 20*time.Millisecond, "status")
			m.RecordUpstream("manager-history", 30*time.Millisecond, "status")
			m.RecordUpstream("manager-history", 40*time.Millisecond, "network")

			rm := m.Snapshot().Routes["manager-history"]
			Expect(rm.UpstreamCalls).To(Equal(int64(4)))
			Expect(rm.UpstreamFailures).To(Equal(map[string]int64{"status": 2, "network": 1}))
		})

		It("should leave failures empty on success", func() {
			m.RecordUpstream("live-data", 5*time.Millisecond, "")
			Expect(m.Snapshot().Routes["live-data"].UpstreamFailures).To(BeNil())
		})

		It("should compute average and percentiles", func() {
			for i := 1; i <= 100; i++ {
				m.RecordUpstream("live-data", time.Duration(i)*time.Millisecond, "")
			}

			rm := m.Snapshot().Routes["live-data"]
			Expect(rm.AvgUpstream).To(Equal(50500 * time.Microsecond))
			Expect(rm.P50Upstream).To(Equal(51 * time.Millisecond))
			Expect(rm.P95Upstream).To(Equal(96 * time.Millisecond))
			Expect(rm.P99Upstream).To(Equal(100 * time.Millisecond))
		})

		It("should keep a bounded latency window", func() {
			for i := 0; i < 1500; i++ {
				m.RecordUpstream("live-data", time.Second, "")
			}
			m.RecordUpstream("live-data", time.Millisecond, "")

			rm := m.Snapshot().Routes["live-data"]
			Expect(rm.UpstreamCalls).To(Equal(int64(1501)))
			Expect(rm.P50Upstream).To(Equal(time.Second))
		})
	})

	Describe("RecordResponse", func() {
		It("should track the status code distribution", func() {
			m.RecordResponse("manager-picks", 200)
			m.RecordResponse("manager-picks", 200)
			m.RecordResponse("manager-picks", 500)

			Expect(m.Snapshot().Routes["manager-picks"].StatusCodes).To(Equal(map[int]int64{200: 2, 500: 1}))
		})
	})

	Describe("Snapshot", func() {
		It("should be empty on a fresh store", func() {
			snap := m.Snapshot()
			Expect(snap.TotalRequests).To(BeZero())
			Expect(snap.Routes).To(BeEmpty())
		})

		It("should not share maps with the store", func() {
			m.RecordResponse("index", 200)
			snap := m.Snapshot()
			snap.Routes["index"].StatusCodes[200] = 99

			Expect(m.Snapshot().Routes["index"].StatusCodes[200]).To(Equal(int64(1)))
		})
	})
})
