package metrics

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// Summary is the JSON response for the metrics endpoint.
type Summary struct {
	HTTP        httpSummary    `json:"http"`
	Sessions    sessionSummary `json:"sessions"`
	Storage     storageSummary `json:"storage"`
	Auth        authInfo       `json:"auth"`
	RateLimited float64        `json:"rateLimited"`
	Pool        poolInfo       `json:"pool"`
	Items       map[string]int `json:"items"`
	Server      serverInfo     `json:"server"`
}

type httpSummary struct {
	TotalRequests float64 `json:"totalRequests"`
	ErrorRate     float64 `json:"errorRate"`
	P50Latency    float64 `json:"p50Latency"`
	P95Latency    float64 `json:"p95Latency"`
	P99Latency    float64 `json:"p99Latency"`
}

type sessionSummary struct {
	Created   float64            `json:"created"`
	Completed float64            `json:"completed"`
	Cancelled float64            `json:"cancelled"`
	Responses map[string]float64 `json:"responses"`
}

type storageSummary struct {
	Operations float64 `json:"operations"`
	Errors     float64 `json:"errors"`
	P95Latency float64 `json:"p95Latency"`
}

type authInfo struct {
	Failures  float64 `json:"failures"`
	Successes float64 `json:"successes"`
}

type poolInfo struct {
	TotalConns    float64 `json:"totalConns"`
	IdleConns     float64 `json:"idleConns"`
	AcquiredConns float64 `json:"acquiredConns"`
}

type serverInfo struct {
	StartTime     float64 `json:"startTime"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// Handler returns an http.HandlerFunc that serves live metrics in JSON format.
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := m.Summarize()
		if err != nil {
			http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store")
		_ = json.NewEncoder(w).Encode(summary)
	}
}

// Summarize gathers the registry into a Summary.
func (m *Metrics) Summarize() (Summary, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return Summary{}, err
	}

	fam := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		fam[f.GetName()] = f
	}

	httpDur := fam["fiveplanner_http_request_duration_seconds"]
	start := gaugeValue(fam["fiveplanner_server_start_time_seconds"])

	return Summary{
		HTTP: httpSummary{
			TotalRequests: sumCounter(fam["fiveplanner_http_requests_total"], nil),
			ErrorRate:     errorRate(fam["fiveplanner_http_requests_total"]),
			P50Latency:    histogramPercentile(httpDur, 0.50),
			P95Latency:    histogramPercentile(httpDur, 0.95),
			P99Latency:    histogramPercentile(httpDur, 0.99),
		},
		Sessions: sessionSummary{
			Created:   sumCounter(fam["fiveplanner_sessions_created_total"], nil),
			Completed: sumCounter(fam["fiveplanner_sessions_resolved_total"], withLabel("status", "completed")),
			Cancelled: sumCounter(fam["fiveplanner_sessions_resolved_total"], withLabel("status", "cancelled")),
			Responses: countersByLabel(fam["fiveplanner_responses_total"], "status"),
		},
		Storage: storageSummary{
			Operations: sumCounter(fam["fiveplanner_storage_ops_total"], nil),
			Errors:     sumCounter(fam["fiveplanner_storage_ops_total"], withLabel("result", "error")),
			P95Latency: histogramPercentile(fam["fiveplanner_storage_op_duration_seconds"], 0.95),
		},
		Auth: authInfo{
			Failures:  sumCounter(fam["fiveplanner_auth_failures_total"], nil),
			Successes: sumCounter(fam["fiveplanner_auth_successes_total"], nil),
		},
		RateLimited: sumCounter(fam["fiveplanner_rate_limited_total"], nil),
		Pool: poolInfo{
			TotalConns:    gaugeValue(fam["fiveplanner_storage_pool_total_conns"]),
			IdleConns:     gaugeValue(fam["fiveplanner_storage_pool_idle_conns"]),
			AcquiredConns: gaugeValue(fam["fiveplanner_storage_pool_acquired_conns"]),
		},
		Items: gaugesByLabel(fam["fiveplanner_collection_items"], "collection"),
		Server: serverInfo{
			StartTime:     start,
			UptimeSeconds: float64(time.Now().Unix()) - start,
		},
	}, nil
}

// --- Prometheus metric helpers ---

type metricFilter func(*dto.Metric) bool

func withLabel(name, value string) metricFilter {
	return func(m *dto.Metric) bool {
		return labelValue(m, name) == value
	}
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func sumCounter(f *dto.MetricFamily, keep metricFilter) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, m := range f.GetMetric() {
		if m.GetCounter() == nil || (keep != nil && !keep(m)) {
			continue
		}
		total += m.GetCounter().GetValue()
	}
	return total
}

func countersByLabel(f *dto.MetricFamily, label string) map[string]float64 {
	out := map[string]float64{}
	if f == nil {
		return out
	}
	for _, m := range f.GetMetric() {
		if m.GetCounter() != nil {
			out[labelValue(m, label)] += m.GetCounter().GetValue()
		}
	}
	return out
}

func gaugesByLabel(f *dto.MetricFamily, label string) map[string]int {
	out := map[string]int{}
	if f == nil {
		return out
	}
	for _, m := range f.GetMetric() {
		if m.GetGauge() != nil {
			out[labelValue(m, label)] = int(m.GetGauge().GetValue())
		}
	}
	return out
}

func gaugeValue(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	ms := f.GetMetric()
	if len(ms) == 0 || ms[0].GetGauge() == nil {
		return 0
	}
	return ms[0].GetGauge().GetValue()
}

// errorRate is the share of requests answered with a 4xx or 5xx status.
func errorRate(f *dto.MetricFamily) float64 {
	total := sumCounter(f, nil)
	if total == 0 {
		return 0
	}
	failed := sumCounter(f, func(m *dto.Metric) bool {
		code := labelValue(m, "status_code")
		return len(code) > 0 && code[0] >= '4'
	})
	return failed / total
}

// histogramPercentile computes a percentile from aggregated histogram buckets
// using linear interpolation.
func histogramPercentile(f *dto.MetricFamily, q float64) float64 {
	if f == nil {
		return 0
	}

	type bucket struct {
		upperBound      float64
		cumulativeCount uint64
	}
	var totalCount uint64
	bucketMap := make(map[float64]uint64)

	for _, m := range f.GetMetric() {
		h := m.GetHistogram()
		if h == nil {
			continue
		}
		totalCount += h.GetSampleCount()
		for _, b := range h.GetBucket() {
			bucketMap[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if totalCount == 0 {
		return 0
	}

	buckets := make([]bucket, 0, len(bucketMap))
	for ub, count := range bucketMap {
		if !math.IsInf(ub, 1) {
			buckets = append(buckets, bucket{upperBound: ub, cumulativeCount: count})
		}
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].upperBound < buckets[j].upperBound
	})

	rank := q * float64(totalCount)
	var prevBound float64
	var prevCount uint64
	for _, b := range buckets {
		if float64(b.cumulativeCount) >= rank {
			n := b.cumulativeCount - prevCount
			if n == 0 {
				return b.upperBound
			}
			return prevBound + (rank-float64(prevCount))/float64(n)*(b.upperBound-prevBound)
		}
		prevBound = b.upperBound
		prevCount = b.cumulativeCount
	}

	// Rank falls in the +Inf bucket.
	if len(buckets) > 0 {
		return buckets[len(buckets)-1].upperBound
	}
	return 0
}
