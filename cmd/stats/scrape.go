package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const namespace = "gogofolio_"

// Snapshot is one scrape of a running server.
type Snapshot struct {
	TotalRequests float64
	ServerErrors  float64
	InFlight      float64
	LatencySum    float64
	LatencyCount  float64

	Goroutines  float64
	HeapBytes   float64
	CPUSeconds  float64
	CacheHits   float64
	CacheMisses float64
	CacheSize   float64

	Routes []RouteCount
}

type RouteCount struct {
	Route string
	Count float64
}

// AvgLatency is the mean request latency in seconds since the server started.
func (s Snapshot) AvgLatency() float64 {
	if s.LatencyCount == 0 {
		return 0
	}
	return s.LatencySum / s.LatencyCount
}

// HitRate is the fraction of cache lookups that hit, across every cache.
func (s Snapshot) HitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return s.CacheHits / total
}

type scraper struct {
	url    string
	client *http.Client
}

func (s *scraper) scrape(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("scrape %s: %w", s.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("scrape %s: unexpected status %s", s.url, resp.Status)
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse metrics: %w", err)
	}
	return snapshotOf(families), nil
}

func snapshotOf(families map[string]*dto.MetricFamily) Snapshot {
	var snap Snapshot
	byRoute := make(map[string]float64)

	for name, mf := range families {
		for _, m := range mf.GetMetric() {
			switch strings.TrimPrefix(name, namespace) {
			case "http_requests_total":
				v := m.GetCounter().GetValue()
				snap.TotalRequests += v
				if strings.HasPrefix(label(m, "status"), "5") {
					snap.ServerErrors += v
				}
				byRoute[label(m, "route")] += v
			case "http_requests_in_flight":
				snap.InFlight = m.GetGauge().GetValue()
			case "http_request_duration_seconds":
				snap.LatencySum += m.GetHistogram().GetSampleSum()
				snap.LatencyCount += float64(m.GetHistogram().GetSampleCount())
			case "cache_hits_total":
				snap.CacheHits += m.GetCounter().GetValue()
			case "cache_misses_total":
				snap.CacheMisses += m.GetCounter().GetValue()
			case "cache_entries":
				snap.CacheSize += m.GetGauge().GetValue()
			case "go_goroutines":
				snap.Goroutines = m.GetGauge().GetValue()
			case "go_memstats_heap_alloc_bytes":
				snap.HeapBytes = m.GetGauge().GetValue()
			case "process_cpu_seconds_total":
				snap.CPUSeconds = m.GetCounter().GetValue()
			}
		}
	}

	for route, count := range byRoute {
		snap.Routes = append(snap.Routes, RouteCount{Route: route, Count: count})
	}
	sort.Slice(snap.Routes, func(i, j int) bool {
		if snap.Routes[i].Count != snap.Routes[j].Count {
			return snap.Routes[i].Count > snap.Routes[j].Count
		}
		return snap.Routes[i].Route < snap.Routes[j].Route
	})
	return snap
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
