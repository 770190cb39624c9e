package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/spf13/cobra"
)

const historyLen = 100

type MetricsUI struct {
	cpuChart    *widgets.Plot
	memChart    *widgets.Plot
	reqChart    *widgets.Plot
	gauges      []*widgets.Gauge
	routeList   *widgets.List
	summaryText *widgets.Paragraph

	last     Snapshot
	lastTime time.Time
}

func NewMetricsUI() *MetricsUI {
	return &MetricsUI{
		cpuChart:    widgets.NewPlot(),
		memChart:    widgets.NewPlot(),
		reqChart:    widgets.NewPlot(),
		gauges:      make([]*widgets.Gauge, 3),
		routeList:   widgets.NewList(),
		summaryText: widgets.NewParagraph(),
	}
}

func (m *MetricsUI) setupUI() {
	termui.Clear()
	m.initWidgets()
	m.layoutUI()
}

func (m *MetricsUI) initWidgets() {
	for _, c := range []struct {
		plot  *widgets.Plot
		title string
		color termui.Color
	}{
		{m.cpuChart, "CPU (cores)", termui.ColorGreen},
		{m.memChart, "Heap (MiB)", termui.ColorYellow},
		{m.reqChart, "Requests/s", termui.ColorCyan},
	} {
		c.plot.Title = c.title
		c.plot.LineColors = []termui.Color{c.color}
		c.plot.AxesColor = termui.ColorWhite
		// Plot needs two points before it can draw.
		c.plot.Data = [][]float64{{0, 0}}
	}

	for i := range m.gauges {
		m.gauges[i] = widgets.NewGauge()
		m.gauges[i].BarColor = termui.ColorBlue
	}
	m.gauges[0].Title = "Cache Hit Rate"
	m.gauges[1].Title = "Error Rate"
	m.gauges[2].Title = "In Flight"

	m.routeList.Title = "Requests by Route"
	m.routeList.TextStyle = termui.NewStyle(termui.ColorWhite)
	m.routeList.WrapText = false

	m.summaryText.Title = "Summary"
	m.summaryText.TextStyle = termui.NewStyle(termui.ColorWhite)
}

func (m *MetricsUI) layoutUI() {
	termWidth, termHeight := termui.TerminalDimensions()

	chartHeight := termHeight / 3
	gaugeHeight := 3
	summaryHeight := 6

	m.cpuChart.SetRect(0, 0, termWidth/3, chartHeight)
	m.memChart.SetRect(termWidth/3, 0, 2*termWidth/3, chartHeight)
	m.reqChart.SetRect(2*termWidth/3, 0, termWidth, chartHeight)

	gaugeWidth := termWidth / 3
	for i, gauge := range m.gauges {
		gauge.SetRect(i*gaugeWidth, chartHeight, (i+1)*gaugeWidth, chartHeight+gaugeHeight)
	}

	m.summaryText.SetRect(0, chartHeight+gaugeHeight, termWidth, chartHeight+gaugeHeight+summaryHeight)
	m.routeList.SetRect(0, chartHeight+gaugeHeight+summaryHeight, termWidth, termHeight)
}

func push(series []float64, v float64) []float64 {
	if len(series) >= historyLen {
		series = series[1:]
	}
	return append(series, v)
}

// update folds a new snapshot into the widgets. Rates are computed against
// the previous snapshot.
func (m *MetricsUI) update(snap Snapshot, now time.Time) {
	var cpu, reqRate float64
	if !m.lastTime.IsZero() {
		if elapsed := now.Sub(m.lastTime).Seconds(); elapsed > 0 {
			cpu = (snap.CPUSeconds - m.last.CPUSeconds) / elapsed
			reqRate = (snap.TotalRequests - m.last.TotalRequests) / elapsed
		}
	}
	m.last, m.lastTime = snap, now

	m.cpuChart.Data[0] = push(m.cpuChart.Data[0], cpu)
	m.memChart.Data[0] = push(m.memChart.Data[0], snap.HeapBytes/(1<<20))
	m.reqChart.Data[0] = push(m.reqChart.Data[0], reqRate)

	m.gauges[0].Percent = percent(snap.HitRate())
	errRate := 0.0
	if snap.TotalRequests > 0 {
		errRate = snap.ServerErrors / snap.TotalRequests
	}
	m.gauges[1].Percent = percent(errRate)
	m.gauges[2].Percent = percent(snap.InFlight / 100)
	m.gauges[2].Label = fmt.Sprintf("%.0f", snap.InFlight)

	rows := make([]string, 0, len(snap.Routes))
	for _, r := range snap.Routes {
		rows = append(rows, fmt.Sprintf("%-24s %10.0f", r.Route, r.Count))
	}
	m.routeList.Rows = rows

	m.summaryText.Text = fmt.Sprintf(
		"Total Requests: %.0f\nServer Errors: %.0f\nAverage Response Time: %.2fms\nCache Entries: %.0f\nGoroutines: %.0f",
		snap.TotalRequests,
		snap.ServerErrors,
		snap.AvgLatency()*1000,
		snap.CacheSize,
		snap.Goroutines,
	)
}

func percent(f float64) int {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 100
	}
	return int(f * 100)
}

func (m *MetricsUI) render() {
	termui.Render(m.cpuChart, m.memChart, m.reqChart, m.gauges[0], m.gauges[1], m.gauges[2], m.summaryText, m.routeList)
}

func (m *MetricsUI) Run(ctx context.Context, s *scraper, interval time.Duration) error {
	if err := termui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer termui.Close()

	m.setupUI()

	refresh := func() {
		snap, err := s.scrape(ctx)
		if err != nil {
			m.summaryText.Text = err.Error()
		} else {
			m.update(snap, time.Now())
		}
		m.render()
	}
	refresh()

	uiEvents := termui.PollEvents()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-uiEvents:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			case "<Resize>":
				m.layoutUI()
				termui.Clear()
				m.render()
			}
		case <-ticker.C:
			refresh()
		}
	}
}

func main() {
	var (
		url      string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Live dashboard of a running server's metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := &scraper{url: url, client: &http.Client{Timeout: interval}}
			return NewMetricsUI().Run(cmd.Context(), s, interval)
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost:3000/metrics", "metrics endpoint to scrape")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "refresh interval")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
