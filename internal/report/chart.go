// Package report renders the donut distribution charts and the optional HTML
// summary report. Charts are produced as SVG (pure Go) or PNG (gonum/plot).
package report

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator — Pure Go, Zero Dependencies
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 480)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 30)
	MarginBottom int    // bottom margin (default: 80, room for rotated dates)
	MarginLeft   int    // left margin (default: 80)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	LineColor    string // series color (default: "#1f77b4")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
	XLabel       string // x-axis title (default: "Date")
	YLabel       string // y-axis title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       480,
		MarginTop:    40,
		MarginRight:  30,
		MarginBottom: 80,
		MarginLeft:   80,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		LineColor:    "#1f77b4",
		FontSize:     11,
		XLabel:       "Date",
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// withDefaults fills zero-valued fields from DefaultChartConfig.
func (c ChartConfig) withDefaults() ChartConfig {
	d := DefaultChartConfig()
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.MarginTop == 0 && c.MarginRight == 0 && c.MarginBottom == 0 && c.MarginLeft == 0 {
		c.MarginTop, c.MarginRight, c.MarginBottom, c.MarginLeft = d.MarginTop, d.MarginRight, d.MarginBottom, d.MarginLeft
	}
	if c.BgColor == "" {
		c.BgColor = d.BgColor
	}
	if c.GridColor == "" {
		c.GridColor = d.GridColor
	}
	if c.TextColor == "" {
		c.TextColor = d.TextColor
	}
	if c.LineColor == "" {
		c.LineColor = d.LineColor
	}
	if c.FontSize == 0 {
		c.FontSize = d.FontSize
	}
	if c.XLabel == "" {
		c.XLabel = d.XLabel
	}
	return c
}

// ════════════════════════════════════════════════════════════════════
// Time-series Line Chart
// ════════════════════════════════════════════════════════════════════

// TimePoint is one observation on a time axis.
type TimePoint struct {
	Time  time.Time
	Value float64
}

// finitePoints drops NaN and ±Inf values.
func finitePoints(points []TimePoint) []TimePoint {
	out := make([]TimePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// TimeSeriesChart generates an SVG line chart with circle markers. Points are
// placed proportionally to their time; non-finite values are skipped. yFmt
// formats y-axis tick labels (nil uses %.1f).
func TimeSeriesChart(points []TimePoint, cfg ChartConfig, yFmt func(float64) string) string {
	cfg = cfg.withDefaults()
	if cfg.Title == "" {
		cfg.Title = "Line Chart"
	}
	if yFmt == nil {
		yFmt = func(v float64) string { return fmt.Sprintf("%.1f", v) }
	}

	points = finitePoints(points)
	if len(points) == 0 {
		return emptySVG(cfg, "No data")
	}

	px, py, pw, ph := cfg.plotArea()

	// Value range, padded by 5%.
	minVal, maxVal := points[0].Value, points[0].Value
	for _, p := range points {
		minVal = math.Min(minVal, p.Value)
		maxVal = math.Max(maxVal, p.Value)
	}
	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = math.Max(math.Abs(maxVal), 1)
	}
	minVal -= vRange * 0.05
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	// Time range. A single instant is centred.
	t0, t1 := points[0].Time, points[0].Time
	for _, p := range points {
		if p.Time.Before(t0) {
			t0 = p.Time
		}
		if p.Time.After(t1) {
			t1 = p.Time
		}
	}
	span := t1.Sub(t0).Seconds()

	toX := func(t time.Time) float64 {
		if span == 0 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + t.Sub(t0).Seconds()/span*float64(pw)
	}
	toY := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/vRange*float64(ph)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="24" font-size="15" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	// Y-axis grid
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-6, y+4, cfg.FontSize, cfg.TextColor, escapeXML(yFmt(val))))
	}

	// Axes
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s"/>`,
		px, py+ph, px+pw, py+ph, cfg.TextColor))
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s"/>`,
		px, py, px, py+ph, cfg.TextColor))

	// Series path + markers
	pathParts := make([]string, 0, len(points))
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, toX(p.Time), toY(p.Value)))
	}
	if len(pathParts) > 1 {
		sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
			strings.Join(pathParts, " "), cfg.LineColor))
	}
	for _, p := range points {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3.5" fill="%s"/>`,
			toX(p.Time), toY(p.Value), cfg.LineColor))
	}

	// X-axis date labels, rotated, at most ~8 of them.
	interval := len(points) / 8
	if interval < 1 {
		interval = 1
	}
	lastLabel := ""
	for i := 0; i < len(points); i += interval {
		label := points[i].Time.Format("2006-01-02")
		if label == lastLabel {
			continue
		}
		lastLabel = label
		x := toX(points[i].Time)
		y := py + ph + 14
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="end" transform="rotate(-45,%.1f,%d)">%s</text>`,
			x, y, cfg.FontSize-1, cfg.TextColor, x, y, label))
	}

	// Axis titles
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
		px+pw/2, cfg.Height-8, cfg.FontSize+1, cfg.TextColor, escapeXML(cfg.XLabel)))
	if cfg.YLabel != "" {
		cy := py + ph/2
		sb.WriteString(fmt.Sprintf(`<text x="16" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-90,16,%d)">%s</text>`,
			cy, cfg.FontSize+1, cfg.TextColor, cy, escapeXML(cfg.YLabel)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
