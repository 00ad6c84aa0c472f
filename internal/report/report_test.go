package report

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/donutreport/internal/normalize"
	"github.com/seenimoa/donutreport/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sampleDataset has three distributions, the last with zero dozens.
func sampleDataset() models.Dataset {
	return normalize.Derive([]models.Record{
		{Date: day(2024, 1, 1), Dozens: 2, TotalPrice: 20},
		{Date: day(2024, 1, 2), Dozens: 3, TotalPrice: 33},
		{Date: day(2024, 1, 5), Dozens: 0, TotalPrice: 5},
	})
}

func chartByName(t *testing.T, name string) ChartSpec {
	t.Helper()
	for _, s := range DefaultCharts() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no chart named %q", name)
	return ChartSpec{}
}

type failingRenderer struct{}

func (failingRenderer) Ext() string { return "svg" }
func (failingRenderer) Render(w io.Writer, spec ChartSpec, ds models.Dataset) error {
	io.WriteString(w, "partial")
	return errors.New("boom")
}

// ════════════════════════════════════════════════════════════════════
// SVG Chart
// ════════════════════════════════════════════════════════════════════

func TestTimeSeriesChart_Basic(t *testing.T) {
	points := []TimePoint{
		{Time: day(2024, 1, 1), Value: 2},
		{Time: day(2024, 1, 2), Value: 3},
		{Time: day(2024, 1, 9), Value: 1.5},
	}
	cfg := DefaultChartConfig()
	cfg.Title = "Dozens Distributed Over Time"
	cfg.YLabel = "Dozens"

	svg := TimeSeriesChart(points, cfg, nil)
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a complete SVG document")
	}
	for _, want := range []string{"Dozens Distributed Over Time", ">Dozens<", ">Date<", "2024-01-01", "2024-01-09", "<path"} {
		if !strings.Contains(svg, want) {
			t.Errorf("expected %q in SVG", want)
		}
	}
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("expected 3 markers, got %d", got)
	}
}

func TestTimeSeriesChart_Empty(t *testing.T) {
	svg := TimeSeriesChart(nil, DefaultChartConfig(), nil)
	if !strings.Contains(svg, "No data") {
		t.Error("expected empty message")
	}
}

func TestTimeSeriesChart_AllNonFinite(t *testing.T) {
	points := []TimePoint{
		{Time: day(2024, 1, 1), Value: math.Inf(1)},
		{Time: day(2024, 1, 2), Value: math.NaN()},
	}
	svg := TimeSeriesChart(points, DefaultChartConfig(), nil)
	if !strings.Contains(svg, "No data") {
		t.Error("expected empty message when no finite points remain")
	}
}

func TestTimeSeriesChart_SinglePoint(t *testing.T) {
	svg := TimeSeriesChart([]TimePoint{{Time: day(2024, 3, 1), Value: 42}}, DefaultChartConfig(), nil)
	if strings.Count(svg, "<circle") != 1 {
		t.Error("expected a single marker")
	}
	if strings.Contains(svg, "<path") {
		t.Error("a single point has no line")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("single point produced NaN coordinates")
	}
}

func TestTimeSeriesChart_SkipsNonFinite(t *testing.T) {
	points := []TimePoint{
		{Time: day(2024, 1, 1), Value: 10},
		{Time: day(2024, 1, 2), Value: math.Inf(1)},
		{Time: day(2024, 1, 3), Value: 20},
		{Time: day(2024, 1, 4), Value: math.NaN()},
		{Time: day(2024, 1, 5), Value: 30},
	}
	svg := TimeSeriesChart(points, DefaultChartConfig(), nil)
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("expected 3 markers, got %d", got)
	}
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Error("non-finite value leaked into SVG")
	}
}

func TestTimeSeriesChart_EscapesTitle(t *testing.T) {
	cfg := DefaultChartConfig()
	cfg.Title = `Dozens <&> "Prices"`
	svg := TimeSeriesChart([]TimePoint{{Time: day(2024, 1, 1), Value: 1}}, cfg, nil)
	if !strings.Contains(svg, "Dozens &lt;&amp;&gt; &quot;Prices&quot;") {
		t.Error("expected escaped title")
	}
}

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"a & b", "a &amp; b"},
		{"<tag>", "&lt;tag&gt;"},
		{`"quoted"`, "&quot;quoted&quot;"},
	}
	for _, tt := range tests {
		if got := escapeXML(tt.input); got != tt.expected {
			t.Errorf("escapeXML(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDefaultChartConfig(t *testing.T) {
	cfg := DefaultChartConfig()
	if cfg.Width != 800 || cfg.Height != 480 {
		t.Errorf("unexpected default size %dx%d", cfg.Width, cfg.Height)
	}
	x, y, w, h := cfg.plotArea()
	if x != 80 || y != 40 || w != 690 || h != 360 {
		t.Errorf("plotArea = (%d,%d,%d,%d)", x, y, w, h)
	}
}

func TestEmptySVG(t *testing.T) {
	svg := emptySVG(ChartConfig{}, "Test message")
	if !strings.Contains(svg, "Test message") {
		t.Error("expected message in empty SVG")
	}
	if !strings.Contains(svg, `width="400"`) {
		t.Error("expected fallback width")
	}
}

// ════════════════════════════════════════════════════════════════════
// Chart Specs
// ════════════════════════════════════════════════════════════════════

func TestDefaultCharts(t *testing.T) {
	want := []struct{ name, title string }{
		{"dozens_over_time", "Dozens Distributed Over Time"},
		{"daily_total_price", "Total Price per Distribution"},
		{"cumulative_total", "Cumulative Total Revenue"},
		{"price_per_dozen", "Price per Dozen"},
	}
	specs := DefaultCharts()
	if len(specs) != len(want) {
		t.Fatalf("expected %d charts, got %d", len(want), len(specs))
	}
	for i, w := range want {
		if specs[i].Name != w.name || specs[i].Title != w.title {
			t.Errorf("chart %d = %s/%q, want %s/%q", i, specs[i].Name, specs[i].Title, w.name, w.title)
		}
		if specs[i].Value == nil || specs[i].Format == nil || specs[i].YLabel == "" {
			t.Errorf("chart %s is incomplete", specs[i].Name)
		}
	}
}

func TestChartSpecPoints(t *testing.T) {
	ds := sampleDataset()

	cum := chartByName(t, "cumulative_total").Points(ds)
	wantCum := []float64{20, 53, 58}
	for i, p := range cum {
		if p.Value != wantCum[i] {
			t.Errorf("cumulative[%d] = %v, want %v", i, p.Value, wantCum[i])
		}
		if !p.Time.Equal(ds.Records[i].Date) {
			t.Errorf("point %d has time %v", i, p.Time)
		}
	}

	ppd := chartByName(t, "price_per_dozen").Points(ds)
	if ppd[0].Value != 10 || ppd[1].Value != 11 {
		t.Errorf("price per dozen = %v, %v", ppd[0].Value, ppd[1].Value)
	}
	if !math.IsInf(ppd[2].Value, 1) {
		t.Errorf("zero dozens should give +Inf, got %v", ppd[2].Value)
	}
}

// ════════════════════════════════════════════════════════════════════
// Renderers
// ════════════════════════════════════════════════════════════════════

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer(ImagePNG, RenderOptions{})
	if err != nil || r.Ext() != "png" {
		t.Fatalf("png renderer: %v, %v", r, err)
	}
	r, err = NewRenderer("SVG", RenderOptions{Width: 640, Height: 400})
	if err != nil || r.Ext() != "svg" {
		t.Fatalf("svg renderer: %v, %v", r, err)
	}
	if cfg := r.(SVGRenderer).Config; cfg.Width != 640 || cfg.Height != 400 {
		t.Errorf("svg size not applied: %dx%d", cfg.Width, cfg.Height)
	}
	if _, err := NewRenderer("gif", RenderOptions{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSVGRenderer_PricePerDozenSkipsZeroDozens(t *testing.T) {
	var buf bytes.Buffer
	r := SVGRenderer{Config: DefaultChartConfig()}
	if err := r.Render(&buf, chartByName(t, "price_per_dozen"), sampleDataset()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	svg := buf.String()
	if !strings.Contains(svg, "Price per Dozen") || !strings.Contains(svg, "USD per dozen") {
		t.Error("expected title and y label")
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 markers, got %d", got)
	}
}

func TestPNGRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := PNGRenderer{Width: 640, Height: 480, DPI: 96}
	if err := r.Render(&buf, chartByName(t, "dozens_over_time"), sampleDataset()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatal("output is not a PNG")
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if abs(cfg.Width-640) > 1 || abs(cfg.Height-480) > 1 {
		t.Errorf("image is %dx%d, want about 640x480", cfg.Width, cfg.Height)
	}
}

func TestPNGRenderer_EmptyDataset(t *testing.T) {
	var buf bytes.Buffer
	if err := (PNGRenderer{}).Render(&buf, chartByName(t, "price_per_dozen"), models.Dataset{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("expected a PNG for an empty dataset")
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ════════════════════════════════════════════════════════════════════
// Chart Writer
// ════════════════════════════════════════════════════════════════════

func TestWriteCharts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figs")
	written, err := WriteCharts(context.Background(), sampleDataset(), WriteOptions{
		Dir:      dir,
		Renderer: SVGRenderer{},
	})
	if err != nil {
		t.Fatalf("WriteCharts: %v", err)
	}
	if len(written) != 4 {
		t.Fatalf("expected 4 files, got %d", len(written))
	}
	for i, spec := range DefaultCharts() {
		want := filepath.Join(dir, spec.Name+".svg")
		if written[i].Name != spec.Name || written[i].Path != want {
			t.Errorf("written[%d] = %+v, want %s", i, written[i], want)
		}
		data, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("reading %s: %v", want, err)
		}
		if !strings.Contains(string(data), spec.Title) {
			t.Errorf("%s missing its title", want)
		}
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 4 {
		t.Errorf("expected only the 4 charts in %s, found %d entries", dir, len(entries))
	}
}

func TestWriteCharts_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dozens_over_time.svg")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := WriteCharts(context.Background(), sampleDataset(), WriteOptions{
		Dir:         dir,
		Renderer:    SVGRenderer{},
		Specs:       []ChartSpec{chartByName(t, "dozens_over_time")},
		Concurrency: 1,
	})
	if err != nil {
		t.Fatalf("WriteCharts: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) == "stale" {
		t.Error("existing chart was not replaced")
	}
}

func TestWriteCharts_RenderError(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteCharts(context.Background(), sampleDataset(), WriteOptions{
		Dir:      dir,
		Renderer: failingRenderer{},
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected render error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("failed render left %d file(s) behind", len(entries))
	}
}

func TestWriteCharts_NoRenderer(t *testing.T) {
	if _, err := WriteCharts(context.Background(), sampleDataset(), WriteOptions{Dir: t.TempDir()}); err == nil {
		t.Error("expected error without a renderer")
	}
}

func TestWriteCharts_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WriteCharts(ctx, sampleDataset(), WriteOptions{Dir: t.TempDir(), Renderer: SVGRenderer{}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// ════════════════════════════════════════════════════════════════════
// HTML Report
// ════════════════════════════════════════════════════════════════════

func TestGenerateHTML(t *testing.T) {
	html, err := GenerateHTML(sampleDataset(), HTMLOptions{
		Source:      "file:donuts.csv",
		DroppedRows: 2,
		GeneratedAt: time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>", "</html>",
		"Donut Distribution Report",
		"file:donuts.csv",
		"01 Feb 2024, 10:30 UTC",
		"2024-01-01 → 2024-01-05",
		"$58.00", // total revenue
		"$10.50", // mean of 10 and 11 per dozen
		"2 row(s) skipped",
		"1 row(s) with zero dozens",
		"Cumulative Total Revenue",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q", want)
		}
	}
	if got := strings.Count(html, "<svg"); got != 4 {
		t.Errorf("expected 4 inline charts, found %d", got)
	}
	if got := strings.Count(html, "<td>2024-"); got != 3 {
		t.Errorf("expected 3 table rows, found %d", got)
	}
	if !strings.Contains(html, "n/a") {
		t.Error("zero-dozen row should show n/a unit prices")
	}
}

func TestGenerateHTML_EscapesSource(t *testing.T) {
	html, err := GenerateHTML(models.Dataset{}, HTMLOptions{Source: "<script>alert(1)</script>"})
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("source was not escaped")
	}
	if !strings.Contains(html, "No data") {
		t.Error("empty dataset should render placeholder charts")
	}
}

func TestWriteHTML(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteHTML(dir, sampleDataset(), HTMLOptions{Title: "Weekly Donuts"})
	if err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if path != filepath.Join(dir, HTMLFileName) {
		t.Errorf("unexpected path %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat report file: %v", err)
	}
	if info.Size() < 1000 {
		t.Errorf("report file suspiciously small: %d bytes", info.Size())
	}
}
