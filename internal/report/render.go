package report

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/seenimoa/donutreport/pkg/models"
)

// Renderer draws one chart of a dataset into w.
type Renderer interface {
	// Ext is the file extension written by this renderer, without the dot.
	Ext() string
	Render(w io.Writer, spec ChartSpec, ds models.Dataset) error
}

// ImageFormat names an output image format.
type ImageFormat string

const (
	ImagePNG ImageFormat = "png"
	ImageSVG ImageFormat = "svg"
)

// RenderOptions sizes rendered images. Width and Height are pixels.
type RenderOptions struct {
	Width  int
	Height int
	DPI    int // PNG only (default: 160)
}

// NewRenderer returns the renderer for format.
func NewRenderer(format ImageFormat, opts RenderOptions) (Renderer, error) {
	switch ImageFormat(strings.ToLower(string(format))) {
	case ImagePNG, "":
		return PNGRenderer{Width: opts.Width, Height: opts.Height, DPI: opts.DPI}, nil
	case ImageSVG:
		cfg := DefaultChartConfig()
		if opts.Width > 0 {
			cfg.Width = opts.Width
		}
		if opts.Height > 0 {
			cfg.Height = opts.Height
		}
		return SVGRenderer{Config: cfg}, nil
	default:
		return nil, fmt.Errorf("unsupported image format %q (want png or svg)", format)
	}
}

// ════════════════════════════════════════════════════════════════════
// SVG
// ════════════════════════════════════════════════════════════════════

// SVGRenderer writes charts with TimeSeriesChart.
type SVGRenderer struct {
	Config ChartConfig
}

func (SVGRenderer) Ext() string { return string(ImageSVG) }

// Render writes the SVG document for spec.
func (r SVGRenderer) Render(w io.Writer, spec ChartSpec, ds models.Dataset) error {
	_, err := io.WriteString(w, r.SVG(spec, ds))
	return err
}

// SVG returns the chart as an SVG string, for inlining in HTML.
func (r SVGRenderer) SVG(spec ChartSpec, ds models.Dataset) string {
	cfg := r.Config
	cfg.Title = spec.Title
	cfg.YLabel = spec.YLabel
	return TimeSeriesChart(spec.Points(ds), cfg, spec.Format)
}

// ════════════════════════════════════════════════════════════════════
// PNG (gonum/plot)
// ════════════════════════════════════════════════════════════════════

var seriesColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

// PNGRenderer draws charts with gonum/plot: a line with circle markers over
// a date axis with rotated tick labels.
type PNGRenderer struct {
	Width  int // pixels (default: 1024)
	Height int // pixels (default: 768)
	DPI    int // default: 160
}

func (PNGRenderer) Ext() string { return string(ImagePNG) }

// Render encodes the chart as PNG into w.
func (r PNGRenderer) Render(w io.Writer, spec ChartSpec, ds models.Dataset) error {
	p, err := r.plot(spec, ds)
	if err != nil {
		return err
	}

	width, height, dpi := r.Width, r.Height, r.DPI
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 768
	}
	if dpi <= 0 {
		dpi = 160
	}
	c := vgimg.NewWith(
		vgimg.UseWH(pixels(width, dpi), pixels(height, dpi)),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r PNGRenderer) plot(spec ChartSpec, ds models.Dataset) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = spec.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Add(plotter.NewGrid())

	pts := finitePoints(spec.Points(ds))
	if len(pts) == 0 {
		return p, nil
	}

	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X = float64(pt.Time.Unix())
		xys[i].Y = pt.Value
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("build %s series: %w", spec.Name, err)
	}
	line.Color = seriesColor
	line.Width = vg.Points(1.5)
	points.Color = seriesColor
	points.Shape = draw.CircleGlyph{}
	points.Radius = vg.Points(3)
	p.Add(line, points)
	return p, nil
}

// pixels converts a pixel count at dpi into a vg.Length.
func pixels(n, dpi int) vg.Length {
	return vg.Length(float64(n)/float64(dpi)) * vg.Inch
}
