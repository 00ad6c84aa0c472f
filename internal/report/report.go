package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/donutreport/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Chart Writer — renders every chart spec into an output directory
// ════════════════════════════════════════════════════════════════════

// Written records one output file.
type Written struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// WriteOptions controls WriteCharts.
type WriteOptions struct {
	Dir         string
	Renderer    Renderer
	Specs       []ChartSpec // default: DefaultCharts()
	Concurrency int         // default: 4
}

// WriteCharts renders each spec into Dir/<name>.<ext>, creating Dir when
// needed. Charts are independent and rendered concurrently; the first error
// cancels the rest. Results are returned in spec order.
func WriteCharts(ctx context.Context, ds models.Dataset, opts WriteOptions) ([]Written, error) {
	if opts.Renderer == nil {
		return nil, fmt.Errorf("report: renderer is required")
	}
	specs := opts.Specs
	if specs == nil {
		specs = DefaultCharts()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 4
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	out := make([]Written, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(opts.Dir, spec.Name+"."+opts.Renderer.Ext())
			err := writeFileAtomic(path, func(w io.Writer) error {
				return opts.Renderer.Render(w, spec, ds)
			})
			if err != nil {
				return fmt.Errorf("chart %s: %w", spec.Name, err)
			}
			slog.Info("chart written", "chart", spec.Name, "path", path)
			out[i] = Written{Name: spec.Name, Path: path}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// writeFileAtomic writes through a temp file in the same directory and
// renames it into place, so a failed render never leaves a truncated image.
func writeFileAtomic(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := fill(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
