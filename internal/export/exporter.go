package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/spritestudio/pkg/compositor"
	"github.com/Faultbox/spritestudio/pkg/imaging"
	"github.com/Faultbox/spritestudio/pkg/model"
	"github.com/Faultbox/spritestudio/pkg/spritesheet"
)

// Exporter renders and writes spritesheets. Safe for sequential reuse; the
// character must not be mutated while a job runs.
type Exporter struct {
	comp    *compositor.Compositor
	workers int
	log     *zap.Logger
}

// New returns an exporter. A nil compositor renders without caches, workers
// <= 0 means one per CPU and a nil logger discards output.
func New(comp *compositor.Compositor, workers int, log *zap.Logger) *Exporter {
	if comp == nil {
		comp = compositor.New(nil, nil)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{comp: comp, workers: workers, log: log}
}

// ErrCorruptAnimation marks frames dropped because another frame of the same
// animation references a missing part.
var ErrCorruptAnimation = errors.New("corrupt animation")

type result struct {
	img *image.NRGBA
	err error
}

// Render runs the compositing half of a job and packs the result in memory.
// Frame failures are collected in the report. The error is non-nil only for
// whole-job failures: a rejected request, cancellation, or no frame
// rendering at all.
func (e *Exporter) Render(ctx context.Context, ch *model.Character, req Request) (*Report, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Layout.Validate(); err != nil {
		return nil, err
	}
	if ch.Canvas.X <= 0 || ch.Canvas.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", model.ErrInvalidCanvas, ch.Canvas.X, ch.Canvas.Y)
	}
	items, err := plan(ch, req.Selections)
	if err != nil {
		return nil, err
	}

	workers := e.workers
	if req.Workers > 0 {
		workers = req.Workers
	}
	log := e.log.With(zap.String("character", ch.Name))
	log.Debug("export started", zap.Int("frames", len(items)), zap.Int("workers", workers))

	results := make([]result, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := e.comp.RenderFrame(ch, it.anim, it.index)
			results[i] = result{img: img, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Single-threaded barrier: results are consumed in queue order.
	// A dangling part reference is data corruption and drops every frame of
	// its animation.
	corrupt := make(map[*model.Animation]error)
	for i, it := range items {
		if err := results[i].err; errors.Is(err, model.ErrDanglingPartReference) {
			if _, seen := corrupt[it.anim]; !seen {
				corrupt[it.anim] = err
			}
		}
	}
	frames := make([]spritesheet.Frame, 0, len(items))
	var failures []Failure
	for i, it := range items {
		err := results[i].err
		if cause, ok := corrupt[it.anim]; ok && err == nil {
			err = fmt.Errorf("%w: animation dropped: %w", ErrCorruptAnimation, cause)
		}
		if err != nil {
			log.Warn("frame skipped",
				zap.String("animation", it.anim.Name),
				zap.Int("frame", it.index),
				zap.Error(err))
			failures = append(failures, Failure{Animation: it.anim.Name, FrameIndex: it.index, Err: err})
			continue
		}
		frames = append(frames, spritesheet.Frame{Animation: it.anim.Name, Index: it.index, Image: results[i].img})
	}

	report := &Report{Failures: failures}
	if len(frames) == 0 {
		return report, fmt.Errorf("%w: all %d frames failed: %w", spritesheet.ErrEmptyExportJob, len(items), report.Err())
	}

	sheet, err := spritesheet.Pack(frames, ch.Canvas, req.Layout)
	if err != nil {
		return report, err
	}
	report.Sheet = sheet
	report.Metadata = sheet.Metadata(ch.Name, "")
	report.Metadata.Failures = metadataFailures(failures)
	report.Duration = time.Since(start)
	return report, nil
}

// Export renders the request and commits atlas and metadata to disk. Nothing
// is written when the job fails or is cancelled.
func (e *Exporter) Export(ctx context.Context, ch *model.Character, req Request) (*Report, error) {
	start := time.Now()
	format, err := imaging.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	report, err := e.Render(ctx, ch, req)
	if err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	atlasPath := req.Output
	if atlasPath == "" {
		atlasPath = SanitizeName(ch.Name) + format.Ext()
	}
	report.AtlasPath = atlasPath
	report.MetaPath = spritesheet.MetadataPath(atlasPath)
	report.Metadata.Image = filepath.Base(atlasPath)

	if err := spritesheet.Save(atlasPath, report.Sheet, report.Metadata, format); err != nil {
		return report, fmt.Errorf("saving %s: %w", atlasPath, err)
	}
	report.Duration = time.Since(start)

	e.log.Info("spritesheet exported",
		zap.String("character", ch.Name),
		zap.String("atlas", atlasPath),
		zap.Int("frames", report.Placed()),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("took", report.Duration))
	return report, nil
}

// ExportAll writes one atlas per non-empty animation into dir, named
// <character>_<animation> with the format's extension. Template supplies
// layout, format and workers. Jobs that fail are combined into the returned
// error; cancellation stops the remaining jobs.
func (e *Exporter) ExportAll(ctx context.Context, ch *model.Character, dir string, template Request) ([]*Report, error) {
	format, err := imaging.ParseFormat(template.Format)
	if err != nil {
		return nil, err
	}

	var (
		reports []*Report
		errs    error
	)
	for _, anim := range ch.Animations {
		if anim.FrameCount() == 0 {
			e.log.Debug("skipping empty animation", zap.String("animation", anim.Name))
			continue
		}
		if err := ctx.Err(); err != nil {
			return reports, multierr.Append(errs, err)
		}

		req := template
		req.Selections = []Selection{{Animation: anim.Name}}
		req.Output = filepath.Join(dir, SanitizeName(ch.Name)+"_"+SanitizeName(anim.Name)+format.Ext())

		r, err := e.Export(ctx, ch, req)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("animation %q: %w", anim.Name, err))
			continue
		}
		reports = append(reports, r)
	}
	return reports, errs
}
