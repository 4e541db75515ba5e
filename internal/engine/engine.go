package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/sockpair/internal/analyzer"
	"github.com/ivlev/sockpair/internal/config"
	"github.com/ivlev/sockpair/internal/report"
	"github.com/ivlev/sockpair/internal/source"
	"github.com/ivlev/sockpair/internal/system"
)

// ErrFrameTimeout marks a frame whose analysis outlived Config.FrameTimeout
var ErrFrameTimeout = errors.New("frame analysis timed out")

// Batch runs detection and pairing over every frame of a source
type Batch struct {
	Config *config.Config
	Source source.Source
	Log    zerolog.Logger

	// analyze is swapped out in tests
	analyze func(f *analyzer.Frame, scale float64) (*analysis, error)
}

type analysis struct {
	regions []*analyzer.Region
	matches []analyzer.Match
}

func NewBatch(cfg *config.Config, src source.Source, log zerolog.Logger) *Batch {
	b := &Batch{
		Config: cfg,
		Source: src,
		Log:    log,
	}
	b.analyze = b.analyzeFrame
	return b
}

// Run processes all frames concurrently and returns the report in frame
// order. Failures of single frames are recorded in the report; only
// cancellation of ctx aborts the run.
func (b *Batch) Run(ctx context.Context) (*report.Report, error) {
	startTime := time.Now()

	pageCount := b.Source.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("источник не содержит страниц/кадров")
	}

	workers := min(b.workerCount(), pageCount)
	b.Log.Info().
		Str("input", b.Config.InputPath).
		Int("frames", pageCount).
		Int("workers", workers).
		Str("detector", b.Config.Detector).
		Msg("batch started")

	frames := make([]report.Frame, pageCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < pageCount; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			frames[i] = b.processFrame(gctx, i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := report.New(b.Config.InputPath, b.Config.Settings)
	rep.Frames = frames

	_, regions, pairs := rep.Totals()
	totalTime := time.Since(startTime)
	b.Log.Info().
		Int("frames", pageCount).
		Int("regions", regions).
		Int("pairs", pairs).
		Dur("elapsed", totalTime).
		Msg("batch finished")

	if b.Config.ShowStats {
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Build: %s\n"+
				"Frames: %d | Workers: %d\n"+
				"Total Time: %.2fs\n"+
				"Effective FPS: %.2f\n"+
				"----------------------------\n",
			b.Config.BuildVersion, pageCount, workers, totalTime.Seconds(),
			float64(pageCount)/totalTime.Seconds(),
		)
	}

	return rep, nil
}

// workerCount sizes the pool from the first frame's prepared dimensions
func (b *Batch) workerCount() int {
	var frameBytes uint64
	if w, h, err := b.Source.GetPageDimensions(0); err == nil {
		pw, ph := system.FrameSize(int(w), int(h), b.Config.MaxDimension)
		frameBytes = uint64(pw) * uint64(ph) * 4
	}
	return system.WorkerLimit(b.Config.Workers, frameBytes)
}

func (b *Batch) processFrame(ctx context.Context, index int) report.Frame {
	name := b.Source.PageName(index)

	img, err := b.Source.RenderPage(index, b.Config.DPI)
	if err != nil {
		b.Log.Warn().Err(err).Int("frame", index).Msg("render failed")
		return report.Frame{Index: index, Source: name, Error: err.Error()}
	}

	fr := b.AnalyzeImage(ctx, index, name, img)
	b.Log.Debug().
		Int("frame", index).
		Int("regions", len(fr.Regions)).
		Int("pairs", len(fr.Pairs)).
		Msg("frame ready")
	return fr
}

// AnalyzeImage prepares img and runs detection and pairing on it under the
// configured per-frame timeout. A timed-out analysis is abandoned: its
// result is discarded when it eventually finishes.
func (b *Batch) AnalyzeImage(ctx context.Context, index int, name string, img image.Image) report.Frame {
	fr := report.Frame{Index: index, Source: name}

	if b.Config.FrameTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Config.FrameTimeout)
		defer cancel()
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		fr.Error = analyzer.ErrEmptyFrame.Error()
		return fr
	}

	rgba := system.PrepareFrame(img, b.Config.MaxDimension)
	fr.Width, fr.Height = rgba.Rect.Dx(), rgba.Rect.Dy()
	scale := float64(fr.Width) / float64(bounds.Dx())

	type outcome struct {
		res *analysis
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		// the buffer goes back to the pool only when nothing reads it anymore
		defer system.PutImage(rgba)

		f, err := analyzer.NewFrame(rgba)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		res, err := b.analyze(f, scale)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			b.Log.Warn().Err(out.err).Int("frame", index).Msg("analysis failed")
			fr.Error = out.err.Error()
			return fr
		}
		return report.FromAnalysis(index, name, fr.Width, fr.Height, out.res.regions, out.res.matches)
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrFrameTimeout, b.Config.FrameTimeout)
		}
		b.Log.Warn().Err(err).Int("frame", index).Msg("analysis abandoned")
		fr.Error = err.Error()
		return fr
	}
}

// analyzeFrame is one independent core invocation: fresh detector, fresh
// visited grid, fresh matcher.
func (b *Batch) analyzeFrame(f *analyzer.Frame, scale float64) (*analysis, error) {
	var surface []analyzer.Color
	if sp := b.Config.Surface; sp != nil {
		x := int(float64(sp.X) * scale)
		y := int(float64(sp.Y) * scale)
		size := max(1, int(float64(sp.Size)*scale))
		surface = analyzer.SampleSurface(f, x, y, size)
	}

	det, err := analyzer.NewDetector(b.Config.Detector, b.Config.Settings, surface)
	if err != nil {
		return nil, err
	}
	if sc, ok := det.(*analyzer.Scanner); ok {
		sc.Shape = b.Config.Shape
		sc.Log = b.Log
	}

	regions, err := det.Detect(f)
	if err != nil {
		return nil, err
	}

	m := analyzer.NewMatcher(b.Config.Settings)
	m.Log = b.Log
	matches, err := m.Match(regions, f)
	if err != nil {
		return nil, err
	}

	return &analysis{regions: regions, matches: matches}, nil
}
