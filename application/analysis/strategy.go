package analysis

import (
	"context"

	"clipscan/domain/frame"

	"golang.org/x/sync/errgroup"
)

// FrameFunc is called once per sampled frame
type FrameFunc func(ctx context.Context, f frame.Frame) error

// Strategy decides how sampled frames are driven through a FrameFunc
type Strategy interface {
	Each(ctx context.Context, sampler frame.Sampler, videoPath string, rate float64, fn FrameFunc) error
}

// Sequential seeks, grabs and scores one frame at a time, in schedule order
type Sequential struct{}

// Each implements Strategy
func (Sequential) Each(ctx context.Context, sampler frame.Sampler, videoPath string, rate float64, fn FrameFunc) error {
	for f, err := range frame.Frames(ctx, sampler, videoPath, rate) {
		if err != nil {
			return err
		}
		if err := fn(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// Parallel grabs and scores up to Workers frames at once. Frames may finish
// out of order; the first error cancels the remaining work.
type Parallel struct {
	Workers int
}

// Each implements Strategy
func (p Parallel) Each(ctx context.Context, sampler frame.Sampler, videoPath string, rate float64, fn FrameFunc) error {
	duration, err := probe(ctx, sampler, videoPath)
	if err != nil {
		return err
	}

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, at := range frame.Schedule(duration, rate) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			f, err := frame.GrabAt(gctx, sampler, videoPath, i, at)
			if err != nil {
				return err
			}
			return fn(gctx, f)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// StrategyFor returns Sequential for one worker and Parallel otherwise
func StrategyFor(workers int) Strategy {
	if workers <= 1 {
		return Sequential{}
	}
	return Parallel{Workers: workers}
}
