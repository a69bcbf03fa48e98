package behavior

import (
	"context"
	"errors"
	"log/slog"
	"time"

	bt "github.com/joeycumines/go-behaviortree"
)

// RunOptions bound a run.
type RunOptions struct {
	// MaxTicks stops the run after this many ticks. Zero means no limit.
	MaxTicks int
	// Interval is the delay between ticks. Zero ticks back to back.
	Interval time.Duration
}

// Result is the outcome of a run.
type Result struct {
	Status bt.Status
	Ticks  int
}

// errFinished stops the ticker once the root leaves Running or the tick
// budget is spent.
var errFinished = errors.New("run finished")

// Run ticks root until it returns a status other than Running, the tick
// budget is exhausted, or ctx is done. A tick error ends the run and is
// returned.
func Run(ctx context.Context, root bt.Node, opts RunOptions) (Result, error) {
	var res Result
	res.Status = bt.Running
	tick := func() error {
		st, err := root.Tick()
		res.Ticks++
		res.Status = st
		if err != nil {
			return err
		}
		if st != bt.Running || (opts.MaxTicks > 0 && res.Ticks >= opts.MaxTicks) {
			return errFinished
		}
		return nil
	}

	if opts.Interval <= 0 {
		for {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if err := tick(); err != nil {
				return finish(res, err)
			}
		}
	}

	var tickErr error
	ticker := bt.NewTicker(ctx, opts.Interval, bt.New(func([]bt.Node) (bt.Status, error) {
		if err := tick(); err != nil {
			tickErr = err
			return bt.Failure, err
		}
		return bt.Running, nil
	}))
	<-ticker.Done()
	if tickErr != nil {
		return finish(res, tickErr)
	}
	if err := ticker.Err(); err != nil {
		return res, err
	}
	return res, ctx.Err()
}

func finish(res Result, err error) (Result, error) {
	if errors.Is(err, errFinished) {
		slog.Debug("[Behavior] run finished", "status", res.Status.String(), "ticks", res.Ticks)
		return res, nil
	}
	return res, err
}
