// Package simulation hammers one board with a fleet of random players, the
// way the server would be exercised by many concurrent web clients. It is
// both a demo mode (-simulate) and a stress harness for the engine's
// blocking and wakeup paths.
package simulation

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/inercaso/memory-scramble/board"
	"github.com/inercaso/memory-scramble/boarderrors"
	"github.com/inercaso/memory-scramble/config"
)

// Stats counts what the simulated players did. All fields are totals across
// the whole run.
type Stats struct {
	Flips      atomic.Int64 // successful flip calls
	NoCard     atomic.Int64 // flips rejected with ErrNoCard
	Controlled atomic.Int64 // flips rejected with ErrControlled
	Changes    atomic.Int64 // change frames seen by the watchers
}

// Run launches cfg.Players random players and cfg.Watchers watchers against
// b and lets them play until ctx ends or cfg.Seconds elapse. Players flip
// random in-range positions and shrug off NoCard/Controlled rejections;
// blocked flips resolve whenever the controlling player moves on.
func Run(ctx context.Context, cfg config.SimulationConfig, b *board.Board) (*Stats, error) {
	if cfg.Seconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Seconds)*time.Second)
		defer cancel()
	}

	stats := &Stats{}
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < cfg.Players; i++ {
		id := "player" + strconv.Itoa(i)
		g.Go(func() error {
			return playLoop(ctx, cfg, b, id, stats)
		})
	}
	for i := 0; i < cfg.Watchers; i++ {
		id := "watcher" + strconv.Itoa(i)
		g.Go(func() error {
			return watchLoop(ctx, b, id, stats)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return stats, err
	}
	slog.Info("simulation finished", "tag", "sim",
		"flips", stats.Flips.Load(),
		"no_card", stats.NoCard.Load(),
		"controlled", stats.Controlled.Load(),
		"changes", stats.Changes.Load())
	return stats, nil
}

// playLoop is one simulated player: think, flip a random cell, repeat.
func playLoop(ctx context.Context, cfg config.SimulationConfig, b *board.Board, id string, stats *Stats) error {
	rng := rand.New(rand.NewSource(int64(len(id)) + time.Now().UnixNano()))
	rows, cols := b.Size()
	for {
		if err := think(ctx, cfg, rng); err != nil {
			return err
		}
		row, col := rng.Intn(rows), rng.Intn(cols)
		_, err := b.Flip(ctx, id, row, col)
		switch {
		case err == nil:
			stats.Flips.Add(1)
		case errors.Is(err, boarderrors.ErrNoCard):
			stats.NoCard.Add(1)
		case errors.Is(err, boarderrors.ErrControlled):
			stats.Controlled.Add(1)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return ctx.Err()
		default:
			slog.Warn("unexpected flip failure", "tag", "sim", "player", id, "err", err)
			return err
		}
	}
}

// watchLoop counts change frames until the run ends.
func watchLoop(ctx context.Context, b *board.Board, id string, stats *Stats) error {
	for {
		if _, err := b.Watch(ctx, id); err != nil {
			return ctx.Err()
		}
		stats.Changes.Add(1)
	}
}

// think sleeps a jittered delay between ThinkMinMS and ThinkMaxMS.
func think(ctx context.Context, cfg config.SimulationConfig, rng *rand.Rand) error {
	delay := cfg.ThinkMinMS
	if cfg.ThinkMaxMS > cfg.ThinkMinMS {
		delay += rng.Intn(cfg.ThinkMaxMS - cfg.ThinkMinMS)
	}
	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(time.Duration(delay) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
