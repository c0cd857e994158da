// Package poller tracks queued remote processes until every one of them
// reaches a terminal status or a wall-clock budget runs out. It never fails
// on a timeout: callers get the freshest snapshot and decide for themselves
// what a still-pending process means.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/lokalise-tools/lokalise-sync/internal/fanout"
	"github.com/lokalise-tools/lokalise-sync/internal/retry"
	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

// Fetcher re-fetches the current state of one process by id.
type Fetcher func(ctx context.Context, id string) (*loktypes.Process, error)

// Config holds the timing and concurrency knobs for one Poller.
type Config struct {
	// InitialWait is the first delay between refresh rounds; it doubles
	// after every round
	InitialWait time.Duration

	// MaximumWait is the wall-clock budget for the whole poll call
	MaximumWait time.Duration

	// Concurrency caps in-flight status fetches per round
	Concurrency int

	// FastFollowWait is the one-time delay before the first round when a
	// just-created process has no status yet; 0 disables it
	FastFollowWait time.Duration
}

// Poller drives refresh rounds over a batch of processes.
type Poller struct {
	fetch  Fetcher
	policy retry.Policy
	sleep  retry.Sleeper
	logger *slog.Logger
	cfg    Config
}

// New creates a Poller. A nil logger selects slog.Default().
func New(fetch Fetcher, policy retry.Policy, logger *slog.Logger, cfg Config) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetch:  fetch,
		policy: policy,
		sleep:  retry.Sleep,
		logger: logger,
		cfg:    cfg,
	}
}

// WithSleeper overrides the sleeper used between rounds. Tests use this to
// run poll loops without real delays.
func (p *Poller) WithSleeper(sleep retry.Sleeper) *Poller {
	p.sleep = sleep
	return p
}

// Poll refreshes the given processes until all are terminal or the budget is
// spent, then returns the full snapshot. The returned slice carries one entry
// per distinct input id in unspecified order; callers look processes up by id.
//
// A batch with no pending entries returns immediately without any network
// access. Per-id fetch failures during a round are logged and retried on the
// next round; they never abort tracking of co-pending processes.
func (p *Poller) Poll(ctx context.Context, processes []loktypes.Process) []loktypes.Process {
	byID := make(map[string]loktypes.Process, len(processes))
	pending := make(map[string]struct{})
	fastFollow := false
	for _, proc := range processes {
		byID[proc.ID] = proc
		if !proc.Status.Finished() {
			pending[proc.ID] = struct{}{}
			if proc.Status == "" {
				fastFollow = true
			}
		}
	}
	if len(pending) == 0 {
		return collect(byID)
	}

	start := time.Now()

	// Servers occasionally return a just-created process before its status
	// is populated; give them one short head start before hammering.
	if fastFollow && p.cfg.FastFollowWait > 0 {
		if err := p.sleep(ctx, p.cfg.FastFollowWait); err != nil {
			return collect(byID)
		}
	}

	wait := p.cfg.InitialWait
	for len(pending) > 0 {
		if time.Since(start) >= p.cfg.MaximumWait {
			break
		}

		p.refresh(ctx, byID, pending)
		if len(pending) == 0 {
			break
		}

		remaining := p.cfg.MaximumWait - time.Since(start)
		if remaining <= 0 {
			break
		}
		d := wait
		if d > remaining {
			d = remaining
		}
		if err := p.sleep(ctx, d); err != nil {
			break
		}
		wait *= 2
	}

	// One unconditional final refresh keeps the returned snapshot as fresh
	// as possible even when the budget ran out mid-round.
	p.refresh(ctx, byID, pending)

	return collect(byID)
}

// refresh re-fetches every pending id with bounded concurrency, then merges
// the results single-threaded. Workers only ever write into their own result
// slot, so the shared maps need no locking.
func (p *Poller) refresh(ctx context.Context, byID map[string]loktypes.Process, pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}

	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}

	results := fanout.RunBounded(ctx, ids, p.cfg.Concurrency,
		func(ctx context.Context, id string, _ int) (*loktypes.Process, error) {
			return retry.Do(ctx, p.policy, p.sleep, func(ctx context.Context) (*loktypes.Process, error) {
				return p.fetch(ctx, id)
			})
		})

	for i, res := range results {
		if res.Err != nil {
			// Left pending: a transient fetch failure must not end
			// tracking of this or any co-pending process.
			p.logger.Warn("process refresh failed",
				"process_id", ids[i],
				"error", res.Err)
			continue
		}
		proc := *res.Value
		if proc.Status == "" {
			if prev, ok := byID[proc.ID]; ok {
				proc.Status = prev.Status
			}
		}
		byID[proc.ID] = proc
		if proc.Status.Finished() {
			delete(pending, proc.ID)
		}
	}
}

func collect(byID map[string]loktypes.Process) []loktypes.Process {
	out := make([]loktypes.Process, 0, len(byID))
	for _, proc := range byID {
		out = append(out, proc)
	}
	return out
}
