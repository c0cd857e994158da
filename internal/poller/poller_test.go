package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lokerrors "github.com/lokalise-tools/lokalise-sync/errors"
	"github.com/lokalise-tools/lokalise-sync/internal/retry"
	"github.com/lokalise-tools/lokalise-sync/loktypes"
)

func testConfig() Config {
	return Config{
		InitialWait:    time.Second,
		MaximumWait:    2 * time.Minute,
		Concurrency:    4,
		FastFollowWait: 200 * time.Millisecond,
	}
}

func testPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 0, InitialSleep: time.Millisecond}
}

// noSleep records requested delays and advances a fake clock instead of
// sleeping.
type fakeClock struct {
	mu     sync.Mutex
	slept  []time.Duration
	budget time.Duration
}

func (f *fakeClock) sleeper() retry.Sleeper {
	return func(_ context.Context, d time.Duration) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.slept = append(f.slept, d)
		return nil
	}
}

func byStatus(procs []loktypes.Process) map[string]loktypes.ProcessStatus {
	out := make(map[string]loktypes.ProcessStatus, len(procs))
	for _, p := range procs {
		out[p.ID] = p.Status
	}
	return out
}

func TestPollAllFinishedSkipsNetwork(t *testing.T) {
	var fetches atomic.Int64
	p := New(func(context.Context, string) (*loktypes.Process, error) {
		fetches.Add(1)
		return nil, nil
	}, testPolicy(), nil, testConfig())

	got := p.Poll(context.Background(), []loktypes.Process{
		{ID: "a", Status: loktypes.StatusFinished},
		{ID: "b", Status: loktypes.StatusCancelled},
		{ID: "c", Status: loktypes.StatusFailed},
	})

	assert.Equal(t, int64(0), fetches.Load())
	require.Len(t, got, 3)
	statuses := byStatus(got)
	assert.Equal(t, loktypes.StatusFinished, statuses["a"])
	assert.Equal(t, loktypes.StatusCancelled, statuses["b"])
	assert.Equal(t, loktypes.StatusFailed, statuses["c"])
}

func TestPollConvergesBeforeBudget(t *testing.T) {
	// "a" finishes on the second refresh, "b" on the first.
	var rounds atomic.Int64
	fetch := func(_ context.Context, id string) (*loktypes.Process, error) {
		switch id {
		case "a":
			n := rounds.Add(1)
			if n >= 2 {
				return &loktypes.Process{ID: "a", Status: loktypes.StatusFinished}, nil
			}
			return &loktypes.Process{ID: "a", Status: loktypes.StatusRunning}, nil
		default:
			return &loktypes.Process{ID: "b", Status: loktypes.StatusFinished}, nil
		}
	}

	clock := &fakeClock{}
	p := New(fetch, testPolicy(), nil, testConfig()).WithSleeper(clock.sleeper())

	got := p.Poll(context.Background(), []loktypes.Process{
		{ID: "a", Status: loktypes.StatusQueued},
		{ID: "b", Status: loktypes.StatusRunning},
	})

	statuses := byStatus(got)
	assert.Equal(t, loktypes.StatusFinished, statuses["a"])
	assert.Equal(t, loktypes.StatusFinished, statuses["b"])
}

func TestPollTimeoutKeepsLastObservedStatus(t *testing.T) {
	var fetches atomic.Int64
	fetch := func(_ context.Context, id string) (*loktypes.Process, error) {
		fetches.Add(1)
		return &loktypes.Process{ID: id, Status: loktypes.StatusRunning}, nil
	}

	cfg := testConfig()
	cfg.MaximumWait = 0 // budget already spent: no rounds, final refresh only
	p := New(fetch, testPolicy(), nil, cfg).WithSleeper((&fakeClock{}).sleeper())

	got := p.Poll(context.Background(), []loktypes.Process{
		{ID: "stuck", Status: loktypes.StatusQueued},
	})

	// Exactly the one unconditional final refresh ran.
	assert.Equal(t, int64(1), fetches.Load())
	require.Len(t, got, 1)
	assert.Equal(t, loktypes.StatusRunning, got[0].Status)
}

func TestPollFetchFailureLeavesProcessPending(t *testing.T) {
	// "flaky" errors on the first round and succeeds afterwards; "ok"
	// finishes immediately. The flaky failure must not evict either entry.
	var calls atomic.Int64
	fetch := func(_ context.Context, id string) (*loktypes.Process, error) {
		if id == "flaky" {
			if calls.Add(1) == 1 {
				return nil, lokerrors.NewLokaliseError("Internal error", 500)
			}
			return &loktypes.Process{ID: "flaky", Status: loktypes.StatusFinished}, nil
		}
		return &loktypes.Process{ID: "ok", Status: loktypes.StatusFinished}, nil
	}

	p := New(fetch, testPolicy(), nil, testConfig()).WithSleeper((&fakeClock{}).sleeper())

	got := p.Poll(context.Background(), []loktypes.Process{
		{ID: "flaky", Status: loktypes.StatusQueued},
		{ID: "ok", Status: loktypes.StatusQueued},
	})

	statuses := byStatus(got)
	assert.Equal(t, loktypes.StatusFinished, statuses["flaky"])
	assert.Equal(t, loktypes.StatusFinished, statuses["ok"])
}

func TestPollMissingStatusTriggersFastFollow(t *testing.T) {
	fetch := func(_ context.Context, id string) (*loktypes.Process, error) {
		return &loktypes.Process{ID: id, Status: loktypes.StatusFinished}, nil
	}

	clock := &fakeClock{}
	p := New(fetch, testPolicy(), nil, testConfig()).WithSleeper(clock.sleeper())

	p.Poll(context.Background(), []loktypes.Process{{ID: "fresh"}})

	require.NotEmpty(t, clock.slept)
	assert.Equal(t, 200*time.Millisecond, clock.slept[0])
}

func TestPollKnownStatusSkipsFastFollow(t *testing.T) {
	fetch := func(_ context.Context, id string) (*loktypes.Process, error) {
		return &loktypes.Process{ID: id, Status: loktypes.StatusFinished}, nil
	}

	clock := &fakeClock{}
	p := New(fetch, testPolicy(), nil, testConfig()).WithSleeper(clock.sleeper())

	p.Poll(context.Background(), []loktypes.Process{{ID: "q", Status: loktypes.StatusQueued}})

	// Finished on the first round: no sleeps at all.
	assert.Empty(t, clock.slept)
}

func TestPollWaitDoublingIsCappedByBudget(t *testing.T) {
	var rounds atomic.Int64
	fetch := func(_ context.Context, id string) (*loktypes.Process, error) {
		if rounds.Add(1) >= 4 {
			return &loktypes.Process{ID: id, Status: loktypes.StatusFinished}, nil
		}
		return &loktypes.Process{ID: id, Status: loktypes.StatusRunning}, nil
	}

	cfg := testConfig()
	cfg.InitialWait = 10 * time.Millisecond
	cfg.MaximumWait = 10 * time.Second
	clock := &fakeClock{}
	p := New(fetch, testPolicy(), nil, cfg).WithSleeper(clock.sleeper())

	p.Poll(context.Background(), []loktypes.Process{{ID: "x", Status: loktypes.StatusQueued}})

	// Successive waits double: 10ms, 20ms, 40ms.
	require.GreaterOrEqual(t, len(clock.slept), 3)
	assert.Equal(t, 10*time.Millisecond, clock.slept[0])
	assert.Equal(t, 20*time.Millisecond, clock.slept[1])
	assert.Equal(t, 40*time.Millisecond, clock.slept[2])
}

func TestPollEmptyBatch(t *testing.T) {
	p := New(func(context.Context, string) (*loktypes.Process, error) {
		t.Fatal("fetch must not run for empty batch")
		return nil, nil
	}, testPolicy(), nil, testConfig())

	assert.Empty(t, p.Poll(context.Background(), nil))
}
