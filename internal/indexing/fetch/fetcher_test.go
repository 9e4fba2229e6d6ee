package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/infra/rpc"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ==================== Fakes ====================

// fakeSource replays canned responses per chunk and records the ranges it
// was asked for.
type fakeSource struct {
	calls []rpc.Filter
	// failures maps a chunk start block to how many times the call should
	// fail before succeeding. -1 means fail forever.
	failures map[uint64]int
	logsFor  map[uint64][]domain.RawLog
}

func (f *fakeSource) GetLogs(ctx context.Context, filter rpc.Filter) ([]domain.RawLog, error) {
	f.calls = append(f.calls, filter)

	if left, ok := f.failures[filter.FromBlock]; ok {
		if left == -1 {
			return nil, errors.New("provider overloaded")
		}
		if left > 0 {
			f.failures[filter.FromBlock] = left - 1
			return nil, errors.New("provider overloaded")
		}
	}
	return f.logsFor[filter.FromBlock], nil
}

func fastConfig() Config {
	return Config{ChunkSize: 10, MaxAttempts: 3, InitialDelay: time.Millisecond}
}

// ==================== Partition ====================

func TestPartition(t *testing.T) {
	tests := []struct {
		name string
		from uint64
		to   uint64
		size uint64
		want []Range
	}{
		{
			name: "single partial chunk",
			from: 5, to: 8, size: 10,
			want: []Range{{From: 5, To: 8}},
		},
		{
			name: "exact multiple",
			from: 1, to: 20, size: 10,
			want: []Range{{From: 1, To: 10}, {From: 11, To: 20}},
		},
		{
			name: "trailing remainder",
			from: 1, to: 25, size: 10,
			want: []Range{{From: 1, To: 10}, {From: 11, To: 20}, {From: 21, To: 25}},
		},
		{
			name: "single block",
			from: 7, to: 7, size: 10,
			want: []Range{{From: 7, To: 7}},
		},
		{
			name: "inverted range",
			from: 10, to: 5, size: 10,
			want: nil,
		},
		{
			name: "zero size",
			from: 1, to: 5, size: 0,
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Partition(tc.from, tc.to, tc.size)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Partition(%d, %d, %d) = %v, want %v", tc.from, tc.to, tc.size, got, tc.want)
			}
		})
	}
}

// ==================== Fetch ====================

func TestFetchConcatenatesChunks(t *testing.T) {
	source := &fakeSource{
		logsFor: map[uint64][]domain.RawLog{
			1:  {{TxHash: "0xaaa", BlockNumber: 3}},
			11: {{TxHash: "0xbbb", BlockNumber: 12}, {TxHash: "0xccc", BlockNumber: 15}},
			21: {{TxHash: "0xddd", BlockNumber: 23}},
		},
	}
	f := New(source, fastConfig(), testLogger())

	logs, skipped, err := f.Fetch(context.Background(), 1, 25, FilterSpec{Address: "0xcontract"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("expected no skipped ranges, got %v", skipped)
	}

	wantOrder := []string{"0xaaa", "0xbbb", "0xccc", "0xddd"}
	if len(logs) != len(wantOrder) {
		t.Fatalf("expected %d logs, got %d", len(wantOrder), len(logs))
	}
	for i, want := range wantOrder {
		if logs[i].TxHash != want {
			t.Errorf("log %d: expected %s, got %s", i, want, logs[i].TxHash)
		}
	}

	if len(source.calls) != 3 {
		t.Fatalf("expected 3 chunk calls, got %d", len(source.calls))
	}
	for i, want := range []Range{{1, 10}, {11, 20}, {21, 25}} {
		call := source.calls[i]
		if call.FromBlock != want.From || call.ToBlock != want.To {
			t.Errorf("call %d: expected [%d, %d], got [%d, %d]",
				i, want.From, want.To, call.FromBlock, call.ToBlock)
		}
		if call.Address != "0xcontract" {
			t.Errorf("call %d: expected filter address to propagate, got %q", i, call.Address)
		}
	}
}

func TestFetchRetriesTransientFailure(t *testing.T) {
	source := &fakeSource{
		failures: map[uint64]int{1: 2},
		logsFor:  map[uint64][]domain.RawLog{1: {{TxHash: "0xaaa"}}},
	}
	f := New(source, fastConfig(), testLogger())

	logs, skipped, err := f.Fetch(context.Background(), 1, 10, FilterSpec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("expected no skipped ranges, got %v", skipped)
	}
	if len(logs) != 1 || logs[0].TxHash != "0xaaa" {
		t.Errorf("expected recovered logs, got %v", logs)
	}
	if len(source.calls) != 3 {
		t.Errorf("expected 3 attempts (2 failures + success), got %d", len(source.calls))
	}
}

func TestFetchSkipsExhaustedChunk(t *testing.T) {
	source := &fakeSource{
		failures: map[uint64]int{11: -1},
		logsFor: map[uint64][]domain.RawLog{
			1:  {{TxHash: "0xaaa"}},
			21: {{TxHash: "0xbbb"}},
		},
	}
	f := New(source, fastConfig(), testLogger())

	logs, skipped, err := f.Fetch(context.Background(), 1, 25, FilterSpec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(skipped) != 1 || skipped[0].From != 11 || skipped[0].To != 20 {
		t.Fatalf("expected skipped range [11, 20], got %v", skipped)
	}
	if len(logs) != 2 || logs[0].TxHash != "0xaaa" || logs[1].TxHash != "0xbbb" {
		t.Errorf("expected surrounding chunks to survive, got %v", logs)
	}

	attempts := 0
	for _, call := range source.calls {
		if call.FromBlock == 11 {
			attempts++
		}
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts on failing chunk, got %d", attempts)
	}
}

func TestFetchContextCancellation(t *testing.T) {
	source := &fakeSource{failures: map[uint64]int{1: -1}}
	f := New(source, fastConfig(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := f.Fetch(ctx, 1, 10, FilterSpec{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	f := New(&fakeSource{}, Config{}, testLogger())
	if f.cfg != DefaultConfig {
		t.Errorf("expected zero config to fall back to defaults, got %+v", f.cfg)
	}
}
