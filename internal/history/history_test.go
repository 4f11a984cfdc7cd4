package history

import (
	"context"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Store_AppendAndRecent(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	for i := range 5 {
		run := &Run{
			PromoID:  "id-" + string(rune('a'+i)),
			Headline: "Promo " + string(rune('A'+i)),
			Outcome:  OutcomeSuccess,
			Duration: time.Duration(i) * time.Second,
		}
		if err := s.Append(ctx, run); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	runs, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].PromoID != "id-e" || runs[2].PromoID != "id-c" {
		t.Errorf("ordering wrong: %+v", runs)
	}
	if runs[0].Outcome != OutcomeSuccess {
		t.Errorf("outcome: got %q", runs[0].Outcome)
	}
}

func Test_Store_FailureRun(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	run := &Run{
		Outcome:  OutcomeFailure,
		Detail:   "pipeline stage extract: model unavailable",
		Duration: 1200 * time.Millisecond,
	}
	if err := s.Append(ctx, run); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Outcome != OutcomeFailure || got.Detail == "" || got.PromoID != "" {
		t.Errorf("failure run stored wrong: %+v", got)
	}
	if got.Duration != 1200*time.Millisecond {
		t.Errorf("duration: got %v", got.Duration)
	}
}

func Test_Store_RecentEmpty(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	runs, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
