package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/raster"
)

func TestSchedulerFillsEverySlot(t *testing.T) {
	rec := newFakeRecognizer(map[string]int{"a.pdf#2": 2, "a.pdf#5": alwaysFail})
	rec.jitter = time.Millisecond
	var mu sync.Mutex
	var pageTicks []int
	s := &Scheduler{
		Executor: &Executor{Rasterizer: fakeRasterizer{}, Recognizer: rec, MaxAttempts: 3},
		Workers:  2,
		OnPage: func(_ string, done, total int) {
			mu.Lock()
			defer mu.Unlock()
			if total != 6 {
				t.Errorf("total = %d, want 6", total)
			}
			pageTicks = append(pageTicks, done)
		},
	}

	results := s.Run(context.Background(), Document{Source: "/in/a.pdf", PageCount: 6})
	if len(results) != 6 {
		t.Fatalf("results = %d, want 6", len(results))
	}
	for i, r := range results {
		if r.Index != i || !r.State.Terminal() {
			t.Errorf("slot %d = %+v", i, r)
		}
	}
	if results[1].State != Succeeded || results[1].Attempts != 3 {
		t.Errorf("page 2 = %+v, want succeeded on attempt 3", results[1])
	}
	if string(results[1].PDF) != "[p2@3]" {
		t.Errorf("page 2 bytes = %q, want attempt 3's", results[1].PDF)
	}
	if results[4].State != Failed || results[4].Attempts != 3 || !errors.Is(results[4].Err, ocr.ErrRecognition) {
		t.Errorf("page 5 = %+v, want failed after 3 attempts", results[4])
	}
	if len(pageTicks) != 6 {
		t.Errorf("page ticks = %v", pageTicks)
	}
}

func TestSchedulerCancelledBeforeStart(t *testing.T) {
	rec := newFakeRecognizer(nil)
	s := &Scheduler{Executor: &Executor{Rasterizer: fakeRasterizer{}, Recognizer: rec}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := s.Run(ctx, Document{Source: "c.pdf", PageCount: 3})
	for _, r := range results {
		if r.State != Failed || !errors.Is(r.Err, context.Canceled) || r.Attempts != 0 {
			t.Errorf("slot %d = %+v, want failed with context.Canceled", r.Index, r)
		}
	}
	if rec.calls() != 0 {
		t.Errorf("recognizer called %d times after cancellation", rec.calls())
	}
}

func TestSchedulerNoPages(t *testing.T) {
	s := &Scheduler{Executor: &Executor{}}
	if got := s.Run(context.Background(), Document{}); len(got) != 0 {
		t.Errorf("results = %v, want none", got)
	}
}

func TestExecutorAttemptCap(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		budget      int
		wantState   TaskState
		wantTries   int
	}{
		{"first try", 3, 0, Succeeded, 1},
		{"third try", 3, 2, Succeeded, 3},
		{"exhausted", 3, alwaysFail, Failed, 3},
		{"default cap", 0, alwaysFail, Failed, 3},
		{"single attempt", 1, 1, Failed, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newFakeRecognizer(map[string]int{"x.pdf#1": tt.budget})
			logger, logs := testLogger()
			e := &Executor{Rasterizer: fakeRasterizer{}, Recognizer: rec, MaxAttempts: tt.maxAttempts, Logger: logger}
			task := &PageTask{Index: 0}

			res := e.Execute(context.Background(), Document{Source: "x.pdf", PageCount: 1}, task)
			if res.State != tt.wantState || res.Attempts != tt.wantTries {
				t.Errorf("result = %v after %d attempts, want %v after %d", res.State, res.Attempts, tt.wantState, tt.wantTries)
			}
			if task.State != tt.wantState || task.Attempts != tt.wantTries {
				t.Errorf("task = %+v", task)
			}
			failures := tt.wantTries - 1
			if tt.wantState == Failed {
				failures = tt.wantTries
			}
			if n := strings.Count(logs.String(), "page attempt failed"); n != failures {
				t.Errorf("retry log lines = %d, want %d", n, failures)
			}
		})
	}
}

// panickingRecognizer panics on the first n calls, then delegates.
type panickingRecognizer struct {
	mu    sync.Mutex
	n     int
	calls int
	next  Recognizer
}

func (p *panickingRecognizer) Recognize(ctx context.Context, img raster.Image, lang ocr.Language) (ocr.Recognized, error) {
	p.mu.Lock()
	p.calls++
	panics := p.calls <= p.n
	p.mu.Unlock()
	if panics {
		panic("tesseract: null pointer")
	}
	return p.next.Recognize(ctx, img, lang)
}

func TestExecutorRecoversEnginePanic(t *testing.T) {
	tests := []struct {
		name      string
		panics    int
		wantState TaskState
		wantTries int
	}{
		{"recovered on retry", 1, Succeeded, 2},
		{"every attempt", 3, Failed, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &panickingRecognizer{n: tt.panics, next: newFakeRecognizer(nil)}
			e := &Executor{Rasterizer: fakeRasterizer{}, Recognizer: rec, MaxAttempts: 3}

			res := e.Execute(context.Background(), Document{Source: "x.pdf", PageCount: 1}, &PageTask{})
			if res.State != tt.wantState || res.Attempts != tt.wantTries {
				t.Fatalf("result = %v after %d attempts, want %v after %d", res.State, res.Attempts, tt.wantState, tt.wantTries)
			}
			if tt.wantState == Failed && !errors.Is(res.Err, ocr.ErrRecognition) {
				t.Errorf("Err = %v, want ErrRecognition", res.Err)
			}
		})
	}
}

func TestExecutorLogsEveryAttempt(t *testing.T) {
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := newFakeRecognizer(map[string]int{"x.pdf#2": 1})
	e := &Executor{Rasterizer: fakeRasterizer{}, Recognizer: rec, Logger: logger}

	e.Execute(context.Background(), Document{Source: "x.pdf", PageCount: 2}, &PageTask{Index: 1})

	var attempts []string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, `msg="page attempt"`) {
			attempts = append(attempts, line)
		}
	}
	if len(attempts) != 2 {
		t.Fatalf("attempt log lines = %d, want 2:\n%s", len(attempts), logs)
	}
	for i, line := range attempts {
		want := fmt.Sprintf("page=2 total_pages=2 attempt=%d", i+1)
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestTaskStateString(t *testing.T) {
	for state, want := range map[TaskState]string{
		Pending: "pending", Running: "running", Retrying: "retrying",
		Succeeded: "succeeded", Failed: "failed", TaskState(42): "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
