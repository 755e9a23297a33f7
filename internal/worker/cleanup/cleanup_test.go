package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockPurger はSessionPurgerのモック実装。
type mockPurger struct {
	mu      sync.Mutex
	calls   int
	lastNow time.Time
	deleted int64
	err     error
}

func (m *mockPurger) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastNow = now
	return m.deleted, m.err
}

func (m *mockPurger) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestNewCleanupJob_ReturnsNonNil(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockPurger{}, newTestLogger(&buf))

	if job == nil {
		t.Fatal("NewCleanupJob は nil を返してはならない")
	}
}

func TestCleanupJob_Run_PassesCurrentTime(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockPurger{deleted: 3}
	job := NewCleanupJob(purger, newTestLogger(&buf))
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !purger.lastNow.Equal(fixed) {
		t.Errorf("DeleteExpired now = %v, want %v", purger.lastNow, fixed)
	}
}

func TestCleanupJob_Run_LogsDeletedCount(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockPurger{deleted: 42}, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("ログのパースに失敗: %v", err)
		}
	}
	if entry["deleted_count"] != float64(42) {
		t.Errorf("deleted_count = %v, want 42", entry["deleted_count"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("duration_ms がログに含まれていない")
	}
}

func TestCleanupJob_Run_ReturnsErrorOnDBFailure(t *testing.T) {
	var buf bytes.Buffer
	cause := errors.New("connection refused")
	job := NewCleanupJob(&mockPurger{err: cause}, newTestLogger(&buf))

	err := job.Run(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Error("失敗時はERRORレベルでログ出力する")
	}
}

func TestCleanupJob_Run_Idempotent_ZeroRows(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockPurger{deleted: 0}, newTestLogger(&buf))

	for i := 0; i < 2; i++ {
		if err := job.Run(context.Background()); err != nil {
			t.Fatalf("Run #%d returned error: %v", i, err)
		}
	}
}

func TestCleanupJob_Start_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockPurger{}
	job := NewCleanupJob(purger, newTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for purger.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start should return after cancel")
	}
	if purger.callCount() < 2 {
		t.Errorf("calls = %d, want >= 2", purger.callCount())
	}
}
