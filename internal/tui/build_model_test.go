package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/sensorset/internal/logging"
)

func stubBuild(summaries map[string]ClassSummary, failOn string) BuildFunc {
	return func(ctx context.Context, label string, log *logging.Logger) (ClassSummary, error) {
		if label == failOn {
			return ClassSummary{}, errors.New("broken session")
		}
		return summaries[label], nil
	}
}

// step runs the pending class command and feeds its result back into the model
func step(t *testing.T, m BuildModel, cmd tea.Cmd) (BuildModel, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, nextCmd := m.Update(cmd())
	bm, ok := next.(BuildModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return bm, nextCmd
}

func TestBuildModelRunsClassesInOrder(t *testing.T) {
	summaries := map[string]ClassSummary{
		"walk": {Label: "walk", Sessions: 2, Rows: 12345, OutputPath: "data/walk.csv"},
		"car":  {Label: "car", Skipped: true},
	}
	m := NewBuildModel(context.Background(), nil, []string{"walk", "car"}, stubBuild(summaries, ""), nil)

	if m.Init() == nil {
		t.Fatal("expected Init to start work")
	}
	if view := m.View(); !strings.Contains(view, "aggregating walk") {
		t.Fatalf("expected walk in progress, got:\n%s", view)
	}

	m, cmd := step(t, m, m.runClass(0))
	if m.finished {
		t.Fatal("model finished after the first class")
	}
	if view := m.View(); !strings.Contains(view, "12,345 rows") || !strings.Contains(view, "aggregating car") {
		t.Fatalf("unexpected view after first class:\n%s", view)
	}

	m, _ = step(t, m, cmd)
	if !m.finished || m.Err() != nil {
		t.Fatalf("expected clean finish, err=%v", m.Err())
	}
	got := m.Summaries()
	if len(got) != 2 || got[0].Label != "walk" || !got[1].Skipped {
		t.Fatalf("unexpected summaries %+v", got)
	}
	if view := m.View(); !strings.Contains(view, "no sessions") {
		t.Fatalf("expected skipped class in view:\n%s", view)
	}
}

func TestBuildModelStopsOnError(t *testing.T) {
	m := NewBuildModel(context.Background(), nil, []string{"walk", "car"}, stubBuild(nil, "walk"), nil)

	m, _ = step(t, m, m.runClass(0))
	if !m.finished {
		t.Fatal("expected model to finish on error")
	}
	if m.Err() == nil || !strings.Contains(m.Err().Error(), "broken session") {
		t.Fatalf("unexpected error %v", m.Err())
	}
	if len(m.Summaries()) != 0 {
		t.Fatalf("expected no summaries, got %+v", m.Summaries())
	}
}

func TestBuildModelWaitsForRunningClassOnQuit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	build := func(ctx context.Context, label string, log *logging.Logger) (ClassSummary, error) {
		<-ctx.Done()
		return ClassSummary{}, ctx.Err()
	}
	m := NewBuildModel(ctx, cancel, []string{"walk", "car"}, build, nil)
	pending := m.runClass(0)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	bm := next.(BuildModel)
	if ctx.Err() == nil {
		t.Fatal("expected context to be cancelled")
	}
	if bm.finished || cmd != nil {
		t.Fatal("expected the model to keep running until the class returns")
	}
	if view := bm.View(); !strings.Contains(view, "cancelling walk") {
		t.Fatalf("expected cancelling line, got:\n%s", view)
	}

	bm, _ = step(t, bm, pending)
	if !bm.finished {
		t.Fatal("expected model to finish once the class returned")
	}
	if !errors.Is(bm.Err(), context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", bm.Err())
	}
}

func TestBuildModelStopsAfterClassFinishingDuringCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	summaries := map[string]ClassSummary{"walk": {Label: "walk", Sessions: 1, Rows: 3}}
	m := NewBuildModel(ctx, cancel, []string{"walk", "car"}, stubBuild(summaries, ""), nil)
	pending := m.runClass(0)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	bm, cmd := step(t, next.(BuildModel), pending)
	if !bm.finished || !errors.Is(bm.Err(), context.Canceled) {
		t.Fatalf("expected cancelled finish, finished=%v err=%v", bm.finished, bm.Err())
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if len(bm.Summaries()) != 1 {
		t.Fatalf("expected the finished class to be kept, got %+v", bm.Summaries())
	}
}

func TestBuildModelQuitWhenIdle(t *testing.T) {
	m := NewBuildModel(context.Background(), nil, nil, stubBuild(nil, ""), nil)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if bm := next.(BuildModel); !bm.finished || !errors.Is(bm.Err(), context.Canceled) {
		t.Fatalf("expected immediate quit, finished=%v err=%v", bm.finished, bm.Err())
	}
}

func TestBuildModelShowsNotices(t *testing.T) {
	m := NewBuildModel(context.Background(), nil, []string{"walk"}, stubBuild(nil, ""), nil)
	next, _ := m.Update(noticeMsg("[WARN] file Light.csv not found in s1, skipping"))
	if view := next.(BuildModel).View(); !strings.Contains(view, "Light.csv not found") {
		t.Fatalf("expected notice in view, got:\n%s", view)
	}
}

func TestBuildModelKeepsRecentNotices(t *testing.T) {
	m := NewBuildModel(context.Background(), nil, []string{"walk"}, stubBuild(nil, ""), nil)

	for i := 0; i < maxNotices+3; i++ {
		next, _ := m.Update(noticeMsg("notice " + string(rune('a'+i))))
		m = next.(BuildModel)
	}
	if len(m.notices) != maxNotices {
		t.Fatalf("expected %d notices, got %d", maxNotices, len(m.notices))
	}
	if m.notices[0] != "notice d" {
		t.Fatalf("expected oldest notices dropped, first is %q", m.notices[0])
	}
}

func TestBuildModelNoLabelsQuits(t *testing.T) {
	m := NewBuildModel(context.Background(), nil, nil, stubBuild(nil, ""), nil)
	if m.Init() == nil {
		t.Fatal("expected quit command")
	}
}

func TestNoticeWriterSplitsLines(t *testing.T) {
	w := &noticeWriter{}
	if _, err := w.Write([]byte("[WARN] partial")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if _, err := w.Write([]byte(" line\n[INFO] next")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if string(w.pending) != "[INFO] next" {
		t.Fatalf("expected trailing fragment to be buffered, got %q", w.pending)
	}
}
