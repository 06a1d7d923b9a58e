package tui

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/sensorset/internal/logging"
)

// RunBuildTUI builds each label in order while showing progress. Log
// output from build is captured and shown under the progress lines.
func RunBuildTUI(ctx context.Context, labels []string, level logging.Level, build BuildFunc) ([]ClassSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := &noticeWriter{}
	model := NewBuildModel(ctx, cancel, labels, build, logging.New(w, level))

	p := tea.NewProgram(model)
	w.program = p
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := finalModel.(BuildModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", finalModel)
	}
	return m.Summaries(), m.Err()
}

// noticeWriter forwards complete lines to the running program
type noticeWriter struct {
	mu      sync.Mutex
	program *tea.Program
	pending []byte
}

func (w *noticeWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		line := string(w.pending[:i])
		w.pending = w.pending[i+1:]
		if w.program != nil {
			w.program.Send(noticeMsg(line))
		}
	}
	return len(p), nil
}
