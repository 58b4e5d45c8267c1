package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jordan9001/ctypes-export/internal/export"
	"github.com/jordan9001/ctypes-export/internal/typedb"
	"github.com/jordan9001/ctypes-export/internal/ui"
)

type exportOutcome struct {
	result *export.Result
	err    error
}

func runExportWithUI(ctx context.Context, src *typedb.Source, names []string, req *export.Request) (*export.Result, error) {
	if req == nil {
		return nil, fmt.Errorf("missing export request")
	}
	events := make(chan export.Event, 256)
	outcomeCh := make(chan exportOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = export.ChannelSink{Ch: events}
		res, err := export.Run(ctx, src, &reqCopy)
		outcomeCh <- exportOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("ctypes-export", names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
