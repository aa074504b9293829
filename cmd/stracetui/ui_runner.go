package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"stracetui/internal/driver"
	"stracetui/internal/model"
	"stracetui/internal/symbolize"
	"stracetui/internal/ui"
)

type pipelineOutcome struct {
	results []driver.FileResult
	err     error
}

// runPipelineWithUI runs the pipeline while a progress model renders on
// stderr, leaving stdout to the export.
func runPipelineWithUI(ctx context.Context, title string, req *driver.Request) ([]driver.FileResult, error) {
	if req == nil {
		return nil, fmt.Errorf("missing pipeline request")
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan pipelineOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, &reqCopy)
		outcomeCh <- pipelineOutcome{results: res, err: err}
		close(events)
	}()

	progress := ui.NewProgressModel(title, req.Paths, events)
	program := tea.NewProgram(progress, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

// runViewer opens the interactive browser. Frames are resolved on demand by
// a worker owned by this call; fromStdin switches keyboard input to the
// controlling terminal because stdin carried the trace.
func runViewer(ctx context.Context, title string, records []model.CallRecord, resolver *symbolize.Resolver, fromStdin bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var worker *symbolize.Worker
	if resolver != nil {
		worker = symbolize.StartWorker(ctx, resolver, 0)
	}

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if fromStdin {
		opts = append(opts, tea.WithInputTTY())
	}
	program := tea.NewProgram(ui.NewViewer(title, records, worker), opts...)
	_, err := program.Run()

	if worker != nil {
		worker.Close()
		cancel()
		<-worker.Done()
	}
	return err
}
