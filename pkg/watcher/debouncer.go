package watcher

import (
	"context"
	"sort"
	"time"

	"github.com/ritzau/resection-analyzer/pkg/logging"
)

// Debouncer merges bursts of change events so each patient is recomputed
// once per burst
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. A merged event is emitted once
// no input has arrived for quietPeriod, or maxWait after the first input of
// a burst, whichever comes first.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	var (
		quiet    <-chan time.Time
		deadline <-chan time.Time
		patients = make(map[string]bool)
		paths    []string
	)

	flush := func() {
		quiet, deadline = nil, nil
		if len(patients) == 0 {
			return
		}
		ids := make([]string, 0, len(patients))
		for id := range patients {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		logging.Debug("flushing accumulated changes", "patients", len(ids), "files", len(paths))
		d.output <- ChangeEvent{Patients: ids, Paths: paths, Timestamp: time.Now()}
		patients = make(map[string]bool)
		paths = nil
	}

	defer close(d.output)
	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			for _, id := range event.Patients {
				patients[id] = true
			}
			paths = append(paths, event.Paths...)

			quiet = time.After(d.quietPeriod)
			if deadline == nil {
				deadline = time.After(d.maxWait)
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
