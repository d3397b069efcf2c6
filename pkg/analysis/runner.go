// Package analysis runs resection reports over many patients and radii.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ritzau/resection-analyzer/pkg/logging"
	"github.com/ritzau/resection-analyzer/pkg/pubsub"
	"github.com/ritzau/resection-analyzer/pkg/resection"
)

// Result records the outcome of one (patient, radius) report
type Result struct {
	Patient string
	Dilate  int
	Path    string
	Outcome resection.Outcome
	Err     error
}

// Options selects the reports a run produces
type Options struct {
	Patients []string
	Dilates  []int
	Force    bool   // Recompute reports that already exist
	Reason   string // e.g. "initial run", "inputs changed"
}

// Runner computes reports for many patients concurrently. Patients are
// independent, so a failure for one does not stop the others.
type Runner struct {
	classifier *resection.Classifier
	writer     *resection.ReportWriter
	workers    int
	events     pubsub.Publisher // Optional progress stream
	mu         sync.Mutex       // Serializes runs so watch cycles never overlap
}

// NewRunner creates a runner limited to workers concurrent reports
func NewRunner(classifier *resection.Classifier, writer *resection.ReportWriter, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{classifier: classifier, writer: writer, workers: workers}
}

// PublishTo streams run progress to p on pubsub.TopicReports
func (r *Runner) PublishTo(p pubsub.Publisher) {
	r.events = p
}

// Run produces every requested report and returns the results sorted by
// patient then radius. The returned error is non-nil only when ctx ends.
func (r *Runner) Run(ctx context.Context, opts Options) ([]Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, runID := logging.NewRun(ctx)
	logging.InfoContext(ctx, "starting report run",
		"reason", opts.Reason,
		"patients", len(opts.Patients),
		"radii", len(opts.Dilates),
	)
	r.publish(pubsub.EventRunStarted, pubsub.RunStatus{
		RunID:   runID,
		Reason:  opts.Reason,
		Reports: len(opts.Patients) * len(opts.Dilates),
	})

	var (
		mu      sync.Mutex
		results []Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, patientID := range opts.Patients {
		for _, dilate := range opts.Dilates {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res := r.one(gctx, patientID, dilate, opts.Force)
				r.publish(pubsub.EventReport, reportStatus(runID, res))
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("report run %s interrupted: %w", runID, err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Patient != results[j].Patient {
			return results[i].Patient < results[j].Patient
		}
		return results[i].Dilate < results[j].Dilate
	})

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	logging.InfoContext(ctx, "report run complete", "reports", len(results), "failed", failed)
	r.publish(pubsub.EventRunComplete, pubsub.RunStatus{
		RunID:   runID,
		Reason:  opts.Reason,
		Reports: len(results),
		Failed:  failed,
	})
	return results, nil
}

func (r *Runner) publish(eventType string, data interface{}) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(pubsub.TopicReports, eventType, data); err != nil {
		logging.Warn("failed to publish progress", "type", eventType, "error", err)
	}
}

func reportStatus(runID string, res Result) pubsub.ReportStatus {
	st := pubsub.ReportStatus{
		RunID:   runID,
		Patient: res.Patient,
		Dilate:  res.Dilate,
		Path:    res.Path,
	}
	if res.Err != nil {
		st.Error = res.Err.Error()
	} else {
		st.Outcome = res.Outcome.String()
	}
	return st
}

func (r *Runner) one(ctx context.Context, patientID string, dilate int, force bool) Result {
	res := Result{Patient: patientID, Dilate: dilate}

	if force {
		if err := r.writer.Invalidate(patientID, dilate); err != nil {
			res.Err = err
			return res
		}
	}

	res.Path, res.Outcome, res.Err = r.writer.Write(ctx, patientID, dilate, func(ctx context.Context) ([]resection.Electrode, error) {
		return r.classifier.ResectedElectrodes(ctx, patientID, dilate)
	})
	if res.Err != nil {
		logging.ErrorContext(ctx, "report failed", "patient", patientID, "dilate", dilate, "error", res.Err)
	}
	return res
}
