package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritzau/resection-analyzer/pkg/analysis"
	"github.com/ritzau/resection-analyzer/pkg/config"
	"github.com/ritzau/resection-analyzer/pkg/logging"
	"github.com/ritzau/resection-analyzer/pkg/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rewrite reports when a patient's inputs change",
	Long: `Writes any missing reports, then watches every patient's resection image
and electrode table and recomputes that patient's reports whenever one of
them changes.`,
	Example: `  resection-analyzer watch --radii 0,1,2`,
	RunE:    runWatch,
}

func init() {
	addWatchFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	patients, err := loadPatients()
	if err != nil {
		return err
	}
	runner, err := newRunner(patients)
	if err != nil {
		return err
	}
	return watchLoop(cmd.Context(), cmd, patients, runner)
}

// watchLoop writes missing reports, then recomputes a patient's reports each
// time its inputs change, until the command context ends
func watchLoop(ctx context.Context, cmd *cobra.Command, patients *config.Patients, runner *analysis.Runner) error {
	radii, _ := cmd.Flags().GetIntSlice("radii")
	quiet, _ := cmd.Flags().GetDuration("quiet")
	maxWait, _ := cmd.Flags().GetDuration("max-wait")

	ids := patients.IDs()
	results, err := runner.Run(ctx, analysis.Options{Patients: ids, Dilates: radii, Reason: "initial"})
	if err != nil {
		return err
	}
	_ = printResults(results)

	inputs, err := watchedInputs(patients, ids)
	if err != nil {
		return err
	}
	fw, err := watcher.NewFileWatcher(inputs)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	defer fw.Stop()

	debouncer := watcher.NewDebouncer(fw.Events(), quiet, maxWait)
	debouncer.Start(ctx)

	for event := range debouncer.Output() {
		if ctx.Err() != nil {
			break
		}
		logging.Info("inputs changed", "patients", event.Patients, "files", len(event.Paths))
		results, err := runner.Run(ctx, analysis.Options{
			Patients: event.Patients,
			Dilates:  radii,
			Force:    true,
			Reason:   "file change",
		})
		if err != nil {
			break
		}
		_ = printResults(results)
	}

	logging.Info("watch stopped")
	return nil
}

func addWatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntSlice("radii", []int{0}, "dilation/erosion radii")
	f.Int("workers", 4, "reports computed concurrently")
	f.Duration("quiet", 1500*time.Millisecond, "quiet period before recomputing")
	f.Duration("max-wait", 10*time.Second, "longest a change waits while edits continue")
}

// watchedInputs maps each patient to its resection image and electrode table.
// Patients with incomplete configuration are skipped with a warning.
func watchedInputs(patients *config.Patients, ids []string) (map[string][]string, error) {
	inputs := make(map[string][]string, len(ids))
	for _, id := range ids {
		image, err := patients.ResectionImage(id)
		if err != nil {
			logging.Warn("not watching patient", "patient", id, "error", err)
			continue
		}
		labels, err := patients.ElectrodeLabels(id)
		if err != nil {
			logging.Warn("not watching patient", "patient", id, "error", err)
			continue
		}
		inputs[id] = []string{image, labels}
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no patient has both a resection image and an electrode table")
	}
	return inputs, nil
}
