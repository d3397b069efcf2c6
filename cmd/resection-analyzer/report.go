package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ritzau/resection-analyzer/pkg/analysis"
	"github.com/ritzau/resection-analyzer/pkg/config"
	"github.com/ritzau/resection-analyzer/pkg/resection"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write resected-electrode CSV reports",
	Long: `Writes <COMP_DIR>/<patient>/aim1/<patient>_resected_electrodes_<suffix>.csv
for each patient and radius, where suffix is dilate_N, erode_N or 0.
Reports that already exist are left untouched unless --force is given.`,
	Example: `  resection-analyzer report --patient HUP064 --radii 0,1,2
  resection-analyzer report --all --force`,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringSlice("patient", nil, "patient IDs (repeatable)")
	f.Bool("all", false, "every patient in the data file")
	f.IntSlice("radii", []int{0}, "dilation/erosion radii")
	f.Bool("force", false, "recompute existing reports")
	f.Int("workers", 4, "reports computed concurrently")
}

func runReport(cmd *cobra.Command, args []string) error {
	patients, err := loadPatients()
	if err != nil {
		return err
	}
	ids, err := selectPatients(cmd, patients)
	if err != nil {
		return err
	}
	radii, _ := cmd.Flags().GetIntSlice("radii")
	force, _ := cmd.Flags().GetBool("force")

	runner, err := newRunner(patients)
	if err != nil {
		return err
	}
	results, err := runner.Run(cmd.Context(), analysis.Options{
		Patients: ids,
		Dilates:  radii,
		Force:    force,
		Reason:   "report command",
	})
	if err != nil {
		return err
	}

	return printResults(results)
}

func newRunner(patients *config.Patients) (*analysis.Runner, error) {
	compDir, err := patients.CompDir()
	if err != nil {
		return nil, err
	}
	return analysis.NewRunner(resection.NewClassifier(patients), &resection.ReportWriter{Dir: compDir}, cfg.Workers), nil
}

func selectPatients(cmd *cobra.Command, patients *config.Patients) ([]string, error) {
	all, _ := cmd.Flags().GetBool("all")
	if all {
		return patients.IDs(), nil
	}
	ids, _ := cmd.Flags().GetStringSlice("patient")
	if len(ids) == 0 {
		return nil, fmt.Errorf("no patients selected: use --patient or --all")
	}
	return ids, nil
}

func printResults(results []analysis.Result) error {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	failed := 0
	for _, res := range results {
		label := fmt.Sprintf("%s %-10s", res.Patient, resection.Suffix(res.Dilate))
		switch {
		case res.Err != nil:
			failed++
			red.Printf("  FAIL  %s %v\n", label, res.Err)
		case res.Outcome == resection.Skipped:
			yellow.Printf("  SKIP  %s %s\n", label, res.Path)
		default:
			green.Printf("  OK    %s %s\n", label, res.Path)
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d reports failed\n", failed, len(results))
		return fmt.Errorf("%d report(s) failed", failed)
	}
	return nil
}
