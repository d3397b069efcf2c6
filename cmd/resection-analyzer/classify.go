package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/resection-analyzer/pkg/config"
	"github.com/ritzau/resection-analyzer/pkg/electrodes"
	"github.com/ritzau/resection-analyzer/pkg/output"
	"github.com/ritzau/resection-analyzer/pkg/resection"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "List the electrodes inside a patient's resection",
	Long: `Thresholds the patient's resection image at 0.8, optionally dilates
(--dilate > 0) or erodes (--dilate < 0) it, and lists every electrode whose
footprint overlaps the result, ordered by electrode ID.`,
	Example: `  resection-analyzer classify --patient HUP064
  resection-analyzer classify --patient HUP064 --dilate -1 --json`,
	RunE: runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.String("patient", "", "patient ID")
	f.Int("dilate", 0, "dilation (+) or erosion (-) radius in voxels")
	f.Bool("json", false, "print JSON instead of a table")
	_ = classifyCmd.MarkFlagRequired("patient")
}

func runClassify(cmd *cobra.Command, args []string) error {
	patientID, _ := cmd.Flags().GetString("patient")
	asJSON, _ := cmd.Flags().GetBool("json")

	patients, err := loadPatients()
	if err != nil {
		return err
	}

	classifier := resection.NewClassifier(patients)
	resected, err := classifier.ResectedElectrodes(cmd.Context(), patientID, cfg.Dilate)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resected)
	}

	output.PrintResectedElectrodes(os.Stdout, patientID, cfg.Dilate, electrodeCount(patients, patientID), resected)
	return nil
}

// electrodeCount is informational only; failures report 0
func electrodeCount(patients *config.Patients, patientID string) int {
	path, err := patients.ElectrodeLabels(patientID)
	if err != nil {
		return 0
	}
	records, err := electrodes.LoadTable(path)
	if err != nil {
		return 0
	}
	return electrodes.NewSet(records).Len()
}
