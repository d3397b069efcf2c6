package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ritzau/resection-analyzer/pkg/resection"
)

// PrintResectedElectrodes prints the classification of one patient
func PrintResectedElectrodes(w io.Writer, patientID string, dilate, total int, resected []resection.Electrode) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Fprintln(w, "Resected Electrodes")
	bold.Fprintln(w, "===================")
	fmt.Fprintf(w, "Patient: %s\n", patientID)
	fmt.Fprintf(w, "Mask transform: %s\n", resection.Suffix(dilate))
	if total > 0 {
		fmt.Fprintf(w, "Electrodes: %d\n", total)
	}
	fmt.Fprintln(w)

	if len(resected) == 0 {
		yellow.Fprintln(w, "No electrodes inside the resection")
		return
	}

	for _, e := range resected {
		cyan.Fprintf(w, "  %4s", e.ID)
		fmt.Fprintf(w, "  %s\n", e.Label)
	}
	fmt.Fprintln(w)
	green.Fprintf(w, "%d electrode(s) resected\n", len(resected))
}

// PrintRegionControl prints the control centrality of a lesioned node set
func PrintRegionControl(w io.Writer, nodes []int, control float64) {
	bold := color.New(color.Bold)

	bold.Fprintln(w, "Control Centrality")
	bold.Fprintln(w, "==================")
	fmt.Fprintf(w, "Lesioned nodes: %v\n", nodes)
	signed(control).Fprintf(w, "Delta synchronizability: %+.6f\n", control)
}

// PrintNodeControl prints the per-node control centrality vector
func PrintNodeControl(w io.Writer, labels []string, control []float64) {
	bold := color.New(color.Bold)

	bold.Fprintln(w, "Per-node Control Centrality")
	bold.Fprintln(w, "===========================")
	for i, c := range control {
		name := fmt.Sprintf("%d", i)
		if i < len(labels) {
			name = labels[i]
		}
		fmt.Fprintf(w, "  %-8s ", name)
		signed(c).Fprintf(w, "%+.6f\n", c)
	}
}

// signed colours increases in synchronizability red and decreases green
func signed(v float64) *color.Color {
	switch {
	case v > 0:
		return color.New(color.FgRed)
	case v < 0:
		return color.New(color.FgGreen)
	default:
		return color.New(color.Reset)
	}
}
