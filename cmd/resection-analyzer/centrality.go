package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/resection-analyzer/pkg/logging"
	"github.com/ritzau/resection-analyzer/pkg/network"
	"github.com/ritzau/resection-analyzer/pkg/output"
	"github.com/ritzau/resection-analyzer/pkg/resection"
)

var centralityCmd = &cobra.Command{
	Use:   "centrality",
	Short: "Control centrality of a node set in a functional network",
	Long: `Reads a symmetric adjacency matrix (CSV, one row per line) and reports
the fractional change in synchronizability when the selected nodes are
lesioned. Nodes are given by index with --nodes, or derived from the
resected electrodes of --patient by matching --node-labels (one channel label
per adjacency row).`,
	Example: `  resection-analyzer centrality --adjacency adj.csv --nodes 3,4,7
  resection-analyzer centrality --adjacency adj.csv --patient HUP064 --node-labels channels.txt --dilate 1
  resection-analyzer centrality --adjacency adj.csv --per-node --node-labels channels.txt`,
	RunE: runCentrality,
}

func init() {
	f := centralityCmd.Flags()
	f.String("adjacency", "", "adjacency matrix CSV file")
	f.IntSlice("nodes", nil, "node indices to lesion")
	f.String("patient", "", "lesion this patient's resected electrodes")
	f.String("node-labels", "", "file with one channel label per adjacency row")
	f.Int("dilate", 0, "dilation (+) or erosion (-) radius used with --patient")
	f.Bool("per-node", false, "report the control of every single node")
	f.String("lesion", "remove", "lesion operator: remove or zero")
	_ = centralityCmd.MarkFlagRequired("adjacency")
}

func runCentrality(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	adjPath, _ := flags.GetString("adjacency")
	nodes, _ := flags.GetIntSlice("nodes")
	patientID, _ := flags.GetString("patient")
	labelsPath, _ := flags.GetString("node-labels")
	perNode, _ := flags.GetBool("per-node")
	lesion, _ := flags.GetString("lesion")

	engine := network.NewEngine()
	switch lesion {
	case "remove":
	case "zero":
		engine.Lesion = network.LesionZero
	default:
		return fmt.Errorf("unknown lesion operator %q (want remove or zero)", lesion)
	}

	adj, err := network.LoadAdjacency(adjPath)
	if err != nil {
		return err
	}
	logging.Debug("loaded adjacency", "path", adjPath, "nodes", adj.Len(), "components", adj.Components())

	var labels []string
	if labelsPath != "" {
		if labels, err = resection.LoadNodeLabels(labelsPath); err != nil {
			return err
		}
		if len(labels) != adj.Len() {
			return fmt.Errorf("%s has %d labels but the adjacency matrix has %d rows", labelsPath, len(labels), adj.Len())
		}
	}

	if perNode {
		vec, err := engine.NodeControl(adj)
		if err != nil {
			return err
		}
		output.PrintNodeControl(os.Stdout, labels, vec)
		return nil
	}

	if patientID != "" {
		if labels == nil {
			return fmt.Errorf("--patient requires --node-labels")
		}
		if nodes, err = resectedNodes(cmd, patientID, labels); err != nil {
			return err
		}
	}

	control, err := engine.RegionControl(adj, nodes)
	if err != nil {
		return err
	}
	output.PrintRegionControl(os.Stdout, nodes, control)
	return nil
}

func resectedNodes(cmd *cobra.Command, patientID string, labels []string) ([]int, error) {
	patients, err := loadPatients()
	if err != nil {
		return nil, err
	}
	resected, err := resection.NewClassifier(patients).ResectedElectrodes(cmd.Context(), patientID, cfg.Dilate)
	if err != nil {
		return nil, err
	}
	nodes, missing := resection.NodeList(labels, resected)
	if len(missing) > 0 {
		logging.Warn("resected electrodes missing from the network", "patient", patientID, "labels", missing)
	}
	return nodes, nil
}
