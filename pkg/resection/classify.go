// Package resection decides which implanted electrodes lie inside a
// surgically resected region.
package resection

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ritzau/resection-analyzer/pkg/config"
	"github.com/ritzau/resection-analyzer/pkg/electrodes"
	"github.com/ritzau/resection-analyzer/pkg/logging"
	"github.com/ritzau/resection-analyzer/pkg/volume"
)

// Electrode is one resected electrode as reported: decimal ID and label
type Electrode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Classify reports every electrode whose footprint touches the resection.
//
// The resection volume is thresholded at volume.ResectionThreshold, then
// dilated (dilate > 0) or eroded (dilate < 0) by |dilate| iterations. Each
// electrode is stamped as a cube of electrodes.ElectrodeRadius voxels in
// table order, later rows overwriting earlier ones where cubes overlap.
// Results are sorted by ascending numeric ID.
func Classify(resection *volume.Volume, records []electrodes.Record, dilate int) []Electrode {
	mask := volume.Threshold(resection, volume.ResectionThreshold)
	set := electrodes.NewSet(records)
	stamped := electrodes.Stamp(resection.Shape, records, electrodes.ElectrodeRadius)
	mask = volume.Transform(mask, dilate)

	ids := stamped.Masked(mask)
	out := make([]Electrode, 0, len(ids))
	for _, id := range ids {
		label, ok := set.Label(id)
		if !ok {
			// Stamp and NewSet walk the same records, so this is a bug
			panic(fmt.Sprintf("resection: electrode %d stamped but missing from label set", id))
		}
		out = append(out, Electrode{ID: strconv.Itoa(id), Label: label})
	}
	return out
}

// VolumeLoader reads a resection image
type VolumeLoader func(path string) (*volume.Volume, error)

// TableLoader reads an electrode coordinate table
type TableLoader func(path string) ([]electrodes.Record, error)

// Classifier resolves a patient's inputs through the patient registry and
// classifies them
type Classifier struct {
	Patients   *config.Patients
	LoadVolume VolumeLoader
	LoadTable  TableLoader
}

// NewClassifier returns a classifier reading NIfTI images and CSV tables
func NewClassifier(patients *config.Patients) *Classifier {
	return &Classifier{
		Patients:   patients,
		LoadVolume: volume.Load,
		LoadTable:  electrodes.LoadTable,
	}
}

// ResectedElectrodes classifies one patient's electrodes.
// Missing registry entries fail with *config.ConfigurationError and malformed
// tables with *electrodes.FormatError.
func (c *Classifier) ResectedElectrodes(ctx context.Context, patientID string, dilate int) ([]Electrode, error) {
	imagePath, err := c.Patients.ResectionImage(patientID)
	if err != nil {
		return nil, err
	}
	labelsPath, err := c.Patients.ElectrodeLabels(patientID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resection, err := c.LoadVolume(imagePath)
	if err != nil {
		return nil, fmt.Errorf("patient %s: loading resection image: %w", patientID, err)
	}
	records, err := c.LoadTable(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("patient %s: loading electrode labels: %w", patientID, err)
	}
	logging.DebugContext(ctx, "loaded patient inputs",
		"patient", patientID,
		"shape", resection.Shape.String(),
		"electrodes", len(records),
	)

	resected := Classify(resection, records, dilate)
	logging.InfoContext(ctx, "classified electrodes",
		"patient", patientID,
		"dilate", dilate,
		"resected", len(resected),
		"durationMs", time.Since(start).Milliseconds(),
	)
	return resected, nil
}
