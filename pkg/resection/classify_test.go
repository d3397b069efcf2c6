package resection

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ritzau/resection-analyzer/pkg/config"
	"github.com/ritzau/resection-analyzer/pkg/electrodes"
	"github.com/ritzau/resection-analyzer/pkg/volume"
)

var cube10 = volume.Shape{10, 10, 10}

func TestClassifyFullMask(t *testing.T) {
	got := Classify(volume.Filled(cube10, 1.0), []electrodes.Record{
		{ID: 1, X: 5, Y: 5, Z: 5, Label: "LA1"},
	}, 0)

	want := []Electrode{{ID: "1", Label: "LA1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyEmptyMask(t *testing.T) {
	records := []electrodes.Record{
		{ID: 1, X: 5, Y: 5, Z: 5, Label: "LA1"},
		{ID: 2, X: 0, Y: 0, Z: 0, Label: "LA2"},
	}
	for _, dilate := range []int{0, 1, 3, -2} {
		if got := Classify(volume.New(cube10), records, dilate); len(got) != 0 {
			t.Errorf("dilate=%d: got %v, want none", dilate, got)
		}
	}
}

func TestClassifyThreshold(t *testing.T) {
	img := volume.New(cube10)
	img.Set(1, 1, 1, 0.79)
	img.Set(8, 8, 8, 0.8)

	got := Classify(img, []electrodes.Record{
		{ID: 3, X: 1, Y: 1, Z: 1, Label: "below"},
		{ID: 4, X: 8, Y: 8, Z: 8, Label: "at"},
	}, 0)

	want := []Electrode{{ID: "4", Label: "at"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyDilateAndErode(t *testing.T) {
	// Resected voxel at x=5; electrode 1 covers x in [6,10), electrode 2 x in [0,4)
	img := volume.New(cube10)
	img.Set(5, 5, 5, 1)
	records := []electrodes.Record{
		{ID: 1, X: 8, Y: 5, Z: 5, Label: "near"},
		{ID: 2, X: 2, Y: 5, Z: 5, Label: "far"},
	}

	if got := Classify(img, records, 0); len(got) != 0 {
		t.Errorf("dilate=0: got %v, want none", got)
	}

	want := []Electrode{{ID: "1", Label: "near"}}
	if diff := cmp.Diff(want, Classify(img, records, 1)); diff != "" {
		t.Errorf("dilate=1 mismatch (-want +got):\n%s", diff)
	}

	want = []Electrode{{ID: "1", Label: "near"}, {ID: "2", Label: "far"}}
	if diff := cmp.Diff(want, Classify(img, records, 2)); diff != "" {
		t.Errorf("dilate=2 mismatch (-want +got):\n%s", diff)
	}

	// Eroding a single voxel leaves nothing
	full := volume.New(cube10)
	full.Set(8, 5, 5, 1)
	if got := Classify(full, records, -1); len(got) != 0 {
		t.Errorf("erode=1: got %v, want none", got)
	}
}

func TestClassifyOrderAndOverwrite(t *testing.T) {
	img := volume.New(cube10)
	img.Set(4, 4, 4, 1)
	img.Set(8, 8, 8, 1)

	// Electrode 7 is stamped first and fully covered by electrode 3
	got := Classify(img, []electrodes.Record{
		{ID: 9, X: 8, Y: 8, Z: 8, Label: "RH9"},
		{ID: 7, X: 4, Y: 4, Z: 4, Label: "hidden"},
		{ID: 3, X: 4, Y: 4, Z: 4, Label: "LA3"},
	}, 0)

	want := []Electrode{{ID: "3", Label: "LA3"}, {ID: "9", Label: "RH9"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
	}
}

func writePatient(t *testing.T, img *volume.Volume, table string) *config.Patients {
	t.Helper()
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "resection.nii")
	tablePath := filepath.Join(dir, "electrodes.csv")
	if err := volume.Save(imgPath, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tablePath, []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := config.NewPatients(map[string]interface{}{
		"COMP_DIR": filepath.Join(dir, "comp"),
		"PATIENTS": map[string]interface{}{
			"HUP064": map[string]interface{}{
				"RESECTION_IMAGE":  imgPath,
				"ELECTRODE_LABELS": tablePath,
			},
			"HUP070": map[string]interface{}{
				"RESECTION_IMAGE": imgPath,
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestClassifierEndToEnd(t *testing.T) {
	p := writePatient(t, volume.Filled(cube10, 1.0), "1,5.0,5.0,5.0,LA1\n")
	c := NewClassifier(p)

	got, err := c.ResectedElectrodes(context.Background(), "HUP064", 0)
	if err != nil {
		t.Fatalf("ResectedElectrodes() error = %v", err)
	}
	want := []Electrode{{ID: "1", Label: "LA1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifierErrors(t *testing.T) {
	p := writePatient(t, volume.Filled(cube10, 1.0), "1,5.0,five,5.0,LA1\n")
	c := NewClassifier(p)
	ctx := context.Background()

	var ce *config.ConfigurationError
	if _, err := c.ResectedElectrodes(ctx, "HUP999", 0); !errors.As(err, &ce) || ce.PatientID != "HUP999" {
		t.Errorf("unknown patient: got %v", err)
	}
	if _, err := c.ResectedElectrodes(ctx, "HUP070", 0); !errors.As(err, &ce) || ce.Field != config.FieldElectrodeLabels {
		t.Errorf("missing labels: got %v", err)
	}

	var fe *electrodes.FormatError
	if _, err := c.ResectedElectrodes(ctx, "HUP064", 0); !errors.As(err, &fe) {
		t.Errorf("malformed table: got %v", err)
	}
}

func TestClassifierInjectedLoaders(t *testing.T) {
	p := writePatient(t, volume.New(volume.Shape{1, 1, 1}), "")
	c := &Classifier{
		Patients:   p,
		LoadVolume: func(string) (*volume.Volume, error) { return volume.Filled(cube10, 0.9), nil },
		LoadTable: func(string) ([]electrodes.Record, error) {
			return []electrodes.Record{{ID: 12, X: 9, Y: 9, Z: 9, Label: "RF12"}}, nil
		},
	}

	got, err := c.ResectedElectrodes(context.Background(), "HUP064", 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Electrode{{ID: "12", Label: "RF12"}}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
