package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Keys of the patient data file
const (
	FieldCompDir         = "COMP_DIR"
	FieldPatients        = "PATIENTS"
	FieldResectionImage  = "RESECTION_IMAGE"
	FieldElectrodeLabels = "ELECTRODE_LABELS"
)

// ConfigurationError reports a patient or path missing from the data file
type ConfigurationError struct {
	PatientID string
	Field     string
}

func (e *ConfigurationError) Error() string {
	if e.PatientID == "" {
		return fmt.Sprintf("data config has no %s entry", e.Field)
	}
	return fmt.Sprintf("patient %q has no %s entry in the data config; use a patient ID that is included in the study",
		e.PatientID, e.Field)
}

// Patients is the per-patient path registry, loaded once at startup and
// handed to the components that need it.
//
// Expected JSON layout:
//
//	{
//	  "COMP_DIR": "~/analysis",
//	  "PATIENTS": {
//	    "HUP064": {"RESECTION_IMAGE": "...nii.gz", "ELECTRODE_LABELS": "...csv"}
//	  }
//	}
type Patients struct {
	k *koanf.Koanf
}

// LoadPatients reads the patient data file at path. The file is JSON unless
// its extension is .yaml or .yml.
func LoadPatients(path string) (*Patients, error) {
	var parser koanf.Parser = json.Parser()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(ExpandHome(path)), parser); err != nil {
		return nil, fmt.Errorf("loading patient data %s: %w", path, err)
	}
	return &Patients{k: k}, nil
}

// NewPatients builds a registry from an in-memory map with the same layout
// as the data file.
func NewPatients(data map[string]interface{}) (*Patients, error) {
	k := koanf.New(".")
	if err := k.Load(makeMapProvider(data), nil); err != nil {
		return nil, fmt.Errorf("loading patient data: %w", err)
	}
	return &Patients{k: k}, nil
}

// IDs lists the configured patients in sorted order
func (p *Patients) IDs() []string {
	ids := p.k.MapKeys(FieldPatients)
	sort.Strings(ids)
	return ids
}

// ResectionImage returns the resection volume path for a patient
func (p *Patients) ResectionImage(patientID string) (string, error) {
	return p.patientPath(patientID, FieldResectionImage)
}

// ElectrodeLabels returns the electrode coordinate table path for a patient
func (p *Patients) ElectrodeLabels(patientID string) (string, error) {
	return p.patientPath(patientID, FieldElectrodeLabels)
}

// CompDir returns the root directory for computed reports
func (p *Patients) CompDir() (string, error) {
	dir := p.k.String(FieldCompDir)
	if dir == "" {
		return "", &ConfigurationError{Field: FieldCompDir}
	}
	return ExpandHome(dir), nil
}

func (p *Patients) patientPath(patientID, field string) (string, error) {
	// Dots would be read as key separators
	if patientID == "" || strings.Contains(patientID, ".") {
		return "", &ConfigurationError{PatientID: patientID, Field: field}
	}
	path := p.k.String(FieldPatients + "." + patientID + "." + field)
	if path == "" {
		return "", &ConfigurationError{PatientID: patientID, Field: field}
	}
	return ExpandHome(path), nil
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
