package resection

import (
	"os"
	"strings"
)

// NodeList maps resected electrodes onto adjacency matrix rows. nodeLabels[i]
// is the electrode label of row i; resected electrodes with no matching row
// are returned in missing. Indices come back in row order.
func NodeList(nodeLabels []string, resected []Electrode) (nodes []int, missing []string) {
	want := make(map[string]bool, len(resected))
	for _, e := range resected {
		want[e.Label] = true
	}

	found := make(map[string]bool, len(resected))
	for i, label := range nodeLabels {
		if want[label] {
			nodes = append(nodes, i)
			found[label] = true
		}
	}

	for _, e := range resected {
		if !found[e.Label] {
			missing = append(missing, e.Label)
		}
	}
	return nodes, missing
}

// LoadNodeLabels reads one adjacency row label per line, skipping blanks
func LoadNodeLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var labels []string
	for _, line := range strings.Split(string(data), "\n") {
		if label := strings.TrimSpace(line); label != "" {
			labels = append(labels, label)
		}
	}
	return labels, nil
}
