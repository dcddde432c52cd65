package report

import (
	"bytes"
	"encoding/json"

	"promolift/domain/stats"
	"promolift/internal/errors"

	"gopkg.in/yaml.v3"
)

// YAML renders the report with the same field names and order as its JSON form
func YAML(r *stats.Report) ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode report")
	}

	// JSON is valid YAML; decoding into a node keeps key order
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode report")
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to encode report as YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode report as YAML")
	}
	return buf.Bytes(), nil
}

// blockStyle clears the flow and quoting styles the JSON source carried.
// The encoder still quotes strings that would otherwise read as another type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
