package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"
)

type ExportData struct {
	Run    *RunMetadata `json:"run"`
	Times  []float64    `json:"times"`
	States [][]*float64 `json:"states"`
}

// ExportJSON writes a saved run as one JSON document. Missing values
// (objects not yet spawned) become null since JSON has no NaN.
func ExportJSON(w io.Writer, meta *RunMetadata, states [][]float64, times []float64) error {
	data := ExportData{
		Run:    meta,
		Times:  times,
		States: make([][]*float64, len(states)),
	}
	for i, row := range states {
		out := make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				out[j] = &row[j]
			}
		}
		data.States[i] = out
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, meta *RunMetadata, states [][]float64, times []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, states, times)
}
