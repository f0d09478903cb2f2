package storage

import (
	"encoding/json"
	"io"
	"os"
)

// ExportData is the flat JSON form of a stored run.
type ExportData struct {
	RunMetadata
	Times     []float64 `json:"times"`
	Positions []float64 `json:"positions"`
	Outputs   []float64 `json:"outputs"`
	Left      []int     `json:"left"`
	Right     []int     `json:"right"`
}

// ExportJSON writes a stored run, metadata plus trace, to w.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       trace.Times,
		Positions:   trace.Positions,
		Outputs:     trace.Outputs,
		Left:        trace.Left,
		Right:       trace.Right,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportJSONFile writes a stored run to a file.
func (s *Store) ExportJSONFile(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.ExportJSON(runID, file)
}
