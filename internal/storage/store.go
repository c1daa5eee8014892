package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Preset        string             `json:"preset"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	FixedTimestep float64            `json:"fixed_timestep"`
	Duration      float64            `json:"duration"`
	Frames        int                `json:"frames"`
	Objects       []ObjectInfo       `json:"objects"`
	Metrics       map[string]float64 `json:"metrics"`
}

// RunInfo carries the run settings saved next to a recording.
type RunInfo struct {
	Preset        string
	Seed          int64
	FixedTimestep float64
	Duration      float64
	Metrics       map[string]float64
}

func (s *Store) newRunDir(preset string) (string, string, error) {
	base := fmt.Sprintf("%s_%d", preset, time.Now().Unix())
	runID := base
	for n := 2; ; n++ {
		dir := filepath.Join(s.baseDir, runID)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return runID, dir, os.MkdirAll(dir, 0755)
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

// Save writes metadata.json and states.csv for rec and returns the run id.
// Objects not yet spawned at a sample are written as NaN.
func (s *Store) Save(info RunInfo, rec *Recorder) (string, error) {
	runID, runDir, err := s.newRunDir(info.Preset)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Preset:        info.Preset,
		Timestamp:     time.Now(),
		Seed:          info.Seed,
		FixedTimestep: info.FixedTimestep,
		Duration:      info.Duration,
		Frames:        len(rec.Samples),
		Objects:       rec.Objects,
		Metrics:       info.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for _, o := range rec.Objects {
		for _, f := range []string{"x", "y", "z", "qx", "qy", "qz", "qw"} {
			header = append(header, fmt.Sprintf("o%d_%s", o.ID, f))
		}
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	width := len(rec.Objects) * FieldsPerObject
	for _, sample := range rec.Samples {
		row := make([]string, 0, width+1)
		row = append(row, strconv.FormatFloat(sample.Time, 'f', 6, 64))
		for _, v := range sample.Values {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for len(row) < width+1 {
			row = append(row, strconv.FormatFloat(math.NaN(), 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates returns one row of values per sample and the sample times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = math.NaN()
			}
			state = append(state, val)
		}
		states = append(states, state)
	}

	return states, times, nil
}

// Column returns the values of one object field across all rows. field
// indexes x, y, z, qx, qy, qz, qw in that order.
func Column(states [][]float64, object, field int) []float64 {
	col := object*FieldsPerObject + field
	out := make([]float64, 0, len(states))
	for _, row := range states {
		if col < len(row) {
			out = append(out, row[col])
		} else {
			out = append(out, math.NaN())
		}
	}
	return out
}
