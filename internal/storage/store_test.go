package storage

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/san-kum/linebot/internal/follower"
)

func sampleResult() *follower.Result {
	return &follower.Result{
		Times:     []float64{0.01, 0.02, 0.03},
		Positions: []float64{5.0, 2.5, 0.5},
		Outputs:   []float64{-17.5, -8.75, -1.75},
		Left:      []int{52, 61, 68},
		Right:     []int{88, 79, 72},
		Metrics:   map[string]float64{"tracking_rms": 3.2},
	}
}

func TestSaveAndLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	runID, err := st.Save(RunMetadata{Course: "scurve", Kp: 3.5, Base: 70, Duration: 10}, sampleResult())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Course != "scurve" || meta.Kp != 3.5 {
		t.Errorf("metadata round trip failed: %+v", meta)
	}
	if meta.Metrics["tracking_rms"] != 3.2 {
		t.Errorf("metrics not persisted: %+v", meta.Metrics)
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace: %v", err)
	}
	if len(trace.Times) != 3 {
		t.Fatalf("expected 3 trace rows, got %d", len(trace.Times))
	}
	if trace.Left[0] != 52 || trace.Right[0] != 88 {
		t.Errorf("trace round trip failed: %+v", trace)
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if _, err := st.Save(RunMetadata{Course: "straight"}, sampleResult()); err != nil {
		t.Fatalf("save: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	st := New("does-not-exist")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("missing base dir should not error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	runID, err := st.Save(RunMetadata{Course: "slalom"}, sampleResult())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(runID, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Course != "slalom" || len(data.Positions) != 3 {
		t.Errorf("export content wrong: %+v", data)
	}
}
