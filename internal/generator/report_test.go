package generator

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReport_Finalize(t *testing.T) {
	r := NewRunReport("fulltypegen")

	h := r.BeginStage("extract")
	r.EndStage(h, map[string]float64{"modules": 2, " ": 1}, nil)
	h = r.BeginStage("resolve")
	r.EndStage(h, nil, errors.New("boom"))

	r.AddModule(ModuleMetric{Module: "B", Unknown: 1})
	r.AddModule(ModuleMetric{Module: "A", Unknown: 2})
	r.AddModule(ModuleMetric{})

	r.AddSignal("unknown_type", "resolve", "info", "A", "type x could not be resolved")
	r.AddSignal("merge_conflict", "merge", "WARNING", "", "duplicate class")
	r.AddSignal("", "merge", "warning", "", "dropped")

	r.Finalize()

	assert.Equal(t, map[string]float64{"modules": 2}, r.Stages[0].Counters)
	assert.Equal(t, "error", r.Stages[1].Status)
	assert.Equal(t, "A", r.Modules[0].Module)
	require.Len(t, r.Signals, 2)
	assert.Equal(t, "merge_conflict", r.Signals[0].Code)

	assert.Equal(t, ReportSummary{
		StageCount:        2,
		ModuleCount:       2,
		FailedStages:      1,
		UnknownTypes:      3,
		SignalsBySeverity: map[string]int{"warning": 1, "info": 1},
	}, r.Summary)
}

func TestRunReport_SaveAndNil(t *testing.T) {
	var nilReport *RunReport
	nilReport.AddSignal("c", "s", "info", "", "m")
	assert.NoError(t, nilReport.Save("unused"))

	path := filepath.Join(t.TempDir(), "out", "report.json")
	r := NewRunReport("gendocs")
	require.NoError(t, r.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "gendocs", decoded["mode"])
}
