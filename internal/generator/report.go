package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

type ReportSignal struct {
	Code     string `json:"code"`
	Stage    string `json:"stage"`
	Severity string `json:"severity"`
	Module   string `json:"module,omitempty"`
	Message  string `json:"message"`
}

type StageMetric struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	StartedAt  string             `json:"started_at"`
	FinishedAt string             `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// ModuleMetric summarises the resolved output of one module.
type ModuleMetric struct {
	Module      string `json:"module"`
	Classes     int    `json:"classes"`
	Enums       int    `json:"enums"`
	Properties  int    `json:"properties"`
	Functions   int    `json:"functions"`
	Signals     int    `json:"signals"`
	Unknown     int    `json:"unknown"`
	Diagnostics int    `json:"diagnostics"`
}

type ReportSummary struct {
	StageCount        int            `json:"stage_count"`
	ModuleCount       int            `json:"module_count"`
	FailedStages      int            `json:"failed_stages"`
	UnknownTypes      int            `json:"unknown_types"`
	SignalsBySeverity map[string]int `json:"signals_by_severity"`
}

// RunReport records what a generation run did. All methods are safe on a
// nil report so callers can leave reporting off, and safe for concurrent use.
type RunReport struct {
	mu sync.Mutex

	Version     string         `json:"version"`
	Mode        string         `json:"mode"`
	GeneratedAt string         `json:"generated_at"`
	Stages      []StageMetric  `json:"stages"`
	Modules     []ModuleMetric `json:"modules,omitempty"`
	Signals     []ReportSignal `json:"signals,omitempty"`
	Summary     ReportSummary  `json:"summary"`
}

type StageHandle struct {
	name    string
	started time.Time
}

func NewRunReport(mode string) *RunReport {
	return &RunReport{
		Version:     "v1",
		Mode:        mode,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Stages:      []StageMetric{},
		Modules:     []ModuleMetric{},
		Signals:     []ReportSignal{},
	}
}

func (r *RunReport) BeginStage(name string) StageHandle {
	return StageHandle{name: strings.TrimSpace(name), started: time.Now().UTC()}
}

func (r *RunReport) EndStage(h StageHandle, counters map[string]float64, err error) {
	if r == nil || h.name == "" {
		return
	}
	finished := time.Now().UTC()
	m := StageMetric{
		Name:       h.name,
		Status:     "ok",
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: finished.Format(time.RFC3339Nano),
		DurationMS: finished.Sub(h.started).Milliseconds(),
		Counters:   cleanCounters(counters),
	}
	if err != nil {
		m.Status = "error"
		m.Error = err.Error()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Stages = append(r.Stages, m)
}

func (r *RunReport) AddSignal(code, stage, severity, module, message string) {
	if r == nil {
		return
	}
	s := ReportSignal{
		Code:     strings.TrimSpace(code),
		Stage:    strings.TrimSpace(stage),
		Severity: strings.ToLower(strings.TrimSpace(severity)),
		Module:   module,
		Message:  strings.TrimSpace(message),
	}
	if s.Code == "" || s.Stage == "" || s.Severity == "" || s.Message == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Signals = append(r.Signals, s)
}

func (r *RunReport) AddModule(m ModuleMetric) {
	if r == nil || m.Module == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Modules = append(r.Modules, m)
}

func (r *RunReport) Finalize() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalize()
}

func (r *RunReport) finalize() {
	r.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	sort.SliceStable(r.Modules, func(i, j int) bool {
		return r.Modules[i].Module < r.Modules[j].Module
	})
	sort.SliceStable(r.Signals, func(i, j int) bool {
		pi := signalPriority(r.Signals[i].Severity)
		pj := signalPriority(r.Signals[j].Severity)
		if pi != pj {
			return pi > pj
		}
		if r.Signals[i].Stage != r.Signals[j].Stage {
			return r.Signals[i].Stage < r.Signals[j].Stage
		}
		return r.Signals[i].Code < r.Signals[j].Code
	})

	severityCount := map[string]int{
		SeverityWarning: 0,
		SeverityInfo:    0,
	}
	for _, s := range r.Signals {
		severityCount[s.Severity]++
	}

	failed := 0
	for _, st := range r.Stages {
		if st.Status != "ok" {
			failed++
		}
	}

	unknown := 0
	for _, m := range r.Modules {
		unknown += m.Unknown
	}

	r.Summary = ReportSummary{
		StageCount:        len(r.Stages),
		ModuleCount:       len(r.Modules),
		FailedStages:      failed,
		UnknownTypes:      unknown,
		SignalsBySeverity: severityCount,
	}
}

func (r *RunReport) Save(path string) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalize()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func cleanCounters(raw map[string]float64) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		if key := strings.TrimSpace(k); key != "" {
			out[key] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func signalPriority(severity string) int {
	if severity == SeverityWarning {
		return 2
	}
	return 1
}
