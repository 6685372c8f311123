package orchestrator

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Written lists the files produced by Persist.
type Written struct {
	Dir         string `json:"dir"`
	Results     string `json:"results"`
	CallMetrics string `json:"call_metrics"`
	Bundle      string `json:"bundle"`
}

var (
	resultsHeader     = []string{"call_id", "utterance_id", "speaker", "role", "text", "issue"}
	callMetricsHeader = []string{"call_id", "call_duration", "overtalk_pct", "silence_pct"}
)

// runDirName is unique per run: two runs started in the same second still
// differ in their run id.
func runDirName(at time.Time, runID string) string {
	id := strings.ReplaceAll(runID, "-", "")
	if len(id) > 12 {
		id = id[:12]
	}
	if id == "" {
		return "run_" + at.Format("20060102-150405")
	}
	return "run_" + at.Format("20060102-150405") + "_" + id
}

func mkRunDir(outputsRoot string, rep *Report) (string, error) {
	dir := filepath.Join(outputsRoot, runDirName(rep.GeneratedAt, rep.RunID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	err = w.Write(header)
	if err == nil {
		err = w.WriteAll(rows)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Persist writes the flag table, the per-call metrics table and a JSON
// bundle of the whole report into a timestamped run directory.
func Persist(outputsRoot, resultsName, callMetricsName string, rep *Report) (*Written, error) {
	dir, err := mkRunDir(outputsRoot, rep)
	if err != nil {
		return nil, err
	}
	out := &Written{
		Dir:         dir,
		Results:     filepath.Join(dir, filepath.Base(resultsName)),
		CallMetrics: filepath.Join(dir, filepath.Base(callMetricsName)),
		Bundle:      filepath.Join(dir, "report.json"),
	}

	flags := make([][]string, 0, len(rep.Flags))
	for _, f := range rep.Flags {
		flags = append(flags, []string{f.CallID, strconv.Itoa(f.UtteranceID), f.Speaker, f.Role, f.Text, string(f.Issue)})
	}
	if err := writeCSV(out.Results, resultsHeader, flags); err != nil {
		return nil, err
	}

	calls := make([][]string, 0, len(rep.Calls))
	for _, c := range rep.Calls {
		calls = append(calls, []string{c.CallID, ftoa(c.CallDuration), ftoa(c.OvertalkPct), ftoa(c.SilencePct)})
	}
	if err := writeCSV(out.CallMetrics, callMetricsHeader, calls); err != nil {
		return nil, err
	}

	if err := writeJSON(out.Bundle, rep); err != nil {
		return nil, err
	}
	return out, nil
}
