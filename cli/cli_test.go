package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir    string
	data   string
	config string
}

func newFixture(t *testing.T, extra string) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{dir: dir, data: filepath.Join(dir, "calls"), config: filepath.Join(dir, "config.yaml")}
	require.NoError(t, os.MkdirAll(f.data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.data, "call_1.json"), []byte(`{"utterances":[
		{"speaker":"Agent","text":"hello","stime":0,"etime":2},
		{"speaker":"Customer","text":"darn this","stime":1,"etime":3},
		{"speaker":"Agent","text":"your balance is $90","stime":5,"etime":6}
	]}`), 0o644))
	wordlist := filepath.Join(dir, "profanity_list.txt")
	require.NoError(t, os.WriteFile(wordlist, []byte("# words\ndarn\n"), 0o644))

	conf := fmt.Sprintf(`pipeline:
  log_level: error
  workers: 2
paths:
  data: %q
  wordlist: %q
  outputs: %q
  utterances: %q
  seed: %q
%s`, f.data, wordlist, filepath.Join(dir, "out"), filepath.Join(dir, "utterances_all.csv"), filepath.Join(dir, "dataset_seed.csv"), extra)
	require.NoError(t, os.WriteFile(f.config, []byte(conf), 0o644))
	return f
}

func run(t *testing.T, f fixture, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(io.Discard)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", f.config}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestExport(t *testing.T) {
	f := newFixture(t, "")
	db := filepath.Join(f.dir, "audit.sqlite")
	prom := filepath.Join(f.dir, "auditor.prom")

	out, err := run(t, f, "export", "--db", db, "--metrics-textfile", prom)
	require.NoError(t, err)
	assert.Contains(t, out, "results.csv")

	matches, err := filepath.Glob(filepath.Join(f.dir, "out", "run_*", "results.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	b, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "call_1,1,Customer,borrower,darn this,profanity")
	assert.Contains(t, string(b), "call_1,2,Agent,agent,your balance is $90,privacy")

	_, err = os.Stat(prom)
	assert.NoError(t, err)

	out, err = run(t, f, "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "calls=1\tflags=2")
	runID := strings.Fields(out)[0]

	out, err = run(t, f, "runs", "--db", db, "--run", runID, "--call", "call_1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "profanity")
	assert.Contains(t, lines[1], "darn this")
	assert.Contains(t, lines[2], "privacy")

	out, err = run(t, f, "runs", "--db", db, "--run", runID, "--call", "call_9")
	require.NoError(t, err)
	assert.Equal(t, "no flags\n", out)

	_, err = run(t, f, "runs", "--db", db, "--run", runID)
	assert.Error(t, err)
}

func TestStrictProfanity(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(f.data, "call_2.json"), []byte(`[
		{"speaker":"Customer","text":"d a r n","stime":0,"etime":1}
	]`), 0o644))
	obfuscated := filepath.Join(f.data, "call_2.json")

	resultsOf := func(outDir string) string {
		t.Helper()
		matches, err := filepath.Glob(filepath.Join(outDir, "run_*", "results.csv"))
		require.NoError(t, err)
		require.Len(t, matches, 1)
		b, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		return string(b)
	}
	plain, strict := filepath.Join(f.dir, "plain"), filepath.Join(f.dir, "strict")
	_, err := run(t, f, "export", "--out-dir", plain)
	require.NoError(t, err)
	_, err = run(t, f, "export", "--out-dir", strict, "--strict")
	require.NoError(t, err)
	assert.NotContains(t, resultsOf(plain), "call_2")
	assert.Contains(t, resultsOf(strict), "call_2,0,Customer,borrower,d a r n,profanity")

	out, err := run(t, f, "analyze", obfuscated)
	require.NoError(t, err)
	assert.Contains(t, out, "No profanity issues detected")
	out, err = run(t, f, "analyze", obfuscated, "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 profanity utterance(s) (Pattern Matching)")

	_, err = run(t, f, "utterances")
	require.NoError(t, err)
	seed := filepath.Join(f.dir, "dataset_seed.csv")
	_, err = run(t, f, "seed")
	require.NoError(t, err)
	b, err := os.ReadFile(seed)
	require.NoError(t, err)
	assert.Contains(t, string(b), "call_2,0,Customer,d a r n,0,1,1,0\n")

	_, err = run(t, f, "seed", "--strict")
	require.NoError(t, err)
	b, err = os.ReadFile(seed)
	require.NoError(t, err)
	assert.Contains(t, string(b), "call_2,0,Customer,d a r n,0,1,1,1\n")
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t, "")
	file := filepath.Join(f.data, "call_1.json")

	out, err := run(t, f, "analyze", file, "--entity", "metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "Call: call_1")
	assert.Contains(t, out, "Call duration (s): 6.00")
	assert.Contains(t, out, "Silence %: 33.33%")

	out, err = run(t, f, "analyze", file, "--entity", "privacy")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 privacy utterance(s) (Pattern Matching)")

	out, err = run(t, f, "analyze", file, "--entity", "profanity", "--json")
	require.NoError(t, err)
	var res struct {
		Flags []struct {
			Text string `json:"text"`
		} `json:"flags"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Flags, 1)
	assert.Equal(t, "darn this", res.Flags[0].Text)

	_, err = run(t, f, "analyze", file, "--approach", "ml")
	assert.Error(t, err)
	_, err = run(t, f, "analyze", file, "--approach", "psychic")
	assert.Error(t, err)
}

func TestDatasetFlow(t *testing.T) {
	f := newFixture(t, "")

	out, err := run(t, f, "utterances")
	require.NoError(t, err)
	assert.Contains(t, out, "written 3")

	out, err = run(t, f, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 3")

	out, err = run(t, f, "compare")
	require.NoError(t, err)
	assert.Contains(t, out, "Pattern Matching")
	assert.Contains(t, out, "best F1: Pattern Matching (1.0000)")
	assert.NotContains(t, out, "ML Baseline")
}

func TestTrainAndCompareWithService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/train":
			_ = json.NewEncoder(w).Encode(map[string]any{"model": "profanity_baseline", "path": "models/profanity_baseline.pkl", "samples": 2})
		case "/predict":
			var req struct {
				Texts []string `json:"texts"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			preds := make([]int, len(req.Texts))
			_ = json.NewEncoder(w).Encode(map[string]any{"predictions": preds})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := newFixture(t, fmt.Sprintf("services:\n  ml:\n    url: %q\n", srv.URL))
	seed := filepath.Join(f.dir, "dataset_seed.csv")
	require.NoError(t, os.WriteFile(seed, []byte("text,label\ndarn it,1\nhello,0\n"), 0o644))

	out, err := run(t, f, "train")
	require.NoError(t, err)
	assert.Contains(t, out, "model -> models/profanity_baseline.pkl")

	out, err = run(t, f, "compare")
	require.NoError(t, err)
	assert.Contains(t, out, "ML Baseline")
}

func TestTrainRequiresService(t *testing.T) {
	f := newFixture(t, "")
	seed := filepath.Join(f.dir, "dataset_seed.csv")
	require.NoError(t, os.WriteFile(seed, []byte("text,label\nhello,0\n"), 0o644))
	_, err := run(t, f, "train")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	f := newFixture(t, "")
	out, err := run(t, f, "config")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "log_level: error"), out)
	assert.Contains(t, out, "window: 6")
}
