// Package parser turns heterogeneous transcript documents into call
// timelines.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/call-auditor/timeline"
)

// ErrMalformedInput marks a source file that cannot be turned into a timeline.
var ErrMalformedInput = errors.New("malformed input")

// listKeys are probed in order before falling back to any list of objects.
var listKeys = []string{"utterances", "conversation", "transcript", "segments", "items", "results"}

// Supported reports whether the file extension is a transcript format.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// CallID derives a call id from the file name.
func CallID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseFile reads a JSON or YAML transcript.
func ParseFile(path string) (timeline.Timeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return timeline.Timeline{}, err
	}
	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &doc)
	default:
		err = json.Unmarshal(b, &doc)
	}
	if err != nil {
		return timeline.Timeline{}, fmt.Errorf("%s: %v: %w", path, err, ErrMalformedInput)
	}
	return Parse(CallID(path), doc)
}

// Parse normalizes an already decoded document.
func Parse(callID string, doc any) (timeline.Timeline, error) {
	items := findUtterances(doc)
	if len(items) == 0 {
		if obj, ok := doc.(map[string]any); ok {
			items = []any{obj}
		}
	}

	utts := make([]timeline.Utterance, 0, len(items))
	for i, it := range items {
		raw, ok := it.(map[string]any)
		if !ok {
			return timeline.Timeline{}, fmt.Errorf("%s: item %d is %T, not an object: %w", callID, i, it, ErrMalformedInput)
		}
		u := Normalize(raw, i)
		u.CallID = callID
		utts = append(utts, u)
	}
	return timeline.New(callID, utts), nil
}

func findUtterances(doc any) []any {
	switch d := doc.(type) {
	case []any:
		return d
	case map[string]any:
		for _, k := range listKeys {
			if l, ok := d[k].([]any); ok {
				return l
			}
		}
		// sorted for a deterministic pick across runs
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if l, ok := d[k].([]any); ok && allObjects(l) {
				return l
			}
		}
	}
	return nil
}

func allObjects(l []any) bool {
	for _, it := range l {
		if _, ok := it.(map[string]any); !ok {
			return false
		}
	}
	return true
}

// Normalize extracts a single utterance; idx becomes its utterance id.
func Normalize(raw map[string]any, idx int) timeline.Utterance {
	text, _ := First(raw, textRules)
	speaker := "unknown"
	if v, ok := First(raw, speakerRules); ok {
		speaker = asString(v)
	}

	st, _ := First(raw, startRules)
	et, _ := First(raw, endRules)
	if st == nil {
		st, _ = First(raw, nestedStartRules)
		if empty(et) {
			if v, ok := First(raw, nestedEndRules); ok {
				et = v
			}
		}
	}

	start := Seconds(st)
	end := start
	if et != nil {
		end = Seconds(et)
	}
	if end < start {
		end = start
	}
	return timeline.Utterance{
		UtteranceID: idx,
		Speaker:     speaker,
		Text:        strings.TrimSpace(asString(text)),
		Start:       start,
		End:         end,
	}
}

// LoadFolder parses every transcript in dir, in file name order. Files that
// fail to parse or hold no utterances are logged and skipped.
func LoadFolder(dir string, logger *logrus.Logger) ([]timeline.Timeline, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}
	log := logger.WithField("component", "parser")

	var out []timeline.Timeline
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		tl, err := ParseFile(p)
		if err != nil {
			log.WithError(err).WithField("path", p).Warn("parse error")
			continue
		}
		if tl.Len() == 0 {
			log.WithField("path", p).Debug("no utterances")
			continue
		}
		out = append(out, tl)
	}
	return out, nil
}
