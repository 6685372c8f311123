// Package dataset builds the flat CSV files used for seeding, training and
// comparing classifiers.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/call-auditor/parser"
	"github.com/maastricht-university/call-auditor/timeline"
)

var utteranceHeader = []string{"call_id", "utterance_id", "speaker", "text", "stime", "etime", "duration"}

// ErrEmpty is returned for a labelled file without rows.
var ErrEmpty = errors.New("empty dataset")

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// WriteUtterances flattens every transcript under folder into one CSV and
// returns the number of rows written.
func WriteUtterances(folder, out string, logger *logrus.Logger) (int, error) {
	tls, err := parser.LoadFolder(folder, logger)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	n, err := writeUtterances(f, tls)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	logger.WithFields(logrus.Fields{"rows": n, "out": out}).Info("utterances written")
	return n, nil
}

func writeUtterances(out io.Writer, tls []timeline.Timeline) (int, error) {
	w := csv.NewWriter(out)
	if err := w.Write(utteranceHeader); err != nil {
		return 0, err
	}
	n := 0
	for _, tl := range tls {
		for _, u := range tl.Utterances {
			rec := []string{u.CallID, strconv.Itoa(u.UtteranceID), u.Speaker, u.Text, ftoa(u.Start), ftoa(u.End), ftoa(u.Duration())}
			if err := w.Write(rec); err != nil {
				return n, err
			}
			n++
		}
	}
	w.Flush()
	return n, w.Error()
}

func column(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// Seed copies an utterance CSV and appends a label column holding the
// verdict of match on the text column. Rows are streamed.
func Seed(in io.Reader, out io.Writer, match func(text string) bool) (int, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	ti := column(header, "text")
	if ti < 0 {
		return 0, errors.New("missing text column")
	}
	w := csv.NewWriter(out)
	if err := w.Write(append(append([]string{}, header...), "label")); err != nil {
		return 0, err
	}

	n := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, fmt.Errorf("row %d: %w", n+1, err)
		}
		text := ""
		if ti < len(rec) {
			text = rec[ti]
		}
		label := "0"
		if match(text) {
			label = "1"
		}
		if err := w.Write(append(rec, label)); err != nil {
			return n, err
		}
		n++
	}
	w.Flush()
	return n, w.Error()
}

// SeedFile runs Seed between two paths.
func SeedFile(inPath, outPath string, match func(text string) bool) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	n, err := Seed(in, out, match)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Labelled is a text classification set.
type Labelled struct {
	Texts  []string
	Labels []int
}

func (l *Labelled) Len() int { return len(l.Texts) }

// Head returns the first n rows.
func (l *Labelled) Head(n int) *Labelled {
	if n < 0 || n >= l.Len() {
		return l
	}
	return &Labelled{Texts: l.Texts[:n], Labels: l.Labels[:n]}
}

// ReadLabelled reads text,label columns. Rows with an empty text are
// dropped; non-integer labels are an error.
func ReadLabelled(r io.Reader) (*Labelled, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}
	ti, li := column(header, "text"), column(header, "label")
	if ti < 0 || li < 0 {
		return nil, errors.New("missing cols: need text and label")
	}

	out := &Labelled{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if ti >= len(rec) || li >= len(rec) || rec[ti] == "" {
			continue
		}
		lbl, err := strconv.Atoi(strings.TrimSpace(rec[li]))
		if err != nil {
			return nil, fmt.Errorf("line %d: label %q: %w", line, rec[li], err)
		}
		out.Texts = append(out.Texts, rec[ti])
		out.Labels = append(out.Labels, lbl)
	}
	if out.Len() == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

func ReadLabelledFile(path string) (*Labelled, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLabelled(f)
}
