// Package evaluate scores binary classifiers against a labelled seed set.
package evaluate

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Result mirrors one row of the comparison table. Precision, recall and F1
// are 0 when their denominator is 0.
type Result struct {
	Approach  string  `json:"approach"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

type confusion struct{ tp, fp, tn, fn int }

func count(yTrue, yPred []int) confusion {
	var c confusion
	for i := range yTrue {
		t, p := yTrue[i] == 1, yPred[i] == 1
		switch {
		case t && p:
			c.tp++
		case !t && p:
			c.fp++
		case t && !p:
			c.fn++
		default:
			c.tn++
		}
	}
	return c
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Score compares predictions to ground truth labels.
func Score(approach string, yTrue, yPred []int) (Result, error) {
	if len(yTrue) != len(yPred) {
		return Result{}, fmt.Errorf("%s: %d labels, %d predictions", approach, len(yTrue), len(yPred))
	}
	c := count(yTrue, yPred)
	r := Result{
		Approach:  approach,
		Accuracy:  ratio(c.tp+c.tn, len(yTrue)),
		Precision: ratio(c.tp, c.tp+c.fp),
		Recall:    ratio(c.tp, c.tp+c.fn),
		Support:   len(yTrue),
	}
	if r.Precision+r.Recall > 0 {
		r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}
	return r, nil
}

// Best returns the result with the highest F1, first one wins ties.
func Best(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.F1 > best.F1 {
			best = r
		}
	}
	return best, true
}

// WriteTable prints results as an aligned text table.
func WriteTable(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Approach\tAccuracy\tPrecision\tRecall\tF1\tN")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%d\n", r.Approach, r.Accuracy, r.Precision, r.Recall, r.F1, r.Support)
	}
	return tw.Flush()
}
