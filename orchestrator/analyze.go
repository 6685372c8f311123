package orchestrator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/call-auditor/detect"
	"github.com/maastricht-university/call-auditor/metrics"
	"github.com/maastricht-university/call-auditor/parser"
	"github.com/maastricht-university/call-auditor/timeline"
)

type Approach string

const (
	ApproachPattern Approach = "pattern"
	ApproachML      Approach = "ml"
	ApproachLLM     Approach = "llm"
)

type Entity string

const (
	EntityProfanity Entity = "profanity"
	EntityPrivacy   Entity = "privacy"
	EntityMetrics   Entity = "metrics"
)

// Analysis is the single-call view of one approach on one entity.
type Analysis struct {
	CallID   string               `json:"call_id"`
	Approach Approach             `json:"approach"`
	Entity   Entity               `json:"entity"`
	Flags    []Flag               `json:"flags,omitempty"`
	Metrics  *metrics.CallMetrics `json:"metrics,omitempty"`
}

// AnalyzeFile parses path and runs Analyze on it.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string, approach Approach, entity Entity) (*Analysis, error) {
	tl, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return p.Analyze(ctx, tl, approach, entity)
}

// Analyze runs one detection strategy on one call. Privacy has no trained
// model, so the ml approach falls back to pattern matching there.
func (p *Pipeline) Analyze(ctx context.Context, tl timeline.Timeline, approach Approach, entity Entity) (*Analysis, error) {
	a := &Analysis{CallID: tl.CallID, Approach: approach, Entity: entity}
	log := p.log.WithFields(logrus.Fields{"call_id": tl.CallID, "approach": approach, "entity": entity})

	switch entity {
	case EntityMetrics:
		m := metrics.Compute(tl)
		a.Metrics = &m

	case EntityProfanity:
		labels, probs, err := p.profanityLabels(ctx, tl, approach)
		if err != nil {
			return nil, err
		}
		if len(labels) != tl.Len() {
			return nil, fmt.Errorf("%s: %d labels for %d utterances", approach, len(labels), tl.Len())
		}
		if len(probs) != len(labels) {
			probs = nil
		}
		for i, u := range tl.Utterances {
			if labels[i] != 1 {
				continue
			}
			f := flagOf(u, IssueProfanity)
			if probs != nil {
				pr := probs[i]
				f.Probability = &pr
			}
			a.Flags = append(a.Flags, f)
		}

	case EntityPrivacy:
		if approach == ApproachLLM {
			llm, err := p.LLM()
			if err != nil {
				return nil, err
			}
			labels := llm.Classify(ctx, tl.Texts(), detect.EntityPrivacy)
			for i, u := range tl.Utterances {
				if labels[i] == 1 {
					a.Flags = append(a.Flags, flagOf(u, IssuePrivacy))
				}
			}
			break
		}
		for _, v := range p.privacy.Detect(tl) {
			a.Flags = append(a.Flags, Flag{
				CallID: v.CallID, UtteranceID: v.UtteranceID, Speaker: v.Speaker,
				Role: timeline.RoleAgent, Text: v.Text, Issue: IssuePrivacy, Start: v.Start,
			})
		}

	default:
		return nil, fmt.Errorf("unknown entity %q", entity)
	}

	log.WithField("flags", len(a.Flags)).Info("analysis complete")
	return a, nil
}

func (p *Pipeline) profanityLabels(ctx context.Context, tl timeline.Timeline, approach Approach) ([]int, []float64, error) {
	texts := tl.Texts()
	switch approach {
	case ApproachPattern:
		return p.PatternLabels(texts), nil, nil
	case ApproachML:
		ml, err := p.ML()
		if err != nil {
			return nil, nil, fmt.Errorf("ml model missing: %w", err)
		}
		return ml.Predict(ctx, texts)
	case ApproachLLM:
		llm, err := p.LLM()
		if err != nil {
			return nil, nil, err
		}
		return llm.Classify(ctx, texts, detect.EntityProfanity), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown approach %q", approach)
}
