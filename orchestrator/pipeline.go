package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/call-auditor/clients"
	cfg "github.com/maastricht-university/call-auditor/config"
	"github.com/maastricht-university/call-auditor/detect"
	"github.com/maastricht-university/call-auditor/metrics"
	"github.com/maastricht-university/call-auditor/parser"
	"github.com/maastricht-university/call-auditor/timeline"
)

type Pipeline struct {
	cfg    *cfg.Root
	logger *logrus.Logger
	log    *logrus.Entry
	http   *clients.HTTP

	privacy   *detect.Privacy
	profanity *detect.Profanity
	ml        detect.Classifier
	llm       *detect.LLM
	strict    bool

	stats *Stats
}

type Option func(*Pipeline)

// WithProfanity replaces the wordlist loaded from configuration.
func WithProfanity(p *detect.Profanity) Option { return func(pl *Pipeline) { pl.profanity = p } }

func WithClassifier(c detect.Classifier) Option { return func(pl *Pipeline) { pl.ml = c } }

func WithLLM(l *detect.LLM) Option { return func(pl *Pipeline) { pl.llm = l } }

// WithStrictProfanity adds the letters-only substring pass to profanity
// pattern matching.
func WithStrictProfanity(strict bool) Option { return func(pl *Pipeline) { pl.strict = strict } }

// NewPipeline builds the detectors once. A missing wordlist, ML service or
// LLM key only disables the matching strategy.
func NewPipeline(c *cfg.Root, logger *logrus.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     c,
		logger:  logger,
		log:     logger.WithField("component", "pipeline"),
		http:    clients.NewHTTP(),
		privacy: detect.NewPrivacy(c.Privacy.Window),
		stats:   NewStats(),
	}
	for _, o := range opts {
		o(p)
	}

	if p.profanity == nil {
		words, err := detect.LoadWordlist(c.Paths.Wordlist)
		if err != nil {
			p.log.WithError(err).Warn("profanity wordlist unavailable, pattern matching disabled")
		}
		p.profanity = detect.NewProfanity(words)
	}
	p.log.WithFields(logrus.Fields{
		"trigger_words":  p.profanity.Words(),
		"strict":         p.strict,
		"privacy_window": p.privacy.Window(),
	}).Debug("detectors ready")
	if p.ml == nil {
		if ml, err := detect.NewMLService(p.http, c.Services.ML.URL, c.Services.ML.Model); err == nil {
			p.ml = ml
		} else {
			p.log.WithError(err).Debug("ml classifier disabled")
		}
	}
	if p.llm == nil {
		if l, err := detect.NewLLM(p.http, c.Services.LLM.URL, c.APIKey(), c.Services.LLM.Model, logger); err == nil {
			p.llm = l
		} else {
			p.log.WithError(err).Debug("llm classifier disabled")
		}
	}
	return p
}

func (p *Pipeline) Stats() *Stats { return p.stats }

// MatchProfanity applies the configured profanity pattern pass to text.
func (p *Pipeline) MatchProfanity(text string) bool {
	if p.strict {
		return p.profanity.MatchStrict(text)
	}
	return p.profanity.Match(text)
}

// PatternLabels labels texts with the configured profanity pattern pass.
func (p *Pipeline) PatternLabels(texts []string) []int {
	return p.profanity.Predict(texts, p.strict)
}

// ML returns the trained classifier, or ErrMissingResource when disabled.
func (p *Pipeline) ML() (detect.Classifier, error) {
	if p.ml == nil {
		return nil, detect.ErrMissingResource
	}
	return p.ml, nil
}

func (p *Pipeline) LLM() (*detect.LLM, error) {
	if p.llm == nil {
		return nil, detect.ErrMissingResource
	}
	return p.llm, nil
}

type callResult struct {
	row   CallRow
	flags []Flag
}

// Run audits every transcript in folder. Calls are independent and run on
// a bounded worker group; unreadable files are skipped by the loader.
func (p *Pipeline) Run(ctx context.Context, folder string) (*Report, error) {
	started := time.Now()
	tls, err := parser.LoadFolder(folder, p.logger)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"folder": folder, "calls": len(tls)}).Info("loaded transcripts")

	calls, err := p.auditAll(ctx, tls)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		RunID:       uuid.NewString(),
		Folder:      folder,
		GeneratedAt: time.Now().UTC(),
	}
	for _, c := range calls {
		rep.Calls = append(rep.Calls, c.row)
		rep.Flags = append(rep.Flags, c.flags...)
	}
	p.log.WithFields(logrus.Fields{
		"run_id":    rep.RunID,
		"calls":     len(rep.Calls),
		"profanity": rep.Count(IssueProfanity),
		"privacy":   rep.Count(IssuePrivacy),
		"elapsed":   time.Since(started).Round(time.Millisecond),
	}).Info("audit complete")
	return rep, nil
}

// auditAll audits timelines concurrently, keeping input order in the result.
func (p *Pipeline) auditAll(ctx context.Context, tls []timeline.Timeline) ([]callResult, error) {
	workers := p.cfg.Pipeline.Workers
	if workers <= 0 {
		workers = 1
	}
	out := make([]callResult, len(tls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, tl := range tls {
		i, tl := i, tl
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = p.audit(tl)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pipeline) audit(tl timeline.Timeline) callResult {
	var res callResult
	for _, u := range tl.Utterances {
		if p.MatchProfanity(u.Text) {
			res.flags = append(res.flags, flagOf(u, IssueProfanity))
		}
	}
	nProf := len(res.flags)
	for _, v := range p.privacy.Detect(tl) {
		res.flags = append(res.flags, Flag{
			CallID:      v.CallID,
			UtteranceID: v.UtteranceID,
			Speaker:     v.Speaker,
			Role:        timeline.RoleAgent,
			Text:        v.Text,
			Issue:       IssuePrivacy,
			Start:       v.Start,
		})
	}

	m := metrics.Compute(tl)
	res.row = CallRow{CallID: tl.CallID, Utterances: tl.Len(), Malformed: metrics.Malformed(tl), CallMetrics: m}

	// the parser clamps end to start; anything left is a producer bug
	if res.row.Malformed > 0 {
		p.log.WithFields(logrus.Fields{"call_id": tl.CallID, "count": res.row.Malformed}).Warn("utterances end before they start")
	}
	p.stats.CallsAudited.Inc()
	p.stats.MalformedIntervals.Add(float64(res.row.Malformed))
	p.stats.Flags.WithLabelValues(string(IssueProfanity)).Add(float64(nProf))
	p.stats.Flags.WithLabelValues(string(IssuePrivacy)).Add(float64(len(res.flags) - nProf))
	p.stats.OvertalkPct.Observe(m.OvertalkPct)
	p.stats.SilencePct.Observe(m.SilencePct)
	return res
}

func flagOf(u timeline.Utterance, issue Issue) Flag {
	return Flag{
		CallID:      u.CallID,
		UtteranceID: u.UtteranceID,
		Speaker:     u.Speaker,
		Role:        timeline.RoleOf(u.Speaker),
		Text:        u.Text,
		Issue:       issue,
		Start:       u.Start,
		End:         u.End,
	}
}
