package detect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// ErrMissingResource marks an absent wordlist or classifier; callers run
// in degraded mode instead of failing.
var ErrMissingResource = errors.New("missing resource")

var nonLetters = regexp.MustCompile(`[^a-z]`)

// LoadWordlist reads one trigger word per line. Blank lines and lines
// starting with '#' are skipped, words are lowercased.
func LoadWordlist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("wordlist %s: %w", path, ErrMissingResource)
		}
		return nil, err
	}
	defer f.Close()
	return ReadWordlist(f)
}

func ReadWordlist(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ln := strings.TrimSpace(sc.Text())
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		words = append(words, strings.ToLower(ln))
	}
	return words, sc.Err()
}

// Profanity matches trigger words as whole words, case-insensitively.
// An empty list matches nothing.
type Profanity struct {
	pattern *regexp.Regexp // nil when the list is empty
	words   []string
}

func NewProfanity(words []string) *Profanity {
	p := &Profanity{}
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		p.words = append(p.words, w)
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) > 0 {
		p.pattern = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return p
}

func (p *Profanity) Words() int { return len(p.words) }

// Match runs the word-boundary pattern only.
func (p *Profanity) Match(text string) bool {
	if p.pattern == nil {
		return false
	}
	return p.pattern.MatchString(strings.ToLower(text))
}

// MatchStrict also strips every non-letter and looks for any word as a
// substring, catching "b a d" or "b.a.d" spellings. This pass trades
// precision for recall: "class" contains "ass".
func (p *Profanity) MatchStrict(text string) bool {
	if p.Match(text) {
		return true
	}
	cleaned := nonLetters.ReplaceAllString(strings.ToLower(text), "")
	for _, w := range p.words {
		if strings.Contains(cleaned, w) {
			return true
		}
	}
	return false
}

// Predict labels each text 1 when Match hits, or MatchStrict when strict.
func (p *Profanity) Predict(texts []string, strict bool) []int {
	match := p.Match
	if strict {
		match = p.MatchStrict
	}
	out := make([]int, len(texts))
	for i, t := range texts {
		if match(t) {
			out[i] = 1
		}
	}
	return out
}
