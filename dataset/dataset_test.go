package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/call-auditor/detect"
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestWriteUtterances(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c1.json"), []byte(`[
		{"speaker":"agent","text":"hello, there","stime":1,"etime":2.5},
		{"speaker":"customer","text":"hi","stime":0,"etime":1}
	]`), 0o644))
	out := filepath.Join(dir, "utterances_all.csv")

	n, err := WriteUtterances(dir, out, quiet())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, utteranceHeader, rows[0])
	assert.Equal(t, []string{"c1", "1", "customer", "hi", "0", "1", "1"}, rows[1])
	assert.Equal(t, []string{"c1", "0", "agent", "hello, there", "1", "2.5", "1.5"}, rows[2])
}

func TestSeed(t *testing.T) {
	in := "call_id,utterance_id,speaker,text\nc,0,agent,oh heck\nc,1,cust,fine\n"
	var out bytes.Buffer
	n, err := Seed(strings.NewReader(in), &out, detect.NewProfanity([]string{"heck"}).Match)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "call_id,utterance_id,speaker,text,label\nc,0,agent,oh heck,1\nc,1,cust,fine,0\n", out.String())
}

func TestSeedMissingText(t *testing.T) {
	_, err := Seed(strings.NewReader("a,b\n1,2\n"), io.Discard, detect.NewProfanity(nil).Match)
	assert.Error(t, err)
}

func TestReadLabelled(t *testing.T) {
	l, err := ReadLabelled(strings.NewReader("text,label\nabc,1\n,0\nxyz, 0\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "xyz"}, l.Texts)
	assert.Equal(t, []int{1, 0}, l.Labels)
	assert.Equal(t, 1, l.Head(1).Len())
	assert.Equal(t, 2, l.Head(10).Len())
}

func TestReadLabelledErrors(t *testing.T) {
	_, err := ReadLabelled(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = ReadLabelled(strings.NewReader("text,label\n"))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = ReadLabelled(strings.NewReader("text\nabc\n"))
	assert.ErrorContains(t, err, "missing cols")

	_, err = ReadLabelled(strings.NewReader("text,label\nabc,yes\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestSeedFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "utterances_all.csv")
	out := filepath.Join(dir, "dataset_seed.csv")
	require.NoError(t, os.WriteFile(in, []byte("text\ndarn it\nhello\n"), 0o644))

	prof := detect.NewProfanity([]string{"darn"})
	n, err := SeedFile(in, out, prof.Match)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	l, err := ReadLabelledFile(out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, l.Labels)

	require.NoError(t, os.WriteFile(in, []byte("text\nd a r n it\nhello\n"), 0o644))
	_, err = SeedFile(in, out, prof.Match)
	require.NoError(t, err)
	l, err = ReadLabelledFile(out)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, l.Labels)

	_, err = SeedFile(in, out, prof.MatchStrict)
	require.NoError(t, err)
	l, err = ReadLabelledFile(out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, l.Labels)
}
