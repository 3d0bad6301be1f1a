package main

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizedDistance(t *testing.T) {
	assert.Equal(t, 0.0, normalizedDistance(0, 0, 0))
	assert.InDelta(t, 0.5, normalizedDistance(150, 100, 100), 1e-12)
	assert.InDelta(t, 0.25, normalizedDistance(150, 100, 200), 1e-12)
}

func TestFilterNucleotides(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	require.NoError(t, filterNucleotides(buf, strings.NewReader(">chrM header\nGATC\nnagt\n")))
	// The header leaks a 'c' and an 'a'.
	assert.Equal(t, "cagatcagt", buf.String())
}

func TestPrepareSequences(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	p := filepath.Join(src, "human.txt")
	require.NoError(t, ioutil.WriteFile(p, []byte("AC\nGT\n"), 0644))

	dsts, err := prepareSequences(dst, []string{p})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dst, "human.atcg")}, dsts)
	b, err := ioutil.ReadFile(dsts[0])
	require.NoError(t, err)
	assert.Equal(t, "acgt", string(b))
}

func TestDistanceMatrix(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, ioutil.WriteFile(p, []byte(content), 0644))
		return p
	}
	x := write("x.txt", strings.Repeat("the quick brown fox jumps over the lazy dog ", 40))
	y := write("y.txt", strings.Repeat("the quick brown fox jumps over the lazy cat ", 40))
	z := write("z.txt", strings.Repeat("0123456789abcdefghijklmnopqrstuvwxyz!?", 40))

	cacher, err := lru.New[string, float64](16)
	require.NoError(t, err)
	m := &measurer{intelligence: "arithmetic", cacher: cacher, logger: zap.NewNop()}
	mat, err := m.distanceMatrix([]string{x, y, z})
	require.NoError(t, err)
	require.Len(t, mat, 3)
	for _, d := range mat {
		assert.False(t, d < -1 || d > 2, "%g", d)
	}
	// Only the input files are cached, not their concatenations.
	assert.Equal(t, 3, cacher.Len())
	for _, p := range []string{x, y, z} {
		assert.True(t, cacher.Contains(p), p)
	}

	_, err = m.distanceMatrix([]string{x})
	assert.Error(t, err)
}
