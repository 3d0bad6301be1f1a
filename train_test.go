package camzip

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainContextLength(t *testing.T) {
	corpus := []byte("abracadabra")
	for _, k := range []int{0, -1, 5} {
		_, err := Train(corpus, k)
		assert.True(t, errors.Is(err, ErrContextLength), "k=%d: %v", k, err)
	}

	table, err := Train(corpus, 5, WithMaxContextLen(5))
	require.NoError(t, err)
	assert.Equal(t, 5, table.ContextLen())

	_, err = Train(corpus, 1, WithMaxContextLen(MaxContextLenLimit+1))
	assert.True(t, errors.Is(err, ErrContextLength), "%v", err)
}

func TestTrainAbracadabra(t *testing.T) {
	table, err := Train([]byte("abracadabra"), 1)
	require.NoError(t, err)

	// a:5 b:2 c:1 d:1 r:2 in ascending order.
	e, ok := table.Entry(NoContext)
	require.True(t, ok)
	assert.Equal(t, Mapping{{'a', 5.0 / 11}, {'b', 2.0 / 11}, {'c', 1.0 / 11}, {'d', 1.0 / 11}, {'r', 2.0 / 11}}, e.Mapping)

	// After 'a' come b, c, d, b.
	e, ok = table.Entry(NewContextKey([]byte("a")))
	require.True(t, ok)
	assert.Equal(t, Mapping{{'b', 0.5}, {'c', 0.25}, {'d', 0.25}}, e.Mapping)

	e, ok = table.Entry(NewContextKey([]byte("r")))
	require.True(t, ok)
	assert.Equal(t, Mapping{{'a', 1}}, e.Mapping)

	// 'z' never occurs.
	_, ok = table.Model(NewContextKey([]byte("z")))
	assert.False(t, ok)

	// no_context, a, b, c, d, r
	assert.Equal(t, 6, table.Len())
	var keys []string
	for _, e := range table.Entries() {
		keys = append(keys, e.Key.String())
	}
	assert.Equal(t, []string{"no_context", `"a"`, `"b"`, `"c"`, `"d"`, `"r"`}, keys)
}

func TestTrainProbabilitiesSumToOne(t *testing.T) {
	table, err := Train(readGettysburg(t), 3)
	require.NoError(t, err)
	for _, e := range table.Entries() {
		var sum float64
		for _, p := range e.Mapping {
			assert.Greater(t, p.Probability, 0.0)
			sum += p.Probability
		}
		assert.InDelta(t, 1, sum, 1e-9, "%s", e.Key)
	}
}

func TestTrainEmpty(t *testing.T) {
	_, err := Train(nil, 1)
	assert.Error(t, err)
}

func TestTrainAll(t *testing.T) {
	corpus := readGettysburg(t)
	ks := []int{3, 1, 4, 2}
	tables, err := TrainAll(corpus, ks)
	require.NoError(t, err)
	require.Len(t, tables, len(ks))
	for i, k := range ks {
		assert.Equal(t, k, tables[i].ContextLen())
		single, err := Train(corpus, k)
		require.NoError(t, err)
		assert.Equal(t, single.Len(), tables[i].Len())
	}

	_, err = TrainAll(corpus, []int{1, 9})
	assert.True(t, errors.Is(err, ErrContextLength), "%v", err)
}

func TestConcatCorpus(t *testing.T) {
	corpus, err := ConcatCorpus(strings.NewReader("hamlet "), strings.NewReader("war and peace"))
	require.NoError(t, err)
	assert.Equal(t, "hamlet war and peace", string(corpus))
}
