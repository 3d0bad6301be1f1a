package camzip

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumin/camzip/ac"
)

func TestStaticHeaderRoundTrip(t *testing.T) {
	// Not in ascending order: the record must keep it.
	h := StaticHeader{Precision: 24, Frequencies: Frequencies{{'z', 3}, {'a', 1}, {0, 7}}}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, WriteStaticHeader(buf, h))

	loaded, err := ReadStaticHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, loaded)
	assert.Equal(t, uint64(11), loaded.Frequencies.Total())
}

func TestReadStaticHeaderDuplicate(t *testing.T) {
	_, err := ReadStaticHeader(strings.NewReader(`{"Precision":32,"Frequencies":[{"Symbol":97,"Count":1},{"Symbol":97,"Count":2}]}`))
	assert.Equal(t, ac.InvalidModel, ac.KindOf(err))
}

func TestContextHeaderRoundTrip(t *testing.T) {
	h := ContextHeader{ContextLen: 3, Symbols: 1475, Precision: 32}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, WriteContextHeader(buf, h))
	loaded, err := ReadContextHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, loaded)
}

func TestTableRoundTrip(t *testing.T) {
	message := readGettysburg(t)
	table, err := Train(message, 2)
	require.NoError(t, err)

	buf := bytes.NewBuffer(nil)
	require.NoError(t, WriteTable(buf, table))
	loaded, err := ReadTable(buf)
	require.NoError(t, err)

	assert.Equal(t, table.ContextLen(), loaded.ContextLen())
	require.Equal(t, table.Len(), loaded.Len())
	for _, e := range table.Entries() {
		le, ok := loaded.Entry(e.Key)
		require.True(t, ok, "%s", e.Key)
		assert.Equal(t, e.Mapping, le.Mapping)
		assert.Equal(t, e.Model.Bounds(), le.Model.Bounds())
	}

	// Encoding with the trained table and decoding with the loaded one must agree bit for bit.
	bits, err := EncodeContext(message, table)
	require.NoError(t, err)
	decoded, err := DecodeContext(bits, loaded, len(message))
	require.NoError(t, err)
	assert.Equal(t, message, decoded)
}

func TestReadTableMismatch(t *testing.T) {
	table, err := Train([]byte("abracadabra"), 1)
	require.NoError(t, err)

	// Tamper with the cumulative record of no_context.
	rec := tableRecord{ContextLen: 1}
	for _, e := range table.Entries() {
		none, ctx := keyToRecord(e.Key)
		bounds := e.Model.Bounds()
		if none {
			bounds[0].Symbol, bounds[1].Symbol = bounds[1].Symbol, bounds[0].Symbol
		}
		rec.Conditional = append(rec.Conditional, conditionalRecord{NoContext: none, Context: ctx, Mapping: e.Mapping})
		rec.Cumulative = append(rec.Cumulative, cumulativeRecord{NoContext: none, Context: ctx, Bounds: bounds})
	}
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	buf := bytes.NewBuffer(nil)
	sw := snappy.NewBufferedWriter(buf)
	_, err = sw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, sw.Close())
	_, err = ReadTable(buf)
	assert.Equal(t, ac.InvalidModel, ac.KindOf(err), "%+v", err)
}

func TestReadTableContextLength(t *testing.T) {
	table, err := Train([]byte("abracadabra"), 1)
	require.NoError(t, err)
	for _, k := range []int{-1, 0, MaxContextLenLimit + 1} {
		rec := tableRecord{ContextLen: k}
		for _, e := range table.Entries() {
			if !e.Key.IsNone() {
				continue
			}
			rec.Conditional = append(rec.Conditional, conditionalRecord{NoContext: true, Mapping: e.Mapping})
			rec.Cumulative = append(rec.Cumulative, cumulativeRecord{NoContext: true, Bounds: e.Model.Bounds()})
		}
		raw, err := json.Marshal(rec)
		require.NoError(t, err)
		buf := bytes.NewBuffer(nil)
		sw := snappy.NewBufferedWriter(buf)
		_, err = sw.Write(raw)
		require.NoError(t, err)
		require.NoError(t, sw.Close())

		_, err = ReadTable(buf)
		assert.True(t, errors.Is(err, ErrContextLength), "k=%d: %v", k, err)
	}
}

func TestReadTableGarbage(t *testing.T) {
	_, err := ReadTable(strings.NewReader("not a table"))
	assert.Error(t, err)
}
