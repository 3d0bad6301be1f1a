package camzip

import (
	"bytes"
	"io/ioutil"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gettysburg = "testdata/gettysburg.txt"

func readGettysburg(t *testing.T) []byte {
	b, err := ioutil.ReadFile(gettysburg)
	require.NoError(t, err)
	return b
}

func TestCompress(t *testing.T) {
	// Compress
	f, err := ioutil.TempFile("", "camzip.TestCompress.Compress")
	require.NoError(t, err)
	defer f.Close()
	defer os.Remove(f.Name())
	h, err := Compress(f, gettysburg, WithPrecision(20))
	require.NoError(t, err)
	assert.Equal(t, uint(20), h.Precision)

	// The header goes through its own file format.
	record := bytes.NewBuffer(nil)
	require.NoError(t, WriteStaticHeader(record, h))
	h, err = ReadStaticHeader(record)
	require.NoError(t, err)

	// Decompress with a different configured precision: the header wins.
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	decom := bytes.NewBuffer(nil)
	require.NoError(t, Decompress(decom, f, h, WithPrecision(32)))

	assert.Equal(t, readGettysburg(t), decom.Bytes())
}

func TestCompressContext(t *testing.T) {
	table, err := Train(readGettysburg(t), 3)
	require.NoError(t, err)

	f, err := ioutil.TempFile("", "camzip.TestCompressContext.Compress")
	require.NoError(t, err)
	defer f.Close()
	defer os.Remove(f.Name())
	h, err := CompressContext(f, gettysburg, table, WithPrecision(40))
	require.NoError(t, err)
	assert.Equal(t, ContextHeader{ContextLen: 3, Symbols: len(readGettysburg(t)), Precision: 40}, h)

	// The header carries the precision, so none is passed here.
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	decom := bytes.NewBuffer(nil)
	require.NoError(t, DecompressContext(decom, f, table, h))
	assert.Equal(t, readGettysburg(t), decom.Bytes())

	bad := h
	bad.Symbols = -1
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	assert.True(t, errors.Is(DecompressContext(ioutil.Discard, f, table, bad), ErrSymbolCount))

	other, err := Train(readGettysburg(t), 2)
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	assert.Error(t, DecompressContext(ioutil.Discard, f, other, h))
}

func TestCompressEmpty(t *testing.T) {
	name := t.TempDir() + "/empty"
	require.NoError(t, ioutil.WriteFile(name, nil, 0644))

	packed := bytes.NewBuffer(nil)
	h, err := Compress(packed, name)
	require.NoError(t, err)
	assert.Empty(t, h.Frequencies)
	assert.Zero(t, packed.Len())

	decom := bytes.NewBuffer(nil)
	require.NoError(t, Decompress(decom, packed, h))
	assert.Zero(t, decom.Len())
}
