// Package camzip compresses data with a finite precision integer arithmetic coder.
// Two methods are provided: a static one, where every symbol is coded with the frequencies of the whole input,
// and a contextual one, where every symbol is coded with a model selected by the symbols preceding it,
// trained beforehand on a corpus.
//
// Below is an example of compressing and decompressing Lincoln's Gettysburg address:
//
//	go run ./compress testdata/gettysburg.txt
//	go run ./decompress testdata/gettysburg.txt.cza
//	diff testdata/gettysburg.txt testdata/gettysburg.txt.cuz
//
// Reference:
// Witten, Ian H.; Neal, Radford M.; Cleary, John G. (June 1987). "Arithmetic Coding for Data Compression". Communications of the ACM 30 (6): 520–540.
package camzip

import (
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
)

// Compress codes the file name with the static method and writes the packed bits to w.
// The returned header is needed to decompress.
func Compress(w io.Writer, name string, opts ...Option) (StaticHeader, error) {
	data, err := ioutil.ReadFile(name)
	if err != nil {
		return StaticHeader{}, errors.Wrap(err, "")
	}
	h := StaticHeader{Precision: newOptions(opts).precision, Frequencies: CountFrequencies(data)}
	if len(data) == 0 {
		return h, nil
	}
	m, err := h.Frequencies.Mapping()
	if err != nil {
		return StaticHeader{}, errors.Wrap(err, "")
	}
	bits, err := Encode(data, m, opts...)
	if err != nil {
		return StaticHeader{}, errors.Wrap(err, "")
	}
	if _, err := w.Write(PackBits(bits)); err != nil {
		return StaticHeader{}, errors.Wrap(err, "")
	}
	return h, nil
}

// Decompress reads packed bits written by Compress from r and writes the original data to w.
// h is the header returned by Compress. The number of symbols is the total of its frequencies.
func Decompress(w io.Writer, r io.Reader, h StaticHeader, opts ...Option) error {
	n := h.Frequencies.Total()
	if n == 0 {
		return nil
	}
	m, err := h.Frequencies.Mapping()
	if err != nil {
		return errors.Wrap(err, "")
	}
	packed, err := ioutil.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if h.Precision != 0 {
		opts = append(opts, WithPrecision(h.Precision))
	}
	data, err := Decode(UnpackBits(packed), m, int(n), opts...)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// CompressContext codes the file name with the contextual method using t and writes the packed bits to w.
func CompressContext(w io.Writer, name string, t *ContextTable, opts ...Option) (ContextHeader, error) {
	data, err := ioutil.ReadFile(name)
	if err != nil {
		return ContextHeader{}, errors.Wrap(err, "")
	}
	h := ContextHeader{ContextLen: t.ContextLen(), Symbols: len(data), Precision: newOptions(opts).precision}
	if len(data) == 0 {
		return h, nil
	}
	bits, err := EncodeContext(data, t, opts...)
	if err != nil {
		return ContextHeader{}, errors.Wrap(err, "")
	}
	if _, err := w.Write(PackBits(bits)); err != nil {
		return ContextHeader{}, errors.Wrap(err, "")
	}
	return h, nil
}

// DecompressContext reads packed bits written by CompressContext from r and writes the original data to w.
// t must be the table used to compress, and h the header returned by CompressContext.
func DecompressContext(w io.Writer, r io.Reader, t *ContextTable, h ContextHeader, opts ...Option) error {
	if h.ContextLen != t.ContextLen() {
		return errors.Wrapf(ErrContextLength, "header has %d, table has %d", h.ContextLen, t.ContextLen())
	}
	if h.Symbols == 0 {
		return nil
	}
	packed, err := ioutil.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if h.Precision != 0 {
		opts = append(opts, WithPrecision(h.Precision))
	}
	data, err := DecodeContext(UnpackBits(packed), t, h.Symbols, opts...)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
