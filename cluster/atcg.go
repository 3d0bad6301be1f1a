package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// nucleotide maps the letters of a genome to the four symbols kept for measuring it.
// Anything else, such as line breaks and FASTA headers, is dropped.
func nucleotide(b byte) (byte, bool) {
	switch b {
	case 'a', 'A':
		return 'a', true
	case 't', 'T':
		return 't', true
	case 'c', 'C':
		return 'c', true
	case 'g', 'G':
		return 'g', true
	}
	return 0, false
}

// filterNucleotides copies the nucleotides of r to w.
func filterNucleotides(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "")
		}
		c, ok := nucleotide(b)
		if !ok {
			continue
		}
		if err := bw.WriteByte(c); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// prepareSequences writes the nucleotides of every file of data to dstDir, returning the new paths in the same order.
func prepareSequences(dstDir string, data []string) ([]string, error) {
	dsts := make([]string, len(data))
	var eg errgroup.Group
	for i, src := range data {
		i, src := i, src
		name := filepath.Base(src)
		dsts[i] = filepath.Join(dstDir, name[:len(name)-len(filepath.Ext(name))]+".atcg")
		eg.Go(func() error {
			r, err := os.Open(src)
			if err != nil {
				return errors.Wrap(err, "")
			}
			defer r.Close()
			w, err := os.Create(dsts[i])
			if err != nil {
				return errors.Wrap(err, "")
			}
			if err := filterNucleotides(w, r); err != nil {
				w.Close()
				return errors.Wrap(err, src)
			}
			if err := w.Close(); err != nil {
				return errors.Wrap(err, "")
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return dsts, nil
}
