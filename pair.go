package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	gzip "github.com/klauspost/pgzip"
	simple_util "github.com/liserjrqlxue/simple-util"
)

type fqReader struct {
	file    *os.File
	reader  *gzip.Reader
	scanner *bufio.Scanner
}

func openFq(path string) (fq *fqReader, err error) {
	fq = &fqReader{}
	fq.file, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	var in io.Reader = fq.file
	if strings.HasSuffix(path, gzSuffix) {
		fq.reader, err = gzip.NewReader(fq.file)
		if err != nil {
			simple_util.DeferClose(fq.file)
			return nil, err
		}
		in = fq.reader
	}
	fq.scanner = bufio.NewScanner(in)
	return
}

func (fq *fqReader) Close() error {
	if fq.reader != nil {
		simple_util.DeferClose(fq.reader)
	}
	return fq.file.Close()
}

// readName returns the first record name without '@', comment and /1 /2 suffix.
func (fq *fqReader) readName() (string, error) {
	if !fq.scanner.Scan() {
		if err := fq.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return trimReadName(fq.scanner.Text()), nil
}

func trimReadName(header string) string {
	var name = strings.TrimPrefix(header, "@")
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	return strings.Split(name, "/")[0]
}

// checkMates compares the first read name of both mates.
func checkMates(fq1, fq2 string) error {
	var names [2]string
	for i, path := range []string{fq1, fq2} {
		fq, err := openFq(path)
		if err != nil {
			return &PairingError{Read1: fq1, Read2: fq2, Reason: "open " + path, Err: err}
		}
		names[i], err = fq.readName()
		simple_util.DeferClose(fq)
		if err != nil {
			return &PairingError{Read1: fq1, Read2: fq2, Reason: "read first record of " + path, Err: err}
		}
	}
	if names[0] != names[1] {
		return &PairingError{Read1: fq1, Read2: fq2, Reason: "read names differ: " + names[0] + " != " + names[1]}
	}
	return nil
}
