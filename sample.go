package main

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// lane fields look like L001: a literal L followed by digits
var lanePattern = regexp.MustCompile(`^L\d+$`)

const gzSuffix = ".gz"

// Resolver walks the mate-1 files of one directory listing. Each call to
// Scan advances to the next mate-1 file; Sample resolves it.
type Resolver struct {
	dir       string
	mate1     *regexp.Regexp
	mate2     string
	checkPair bool
	names     []string
	skipped   []string
	seen      map[string]string
	pos       int
}

// NewResolver lists dir once. The listing order (sorted by name) is the
// order samples are returned in.
func NewResolver(dir, mate1Marker, mate2Marker string, checkPair bool) (*Resolver, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ConfigurationError{Option: "input", Reason: "list input directory", Err: err}
	}
	var r = &Resolver{
		dir:       dir,
		mate1:     mateRegexp(mate1Marker),
		mate2:     mate2Marker,
		checkPair: checkPair,
		seen:      make(map[string]string),
		pos:       -1,
	}
	var marker = "_" + mate1Marker
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if r.mate1.MatchString(entry.Name()) {
			r.names = append(r.names, entry.Name())
		} else if strings.Contains(entry.Name(), marker) {
			r.skipped = append(r.skipped, entry.Name())
			logger.Warningf("skip %s: contains %s but is not {sample}%s[_NNN].fastq|fq[.gz]", entry.Name(), marker, marker)
		}
	}
	return r, nil
}

// mateRegexp matches {stem}_{marker}[_NNN].{fastq|fq}[.gz], the optional
// _NNN being the Illumina chunk number kept in the suffix.
func mateRegexp(marker string) *regexp.Regexp {
	return regexp.MustCompile(`^(.+)_` + regexp.QuoteMeta(marker) + `((?:_\d{3})?\.(?:fastq|fq)(?:\.gz)?)$`)
}

// Skipped lists file names holding the mate-1 marker that were not selected.
func (r *Resolver) Skipped() []string {
	return r.skipped
}

func (r *Resolver) Scan() bool {
	if r.pos >= len(r.names) {
		return false
	}
	r.pos++
	return r.pos < len(r.names)
}

// Name is the mate-1 file name under the cursor.
func (r *Resolver) Name() string {
	if r.pos < 0 || r.pos >= len(r.names) {
		return ""
	}
	return r.names[r.pos]
}

// Sample resolves the mate-1 file under the cursor.
func (r *Resolver) Sample() (unit SampleUnit, err error) {
	var name = r.Name()
	var m = r.mate1.FindStringSubmatch(name)
	if m == nil {
		return unit, &PairingError{Read1: name, Reason: "not a mate-1 file"}
	}
	var stem, ext = m[1], m[2]
	if first, ok := r.seen[stem]; ok {
		return unit, &DuplicateSampleError{SampleName: stem, First: first, Second: name}
	}

	unit.SampleName = stem
	unit.Read1 = filepath.Join(r.dir, name)
	unit.Read2 = filepath.Join(r.dir, stem+"_"+r.mate2+ext)
	unit.Compressed = strings.HasSuffix(name, gzSuffix)

	if info, statErr := os.Stat(unit.Read2); statErr != nil {
		return unit, &PairingError{Read1: unit.Read1, Read2: unit.Read2, Reason: "mate-2 file missing", Err: statErr}
	} else if info.IsDir() {
		return unit, &PairingError{Read1: unit.Read1, Read2: unit.Read2, Reason: "mate-2 path is a directory"}
	}

	unit.Lane, unit.BarcodeIndex, err = parseSampleName(stem)
	if err != nil {
		return
	}

	if r.checkPair {
		if err = checkMates(unit.Read1, unit.Read2); err != nil {
			return
		}
	}
	r.seen[stem] = name
	return
}

// parseSampleName splits a sample name on "_" and returns the single lane
// field together with the field right before it. Input naming must follow
// {...}_{barcodeIndex}_{lane}[_...]; anything else is a resolution error.
func parseSampleName(sampleName string) (lane, barcodeIndex string, err error) {
	var fields = strings.Split(sampleName, "_")
	var laneIdx = -1
	var matches []string
	for i, field := range fields {
		if lanePattern.MatchString(field) {
			laneIdx = i
			matches = append(matches, field)
		}
	}
	if len(matches) != 1 {
		return "", "", &LaneResolutionError{SampleName: sampleName, Matches: matches}
	}
	lane = fields[laneIdx]
	if laneIdx == 0 || fields[laneIdx-1] == "" {
		return lane, "", &BarcodeResolutionError{SampleName: sampleName, Lane: lane}
	}
	return lane, fields[laneIdx-1], nil
}
