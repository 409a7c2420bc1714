package main

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// read group ID, fixed within a job
const readGroupID = "1"

// ComposeJob builds the ordered step list of one sample. It only builds
// text; nothing is executed or checked on disk.
func ComposeJob(unit SampleUnit, cfg Config) (job ComposedJob, err error) {
	switch {
	case unit.SampleName == "":
		return job, &CompositionError{Reason: "empty sample name"}
	case unit.Read1 == "" || unit.Read2 == "":
		return job, &CompositionError{SampleName: unit.SampleName, Reason: "missing read path"}
	case unit.Lane == "" || unit.BarcodeIndex == "":
		return job, &CompositionError{SampleName: unit.SampleName, Reason: "unresolved lane or barcode index"}
	}

	job = ComposedJob{
		SampleName: unit.SampleName,
		Script:     filepath.Join(cfg.QsubDir, unit.SampleName+".sh"),
	}
	var add = func(name string, args ...string) {
		job.Steps = append(job.Steps, Step{Name: name, Command: strings.Join(args, " ")})
	}

	for _, tool := range cfg.Tools {
		add(StepEnv, "module", "load", shellQuote(tool.ModuleID()))
	}

	var fq1, fq2 = unit.Read1, unit.Read2
	var unzipped []string
	if unit.Compressed {
		fq1 = unzipPath(cfg, unit.Read1)
		fq2 = unzipPath(cfg, unit.Read2)
		add(StepDecompress, shellQuote(cfg.Gunzip), "-c", shellQuote(unit.Read1), ">", shellQuote(fq1))
		add(StepDecompress, shellQuote(cfg.Gunzip), "-c", shellQuote(unit.Read2), ">", shellQuote(fq2))
		unzipped = []string{fq1, fq2}
	}

	var (
		tagDir = cfg.TagDir()
		prefix = filepath.Join(tagDir, unit.SampleName)
		tag1   = prefix + "_barcode_R1.fastq"
		tag2   = prefix + "_barcode_R2.fastq"
		sam    = filepath.Join(cfg.BamDir(), unit.SampleName+".sam")
		bam    = filepath.Join(cfg.BamDir(), unit.SampleName+".sorted.bam")
	)

	// the extractor writes its stats into the working directory, so it runs
	// in a subshell rooted at the tag directory
	var extract = []string{
		"(", "cd", shellQuote(tagDir), "&&",
		shellQuote(cfg.Python), shellQuote(cfg.Extractor),
		"--read1", shellQuote(fq1),
		"--read2", shellQuote(fq2),
		"--outfile", shellQuote(prefix),
		"--blen", strconv.Itoa(cfg.BarcodeLength),
		"--slen", strconv.Itoa(cfg.SpacerLength),
	}
	if cfg.SpacerFilter != "" {
		extract = append(extract, "--sfilt", cfg.SpacerFilter)
	}
	add(StepExtract, append(extract, ")")...)

	add(StepAlign,
		shellQuote(cfg.Bwa), "mem", "-M", "-t"+strconv.Itoa(cfg.Threads),
		"-R", shellQuote(readGroup(unit, cfg)),
		shellQuote(cfg.Reference), shellQuote(tag1), shellQuote(tag2),
		">", shellQuote(sam),
	)
	add(StepSort,
		shellQuote(cfg.Samtools), "view", "-bhS", shellQuote(sam), "|",
		shellQuote(cfg.Samtools), "sort", "-@"+strconv.Itoa(cfg.Threads), "-o", shellQuote(bam), "-",
	)
	add(StepIndex, shellQuote(cfg.Samtools), "index", shellQuote(bam))

	add(StepCleanup, "rm", "-f", shellQuote(sam))
	for _, fq := range unzipped {
		add(StepCleanup, "rm", "-f", shellQuote(fq))
	}
	return
}

// readGroup encodes the SAM @RG line; tabs stay escaped for bwa -R.
func readGroup(unit SampleUnit, cfg Config) string {
	return strings.Join([]string{
		"@RG",
		"ID:" + readGroupID,
		"SM:" + unit.SampleName,
		"PL:" + cfg.Platform,
		"PU:" + unit.PU(),
		"LB:" + cfg.Project,
	}, `\t`)
}

func unzipPath(cfg Config, path string) string {
	return filepath.Join(cfg.UnzipDir(), strings.TrimSuffix(filepath.Base(path), gzSuffix))
}

// Text renders the job as a bash script. Identical jobs render identical bytes.
func (job ComposedJob) Text() string {
	var sb strings.Builder
	sb.WriteString("#!/bin/bash\nset -eo pipefail\n")
	var last string
	for _, step := range job.Steps {
		if step.Name != last {
			fmt.Fprintf(&sb, "\n# %s\n", step.Name)
			last = step.Name
		}
		sb.WriteString(step.Command)
		sb.WriteByte('\n')
	}
	return sb.String()
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9_./:=@%+,-]+$`)

func shellQuote(s string) string {
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
