package main

import (
	"path/filepath"

	simple_util "github.com/liserjrqlxue/simple-util"
)

// prepare creates the shared output directories before any job is written.
// fastq_unzip is left to prepareUnzip so it only exists when needed.
func prepare(cfg Config) error {
	if err := createDir(cfg.OutDir, cfg.QsubDir, cfg.TagDir(), cfg.BamDir()); err != nil {
		return &ConfigurationError{Option: "output", Reason: "create output directories", Err: err}
	}
	return nil
}

func prepareUnzip(cfg Config) error {
	if err := createDir(cfg.UnzipDir()); err != nil {
		return &ConfigurationError{Option: "output", Reason: "create " + unzipDirName, Err: err}
	}
	return nil
}

// saveToolTable keeps a copy of the tool table next to the results.
func saveToolTable(cfg Config) {
	var dst = filepath.Join(cfg.OutDir, "tools.tsv")
	src, _ := filepath.Abs(cfg.ToolFile)
	abs, _ := filepath.Abs(dst)
	if src == abs {
		return
	}
	simple_util.CheckErr(simple_util.CopyFile(dst, cfg.ToolFile))
}
