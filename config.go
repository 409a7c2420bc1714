package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	simple_util "github.com/liserjrqlxue/simple-util"
	"github.com/spf13/viper"
)

const reasonRequired = "required option missing"

var (
	ex, _  = os.Executable()
	exPath = filepath.Dir(ex)
)

// sub directories of the output directory
const (
	qsubDirName  = "qsub"
	unzipDirName = "fastq_unzip"
	tagDirName   = "fastq_tag"
	bamDirName   = "bamfiles"
)

var runModes = map[string]bool{
	"sge":   true,
	"local": true,
	"dry":   true,
}

// Config holds every run parameter. It is built once by loadConfig and
// passed by value afterwards.
type Config struct {
	InputDir      string
	OutDir        string
	QsubDir       string
	Project       string
	Reference     string
	BarcodeLength int
	SpacerLength  int
	SpacerFilter  string

	Mode       string
	Queue      string
	SGEProject string
	Mem        string
	SubmitArgs string
	Threads    int
	CheckPair  bool
	LogFile    string

	Mate1Marker string
	Mate2Marker string
	Platform    string

	Python    string
	Extractor string
	Bwa       string
	Samtools  string
	Gunzip    string
	QsubCmd   string

	ToolFile string
	Tools    []Tool
}

func (cfg Config) UnzipDir() string { return filepath.Join(cfg.OutDir, unzipDirName) }
func (cfg Config) TagDir() string   { return filepath.Join(cfg.OutDir, tagDirName) }
func (cfg Config) BamDir() string   { return filepath.Join(cfg.OutDir, bamDirName) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("python", "python3")
	v.SetDefault("extract_barcodes", "extract_barcodes.py")
	v.SetDefault("bwa", "bwa")
	v.SetDefault("samtools", "samtools")
	v.SetDefault("gunzip", "gunzip")
	v.SetDefault("qsub_cmd", "qsub")
	v.SetDefault("mate1_marker", "R1")
	v.SetDefault("mate2_marker", "R2")
	v.SetDefault("platform", "ILLUMINA")
}

// loadConfig validates the merged flag/config-file values and discovers tool
// versions from loadedModules.
func loadConfig(v *viper.Viper, loadedModules string) (cfg Config, err error) {
	cfg = Config{
		InputDir:      v.GetString("input"),
		OutDir:        v.GetString("output"),
		QsubDir:       v.GetString("qsub"),
		Project:       v.GetString("project"),
		Reference:     v.GetString("reference"),
		BarcodeLength: v.GetInt("blen"),
		SpacerLength:  v.GetInt("slen"),
		SpacerFilter:  strings.ToUpper(v.GetString("sfilt")),

		Mode:       v.GetString("mode"),
		Queue:      v.GetString("queue"),
		SGEProject: v.GetString("sge-project"),
		Mem:        v.GetString("mem"),
		SubmitArgs: v.GetString("submit_args"),
		Threads:    v.GetInt("threads"),
		CheckPair:  v.GetBool("check-pair"),
		LogFile:    v.GetString("log"),

		Mate1Marker: v.GetString("mate1_marker"),
		Mate2Marker: v.GetString("mate2_marker"),
		Platform:    v.GetString("platform"),

		Python:    v.GetString("python"),
		Extractor: v.GetString("extract_barcodes"),
		Bwa:       v.GetString("bwa"),
		Samtools:  v.GetString("samtools"),
		Gunzip:    v.GetString("gunzip"),
		QsubCmd:   v.GetString("qsub_cmd"),

		ToolFile: v.GetString("tools"),
	}

	for _, opt := range []struct {
		name  string
		unset bool
	}{
		{"input", cfg.InputDir == ""},
		{"output", cfg.OutDir == ""},
		{"project", cfg.Project == ""},
		{"reference", cfg.Reference == ""},
		{"blen", !v.IsSet("blen")},
		{"slen", !v.IsSet("slen")},
	} {
		if opt.unset {
			return cfg, &ConfigurationError{Option: opt.name, Reason: reasonRequired}
		}
	}
	if cfg.BarcodeLength <= 0 {
		return cfg, &ConfigurationError{Option: "blen", Reason: "barcode length must be positive"}
	}
	if cfg.SpacerLength <= 0 {
		return cfg, &ConfigurationError{Option: "slen", Reason: "spacer length must be positive"}
	}
	if cfg.SpacerFilter != "" && (len(cfg.SpacerFilter) != 1 || !strings.Contains("ACGTN", cfg.SpacerFilter)) {
		return cfg, &ConfigurationError{Option: "sfilt", Reason: "spacer filter must be one of A,C,G,T,N, got " + cfg.SpacerFilter}
	}
	if !runModes[cfg.Mode] {
		return cfg, &ConfigurationError{Option: "mode", Reason: "unknown run mode " + cfg.Mode}
	}
	if cfg.Threads <= 0 {
		return cfg, &ConfigurationError{Option: "threads", Reason: "threads must be positive"}
	}
	if cfg.Mate1Marker == "" || cfg.Mate2Marker == "" || cfg.Mate1Marker == cfg.Mate2Marker {
		return cfg, &ConfigurationError{Option: "mate1_marker", Reason: "mate markers must be distinct and non-empty"}
	}

	info, statErr := os.Stat(cfg.InputDir)
	if statErr != nil {
		return cfg, &ConfigurationError{Option: "input", Reason: "input directory unavailable", Err: statErr}
	}
	if !info.IsDir() {
		return cfg, &ConfigurationError{Option: "input", Reason: cfg.InputDir + " is not a directory"}
	}

	if cfg.QsubDir == "" {
		cfg.QsubDir = filepath.Join(cfg.OutDir, qsubDirName)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.OutDir, "log")
	}
	if cfg.ToolFile == "" {
		cfg.ToolFile = filepath.Join(exPath, "etc", "tools.tsv")
	}
	// jobs run from the scheduler's cwd and the extractor from the tag dir,
	// so every path written into a job is absolute
	for _, path := range []struct {
		option string
		value  *string
	}{
		{"input", &cfg.InputDir},
		{"output", &cfg.OutDir},
		{"qsub", &cfg.QsubDir},
		{"log", &cfg.LogFile},
		{"tools", &cfg.ToolFile},
	} {
		abs, absErr := filepath.Abs(*path.value)
		if absErr != nil {
			return cfg, &ConfigurationError{Option: path.option, Reason: "absolute path of " + *path.value, Err: absErr}
		}
		*path.value = abs
	}
	if cfg.Extractor, err = resolveExtractor(cfg.Extractor); err != nil {
		return
	}

	cfg.Tools, err = loadTools(cfg.ToolFile, loadedModules)
	return
}

// resolveExtractor returns an absolute path for the barcode extraction
// script. A bare name is looked up next to the executable, in its script/
// dir, then in PATH.
func resolveExtractor(extractor string) (string, error) {
	if filepath.IsAbs(extractor) {
		return extractor, nil
	}
	if strings.ContainsRune(extractor, filepath.Separator) {
		return filepath.Abs(extractor)
	}
	for _, candidate := range []string{
		filepath.Join(exPath, extractor),
		filepath.Join(exPath, "script", extractor),
	} {
		if simple_util.FileExists(candidate) {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath(extractor); err == nil {
		return filepath.Abs(path)
	}
	return "", &ConfigurationError{Option: "extract_barcodes", Reason: "cannot find " + extractor + " next to the executable or in PATH"}
}

func isMissingOption(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr) && cfgErr.Reason == reasonRequired
}
