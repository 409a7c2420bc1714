package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	simple_util "github.com/liserjrqlxue/simple-util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exit status
const (
	exitOK         = 0
	exitConfig     = 1
	exitSampleFail = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newRootCmd(v *viper.Viper, stdout io.Writer, code *int, helped *bool) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "TagAlign -i fastq_dir -o outdir -p project -r ref.fa -b blen -s slen",
		Short: "extract barcodes, align and sort paired fastq, one SGE job per sample",
		Long: `TagAlign scans a directory for {sample}_R1.fastq[.gz]/{sample}_R2.fastq[.gz]
pairs and writes one job script per sample that unzips the reads if needed,
extracts the molecular barcodes, aligns with bwa mem, sorts and indexes the bam
and removes the intermediates. Each script is submitted on its own.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile := v.GetString("config"); cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return &ConfigurationError{Option: "config", Reason: "read config file", Err: err}
				}
			}
			cfg, err := loadConfig(v, os.Getenv("LOADEDMODULES"))
			if err != nil {
				return err
			}
			*code, err = runPipeline(cfg, stdout)
			return err
		},
	}
	// help still ends with a non-zero status
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		*helped = true
		simple_util.CheckErr(c.Usage())
	})

	var flags = cmd.Flags()
	flags.StringP("input", "i", "", "input directory of paired fastq files (required)")
	flags.StringP("output", "o", "", "output directory (required)")
	flags.StringP("project", "p", "", "project name, used as read group library (required)")
	flags.StringP("reference", "r", "", "bwa indexed reference fasta (required)")
	flags.IntP("blen", "b", 0, "barcode length (required)")
	flags.IntP("slen", "s", 0, "spacer length (required)")
	flags.StringP("sfilt", "f", "", "spacer filter base, omitted from extraction when empty")
	flags.StringP("qsub", "q", "", "job script directory (default outdir/qsub)")
	flags.String("tools", "", "tool table: name, module, version (default exe dir/etc/tools.tsv)")
	flags.StringP("config", "c", "", "config file, any flag may be set there too")
	flags.String("mode", "sge", "run mode:[sge|local|dry]")
	flags.String("queue", "", "queue for SGE(-q)")
	flags.String("sge-project", "", "project for SGE(-P)")
	flags.String("mem", "8", "memory in G for SGE(-l vf=)")
	flags.Int("threads", 4, "threads for bwa/samtools and SGE(-l p=)")
	flags.Bool("check-pair", false, "compare the first read name of both mates")
	flags.String("log", "", "output log file (default outdir/log)")
	simple_util.CheckErr(v.BindPFlags(flags))
	return cmd
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		v      = viper.New()
		code   = exitOK
		helped bool
	)
	setDefaults(v)
	var cmd = newRootCmd(v, stdout, &code, &helped)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if isMissingOption(err) {
			simple_util.CheckErr(cmd.Usage())
		}
		return exitConfig
	}
	if helped {
		return exitConfig
	}
	return code
}

// runPipeline resolves the samples of cfg.InputDir in listing order and
// submits one job per sample. Sample failures are logged and skipped.
func runPipeline(cfg Config, stdout io.Writer) (code int, err error) {
	if err = prepare(cfg); err != nil {
		return exitConfig, err
	}
	logF, err := os.Create(cfg.LogFile)
	simple_util.CheckErr(err)
	defer simple_util.DeferClose(logF)
	setLogBackend(logF)
	defer setLogBackend(nil)
	logger.Infof("Log file:%s", cfg.LogFile)
	for _, tool := range cfg.Tools {
		logger.Infof("Tool[%-8s]:%s", tool.Name, tool.ModuleID())
	}
	saveToolTable(cfg)

	resolver, err := NewResolver(cfg.InputDir, cfg.Mate1Marker, cfg.Mate2Marker, cfg.CheckPair)
	if err != nil {
		return exitConfig, err
	}
	var (
		scheduler  = newScheduler(cfg)
		records    []submitRecord
		summary    []string
		failed     int
		unzipReady bool
	)
	for resolver.Scan() {
		unit, resolveErr := resolver.Sample()
		if resolveErr != nil {
			failed++
			logger.Errorf("skip %s: %v", resolver.Name(), resolveErr)
			continue
		}
		job, composeErr := ComposeJob(unit, cfg)
		if composeErr != nil {
			return exitConfig, composeErr
		}
		if unit.Compressed && !unzipReady {
			if err = prepareUnzip(cfg); err != nil {
				return exitConfig, err
			}
			unzipReady = true
		}
		if writeErr := createShell(job); writeErr != nil {
			failed++
			logger.Errorf("skip %s: write %s: %v", unit.SampleName, job.Script, writeErr)
			continue
		}
		jid, submitErr := scheduler.Submit(job)
		if submitErr != nil {
			failed++
			logger.Errorf("%v", submitErr)
			continue
		}
		logger.Infof("Job[%s] -> %s", unit.SampleName, jid)
		records = append(records, submitRecord{SampleName: unit.SampleName, Script: job.Script, JobID: jid})
		summary = append(summary, strings.Join([]string{unit.SampleName, unit.Lane, unit.BarcodeIndex, jid}, "\t"))
	}
	if err = writeSubmitList(submitListPath(cfg), records); err != nil {
		logger.Errorf("write %s: %v", submitListPath(cfg), err)
	}

	fmt.Fprintln(stdout, strings.Join([]string{"sampleID", "lane", "barcode", "jobID"}, "\t"))
	for _, line := range summary {
		fmt.Fprintln(stdout, line)
	}
	logger.Infof("submitted:%d failed:%d", len(records), failed)
	if failed > 0 {
		return exitSampleFail, nil
	}
	return exitOK, nil
}
