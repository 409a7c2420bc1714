package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	simple_util "github.com/liserjrqlxue/simple-util"
)

// Scheduler takes one composed job and returns its job id.
type Scheduler interface {
	Submit(job ComposedJob) (jid string, err error)
}

func newScheduler(cfg Config) Scheduler {
	switch cfg.Mode {
	case "local":
		return localScheduler{}
	case "dry":
		return dryScheduler{}
	default:
		return &sgeScheduler{
			qsub:       cfg.QsubCmd,
			logDir:     cfg.QsubDir,
			submitArgs: sgeSubmitArgs(cfg),
		}
	}
}

func sgeSubmitArgs(cfg Config) (submitArgs []string) {
	if cfg.Queue != "" {
		submitArgs = append(submitArgs, "-q", cfg.Queue)
	}
	if cfg.SGEProject != "" {
		submitArgs = append(submitArgs, "-P", cfg.SGEProject)
	}
	var resource = fmt.Sprintf("p=%d", cfg.Threads)
	if cfg.Mem != "" {
		resource = "vf=" + cfg.Mem + "G," + resource
	}
	submitArgs = append(submitArgs, "-l", resource)
	if extra := strings.TrimSpace(cfg.SubmitArgs); extra != "" {
		submitArgs = append(submitArgs, sep.Split(extra, -1)...)
	}
	return
}

type sgeScheduler struct {
	qsub       string
	logDir     string
	submitArgs []string
}

var sep = regexp.MustCompile(`\s+`)

var sgeJobID = regexp.MustCompile(`Your job(?:-array)? (\d+)`)

func (s *sgeScheduler) Submit(job ComposedJob) (jid string, err error) {
	var args = append([]string{}, s.submitArgs...)
	args = append(args, "-N", sgeJobName(job.SampleName), "-o", s.logDir, "-e", s.logDir, job.Script)
	var c = exec.Command(s.qsub, args...)
	output, err := c.CombinedOutput()
	if err != nil {
		return "", &SubmissionError{SampleName: job.SampleName, Script: job.Script, Output: string(output), Err: err}
	}
	if m := sgeJobID.FindStringSubmatch(string(output)); m != nil {
		return m[1], nil
	}
	jid = strings.TrimSpace(string(output))
	if jid == "" {
		return "", &SubmissionError{SampleName: job.SampleName, Script: job.Script, Output: "empty qsub response"}
	}
	return
}

var (
	sgeNameUnsafe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	sgeNameStart  = regexp.MustCompile(`^[A-Za-z]`)
)

// sgeJobName makes a sample name acceptable to qsub -N, which wants a
// leading letter and no shell or path characters.
func sgeJobName(sampleName string) string {
	var name = sgeNameUnsafe.ReplaceAllString(sampleName, "_")
	if !sgeNameStart.MatchString(name) {
		name = "TA_" + name
	}
	return name
}

// localScheduler runs the job in the foreground, one sample after another.
type localScheduler struct{}

func (localScheduler) Submit(job ComposedJob) (string, error) {
	logger.Infof("Run Job[%s]:%s", job.SampleName, job.Script)
	if err := simple_util.RunCmd("bash", job.Script); err != nil {
		return "", &SubmissionError{SampleName: job.SampleName, Script: job.Script, Err: err}
	}
	return "local:" + job.SampleName, nil
}

type dryScheduler struct{}

func (dryScheduler) Submit(job ComposedJob) (string, error) {
	return "dry:" + job.SampleName, nil
}

// createDir makes every directory in dirList; existing ones are left alone.
func createDir(dirList ...string) error {
	for _, dir := range dirList {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// createShell writes the job script, replacing any previous one.
func createShell(job ComposedJob) error {
	file, err := os.OpenFile(job.Script, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	_, err = file.WriteString(job.Text())
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return err
}

type submitRecord struct {
	SampleName string
	Script     string
	JobID      string
}

func writeSubmitList(path string, records []submitRecord) error {
	var sb strings.Builder
	sb.WriteString("sampleID\tscript\tjobID\n")
	for _, record := range records {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", record.SampleName, record.Script, record.JobID)
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

func submitListPath(cfg Config) string {
	return filepath.Join(cfg.QsubDir, "submit.list")
}
