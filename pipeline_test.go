package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeQsub(t *testing.T, body string) string {
	t.Helper()
	var path = filepath.Join(t.TempDir(), "qsub")
	if err := os.WriteFile(path, []byte("#!/bin/bash\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreateDirIdempotent(t *testing.T) {
	var cfg = testConfig(filepath.Join(t.TempDir(), "out"))
	for i := 0; i < 2; i++ {
		if err := prepare(cfg); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	for _, dir := range []string{cfg.QsubDir, cfg.TagDir(), cfg.BamDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}
	if _, err := os.Stat(cfg.UnzipDir()); !os.IsNotExist(err) {
		t.Errorf("%s created before it is needed", cfg.UnzipDir())
	}
	for i := 0; i < 2; i++ {
		if err := prepareUnzip(cfg); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCreateShell(t *testing.T) {
	var cfg = testConfig(t.TempDir())
	cfg.QsubDir = cfg.OutDir
	job, err := ComposeJob(plainUnit, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err = createShell(job); err != nil {
			t.Fatal(err)
		}
	}
	b, err := os.ReadFile(job.Script)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != job.Text() {
		t.Errorf("script content differs from job text")
	}
	info, _ := os.Stat(job.Script)
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("script not executable: %v", info.Mode())
	}
}

func TestSGESubmitArgs(t *testing.T) {
	var cfg = testConfig("/out")
	cfg.Queue = "bc.q"
	cfg.SGEProject = "P18Z"
	cfg.Mem = "8"
	cfg.SubmitArgs = " -cwd  -V "
	var got = strings.Join(sgeSubmitArgs(cfg), " ")
	if got != "-q bc.q -P P18Z -l vf=8G,p=4 -cwd -V" {
		t.Errorf("got %q", got)
	}
}

func TestSGESubmit(t *testing.T) {
	var argsFile = filepath.Join(t.TempDir(), "args")
	var s = &sgeScheduler{
		qsub:       fakeQsub(t, `echo "$@" > `+argsFile+`; echo 'Your job 4242 ("S1_L001") has been submitted'`),
		logDir:     "/out/qsub",
		submitArgs: []string{"-l", "p=4"},
	}
	var job = ComposedJob{SampleName: "S1_L001", Script: "/out/qsub/S1_L001.sh"}
	jid, err := s.Submit(job)
	if err != nil {
		t.Fatal(err)
	}
	if jid != "4242" {
		t.Errorf("jid %q", jid)
	}
	args, _ := os.ReadFile(argsFile)
	if strings.TrimSpace(string(args)) != "-l p=4 -N S1_L001 -o /out/qsub -e /out/qsub /out/qsub/S1_L001.sh" {
		t.Errorf("qsub args %q", args)
	}
}

func TestSGEJobName(t *testing.T) {
	for in, want := range map[string]string{
		"S1_L001":          "S1_L001",
		"1001_S1_L001":     "TA_1001_S1_L001",
		"_S1_L001":         "TA__S1_L001",
		"Tumor:A/B_S1_L01": "Tumor_A_B_S1_L01",
	} {
		if got := sgeJobName(in); got != want {
			t.Errorf("sgeJobName(%q) = %q, want %q", in, got, want)
		}
	}

	var argsFile = filepath.Join(t.TempDir(), "args")
	var s = &sgeScheduler{
		qsub:   fakeQsub(t, `echo "$@" > `+argsFile+`; echo 'Your job 5 ("x") has been submitted'`),
		logDir: "/out/qsub",
	}
	if _, err := s.Submit(ComposedJob{SampleName: "1001_S1_L001", Script: "/out/qsub/1001_S1_L001.sh"}); err != nil {
		t.Fatal(err)
	}
	args, _ := os.ReadFile(argsFile)
	if strings.TrimSpace(string(args)) != "-N TA_1001_S1_L001 -o /out/qsub -e /out/qsub /out/qsub/1001_S1_L001.sh" {
		t.Errorf("qsub args %q", args)
	}
}

func TestSGESubmitError(t *testing.T) {
	var s = &sgeScheduler{qsub: fakeQsub(t, "echo 'Unable to run job: denied' >&2; exit 1"), logDir: "/tmp"}
	_, err := s.Submit(ComposedJob{SampleName: "S1_L001", Script: "/tmp/S1_L001.sh"})
	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("want SubmissionError, got %v", err)
	}
	if !strings.Contains(subErr.Error(), "denied") {
		t.Errorf("qsub output lost: %v", subErr)
	}
}

func TestLocalSubmit(t *testing.T) {
	var dir = t.TempDir()
	var job = ComposedJob{
		SampleName: "S1",
		Script:     filepath.Join(dir, "S1.sh"),
		Steps:      []Step{{Name: StepIndex, Command: "touch " + filepath.Join(dir, "done")}},
	}
	if err := createShell(job); err != nil {
		t.Fatal(err)
	}
	jid, err := localScheduler{}.Submit(job)
	if err != nil {
		t.Fatal(err)
	}
	if jid != "local:S1" {
		t.Errorf("jid %q", jid)
	}
	if _, err = os.Stat(filepath.Join(dir, "done")); err != nil {
		t.Errorf("script not run: %v", err)
	}
}

func TestWriteSubmitList(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "submit.list")
	err := writeSubmitList(path, []submitRecord{{SampleName: "S1_L001", Script: "/q/S1_L001.sh", JobID: "7"}})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "sampleID\tscript\tjobID\nS1_L001\t/q/S1_L001.sh\t7\n" {
		t.Errorf("got %q", b)
	}
}
