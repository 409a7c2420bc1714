package main

// SampleUnit is one paired-end sample resolved from the input directory.
type SampleUnit struct {
	SampleName   string
	Read1        string
	Read2        string
	Lane         string
	BarcodeIndex string
	Compressed   bool
}

// platform unit for the read group
func (unit SampleUnit) PU() string {
	return unit.BarcodeIndex + "." + unit.Lane
}

type Tool struct {
	Name    string
	Module  string
	Version string
}

func (tool Tool) ModuleID() string {
	return tool.Module + "/" + tool.Version
}

const (
	StepEnv        = "env"
	StepDecompress = "decompress"
	StepExtract    = "extract"
	StepAlign      = "align"
	StepSort       = "sort"
	StepIndex      = "index"
	StepCleanup    = "cleanup"
)

type Step struct {
	Name    string
	Command string
}

// ComposedJob is built once by ComposeJob and handed to a Scheduler as is.
type ComposedJob struct {
	SampleName string
	Script     string
	Steps      []Step
}

// StepsNamed returns the steps of the given kind in job order.
func (job ComposedJob) StepsNamed(name string) (steps []Step) {
	for _, step := range job.Steps {
		if step.Name == name {
			steps = append(steps, step)
		}
	}
	return
}
