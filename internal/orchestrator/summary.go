package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/maxkimambo/cbci/internal/cluster"
	"github.com/maxkimambo/cbci/internal/taskmanager"
	"github.com/maxkimambo/cbci/internal/utils"
)

// BuildResult is the outcome of one repository build.
type BuildResult struct {
	Repository string
	Dir        string
	ExitCode   int
	Duration   time.Duration
	Status     taskmanager.TaskStatus
	Err        error
}

func (b *BuildResult) String() string {
	switch b.Status {
	case taskmanager.StatusSucceeded:
		return b.Repository + " ok"
	case taskmanager.StatusSkipped:
		return b.Repository + " skipped"
	}
	if b.ExitCode != 0 {
		return fmt.Sprintf("%s exit %d", b.Repository, b.ExitCode)
	}
	return b.Repository + " error"
}

// VersionResult is what happened for one requested version.
type VersionResult struct {
	Version string
	Cluster *cluster.Cluster
	Builds  []*BuildResult
	// Warnings are tolerated failures: setup, REST calls, teardown.
	Warnings []error
	TornDown bool
	// Err is the fatal error that ended the cycle, if any.
	Err      error
	Duration time.Duration
}

func (v *VersionResult) build(repo string) *BuildResult {
	for _, b := range v.Builds {
		if b.Repository == repo {
			return b
		}
	}
	b := &BuildResult{Repository: repo}
	v.Builds = append(v.Builds, b)
	return b
}

// collect copies task outcomes from the workflow report.
func (v *VersionResult) collect(report *taskmanager.Report) {
	if report == nil {
		return
	}
	for _, res := range report.Results {
		if repo, ok := strings.CutPrefix(res.ID, "build:"); ok {
			b := v.build(repo)
			b.Status = res.Status
			b.Err = res.Err
		}
	}
	for _, res := range report.Failed() {
		if !isFatalTask(res.ID) && !strings.HasPrefix(res.ID, "build:") {
			v.Warnings = append(v.Warnings, fmt.Errorf("%s: %w", res.ID, res.Err))
		}
	}
}

func isFatalTask(id string) bool {
	return id == TaskWorkspace || id == TaskAllocate || id == TaskAddress ||
		strings.HasPrefix(id, "clone:") || strings.HasPrefix(id, "properties:")
}

// FailedBuilds lists builds that did not succeed.
func (v *VersionResult) FailedBuilds() []string {
	var failed []string
	for _, b := range v.Builds {
		if b.Status != taskmanager.StatusSucceeded {
			failed = append(failed, b.Repository)
		}
	}
	return failed
}

// Status is a one-word verdict for the summary table.
func (v *VersionResult) Status() string {
	switch {
	case v.Err != nil:
		return "FAILED"
	case len(v.FailedBuilds()) > 0:
		return "BUILD FAILURES"
	case len(v.Warnings) > 0:
		return "PASSED (warnings)"
	default:
		return "PASSED"
	}
}

// Summary covers a whole run.
type Summary struct {
	Results []*VersionResult
	// Skipped versions were never started because an earlier one failed fatally.
	Skipped  []string
	Duration time.Duration
}

// FailedBuilds returns "version/repository" for every build that did not succeed.
func (s *Summary) FailedBuilds() []string {
	var failed []string
	for _, r := range s.Results {
		for _, repo := range r.FailedBuilds() {
			failed = append(failed, r.Version+"/"+repo)
		}
	}
	return failed
}

// Table renders one row per version.
func (s *Summary) Table() string {
	table := utils.NewTableFormatter([]string{"Version", "Cluster", "Address", "Builds", "Status"})
	for _, r := range s.Results {
		id, address := "-", "-"
		if r.Cluster != nil {
			id = orDash(r.Cluster.ID)
			address = orDash(r.Cluster.Address)
		}
		builds := make([]string, 0, len(r.Builds))
		for _, b := range r.Builds {
			builds = append(builds, b.String())
		}
		table.AddRow([]string{r.Version, id, address, orDash(strings.Join(builds, ", ")), r.Status()})
	}
	for _, v := range s.Skipped {
		table.AddRow([]string{v, "-", "-", "-", "SKIPPED"})
	}
	return table.String()
}

// Render returns the summary in a message box coloured by the overall outcome.
func (s *Summary) Render() string {
	kind := utils.SuccessMessage
	title := fmt.Sprintf("Integration run finished in %s", s.Duration.Round(time.Second))
	if len(s.FailedBuilds()) > 0 {
		kind = utils.WarningMessage
	}
	for _, r := range s.Results {
		if r.Err != nil {
			kind = utils.ErrorMessage
			title = fmt.Sprintf("Integration run stopped at version %s", r.Version)
		}
	}

	box := utils.NewBox(kind, title)
	for _, line := range strings.Split(strings.TrimRight(s.Table(), "\n"), "\n") {
		box.AddRaw(line)
	}
	if failed := s.FailedBuilds(); len(failed) > 0 {
		box.AddLine("Failed builds: " + strings.Join(failed, ", "))
	}
	for _, r := range s.Results {
		for _, w := range r.Warnings {
			box.AddBullet(fmt.Sprintf("%s: %v", r.Version, firstLine(w.Error())))
		}
		if r.Cluster != nil && r.Cluster.ID != "" && !r.TornDown {
			box.AddBullet(fmt.Sprintf("cluster %s is still allocated", r.Cluster.ID))
		}
	}
	return box.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
