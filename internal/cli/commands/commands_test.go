package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logweave/pkg/config"
	"github.com/ccollicutt/logweave/pkg/output"
	"github.com/ccollicutt/logweave/pkg/project"
	"github.com/ccollicutt/logweave/pkg/scenario"
)

const ascLog = `2022-09-28T20:00:00.000Z a one
2022-09-28T20:01:00.000Z a two
2022-09-28T20:01:00.000Z a three`

const descLog = `2022-09-28T20:01:00.000Z b one
2022-09-28T20:01:00.000Z b two
2022-09-28T20:00:00.000Z b three`

const scenarioLog = `2022-09-28T20:00:00.000Z [Scenario]login [step](1)open page
2022-09-28T20:00:01.000Z [Scenario]login [step](2)submit
2022-09-28T20:00:02.000Z [Scenario]checkout [step](1)pay`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// workspace writes a.log, b.log and a config selecting both through a glob.
func workspace(t *testing.T, extra string) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "a.log"), ascLog)
	writeFile(t, filepath.Join(dir, "b.log"), descLog)

	configPath = filepath.Join(dir, "logweave.yaml")
	writeFile(t, configPath, "files:\n  - path: \"*.log\"\n"+extra)
	return dir, configPath
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return out.String(), err
}

func TestNewViewCommand(t *testing.T) {
	cmd := NewViewCommand()
	assert.Equal(t, "view <config-file>", cmd.Use)

	flags := []string{
		"output", "sort", "direction", "hide-unmatched", "filter", "start", "end",
		"timezone-file", "quiet", "verbose", "metrics-file", "display-timezone", "show-original-date",
	}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestRunView_Text(t *testing.T) {
	_, configPath := workspace(t, "")

	out, err := execute(t, NewViewCommand(), configPath)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "[a.log] 09/28/2022 20:01:00.000 GMT a three", lines[0])
	assert.Equal(t, "[a.log] 09/28/2022 20:01:00.000 GMT a two", lines[1])
	assert.Equal(t, "[b.log] 09/28/2022 20:01:00.000 GMT b one", lines[2])
	assert.Equal(t, "[b.log] 09/28/2022 20:00:00.000 GMT b three", lines[5])
	assert.Contains(t, out, "Summary: 6 lines shown from 2 of 2 files")
	assert.Contains(t, out, "Activity (GMT):")
}

func TestRunView_JSONByFile(t *testing.T) {
	_, configPath := workspace(t, "")

	out, err := execute(t, NewViewCommand(), "--output", "json", "--sort", "file", "--direction", "asc", configPath)
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Lines, 6)
	assert.Equal(t, "a.log", report.Lines[0].File)
	assert.Equal(t, 1, report.Lines[0].Sequence)
	assert.Equal(t, "b.log", report.Lines[5].File)
	assert.Equal(t, 3, report.Lines[5].Sequence)
}

func TestRunView_FilterFlags(t *testing.T) {
	_, configPath := workspace(t, "filters:\n  - pattern: two\n")

	out, err := execute(t, NewViewCommand(), "--output", "json", "--filter", "three", "--hide-unmatched", configPath)
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Filters, 2)
	assert.Equal(t, "two", report.Filters[0].Pattern)
	assert.Equal(t, 2, report.Filters[0].HitCount)
	assert.Equal(t, "three", report.Filters[1].Pattern)
	assert.Equal(t, 2, report.Filters[1].HitCount)
	assert.Len(t, report.Lines, 4)
}

func TestRunView_ProjectFilters(t *testing.T) {
	dir, configPath := workspace(t, "project: filters.tat\n")
	require.NoError(t, project.Save(filepath.Join(dir, "filters.tat"), &project.Project{
		Settings: project.DefaultSettings(),
		Filters:  nil,
	}))

	_, err := execute(t, NewViewCommand(), "--quiet", configPath)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "filters.tat"), "<not xml")
	_, err = execute(t, NewViewCommand(), "--quiet", configPath)
	assert.ErrorContains(t, err, "loading project")
}

func TestRunView_Quiet(t *testing.T) {
	dir, configPath := workspace(t, "")
	writeFile(t, filepath.Join(dir, "copy.log"), ascLog)

	out, err := execute(t, NewViewCommand(), "--quiet", configPath)
	require.NoError(t, err)
	assert.Equal(t, "logweave: 6 lines shown from 3 files, 3 duplicates dropped, 0 dateless lines dropped\n", out)
}

func TestRunView_DateRange(t *testing.T) {
	_, configPath := workspace(t, "")

	out, err := execute(t, NewViewCommand(), "--quiet", "--start", "2022-09-28T20:00:30Z", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "4 lines shown")
}

func TestRunView_TimezoneFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "us.log"), "9/12/2022 11:15:00 PM,INFO,first\n9/12/2022 11:16:00 PM,INFO,second")
	configPath := filepath.Join(dir, "logweave.yaml")
	writeFile(t, configPath, "files:\n  - path: us.log\n")

	out, err := execute(t, NewViewCommand(), "--timezone-file", "us.log=-5", "--direction", "asc", configPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[us.log] 09/13/2022 04:15:00.000 GMT ,INFO,first\n"), out)

	_, err = execute(t, NewViewCommand(), "--timezone-file", "us.log", configPath)
	assert.ErrorContains(t, err, "name=hours")

	_, err = execute(t, NewViewCommand(), "--timezone-file", "us.log=20", configPath)
	assert.ErrorContains(t, err, "between")
}

func TestRunView_Errors(t *testing.T) {
	_, configPath := workspace(t, "")

	_, err := execute(t, NewViewCommand(), "--sort", "size", configPath)
	assert.ErrorContains(t, err, "sort_by")

	_, err = execute(t, NewViewCommand(), "--output", "xml", configPath)
	assert.ErrorContains(t, err, "unknown output format")

	_, err = execute(t, NewViewCommand(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "loading config")

	_, err = execute(t, NewViewCommand())
	assert.Error(t, err)
}

func TestRunView_MetricsFile(t *testing.T) {
	dir, configPath := workspace(t, "")
	metricsPath := filepath.Join(dir, "logweave.prom")

	_, err := execute(t, NewViewCommand(), "--quiet", "--metrics-file", metricsPath, configPath)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `logweave_lines_parsed_total{file="a.log"} 3`)
}

func TestRunInspect(t *testing.T) {
	dir, _ := workspace(t, "")
	noDate := filepath.Join(dir, "plain.txt")
	writeFile(t, noDate, "hello\nworld")

	out, err := execute(t, NewInspectCommand(), filepath.Join(dir, "a.log"), noDate)
	require.NoError(t, err)
	assert.Contains(t, out, "Format: ISO 8601 with milliseconds and Z")
	assert.Contains(t, out, "Entries: 3 (0 without date)")
	assert.Contains(t, out, "Order: asc")
	assert.Contains(t, out, "No date format recognized.")

	out, err = execute(t, NewInspectCommand(), "-o", "json", filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	var reports []FileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "desc", string(reports[1].Sortedness))
	assert.True(t, reports[0].NativeTimezone)
}

func TestRunInspect_WriteConfig(t *testing.T) {
	dir, _ := workspace(t, "")
	configPath := filepath.Join(dir, "starter.yaml")

	_, err := execute(t, NewInspectCommand(), "--timezone", "3", "-w", configPath, filepath.Join(dir, "a.log"))
	require.NoError(t, err)

	cfg, err := config.Load(context.Background(), configPath)
	require.NoError(t, err)
	require.Len(t, cfg.Files, 1)
	assert.Equal(t, 3, cfg.Files[0].Timezone)

	_, err = execute(t, NewInspectCommand(), "-w", configPath, filepath.Join(dir, "a.log"))
	assert.ErrorContains(t, err, "will not overwrite")
}

func TestRunTimeline(t *testing.T) {
	_, configPath := workspace(t, "")

	out, err := execute(t, NewTimelineCommand(), "--steps", "2", configPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Activity (GMT):\n"))
	assert.Equal(t, 3, strings.Count(out, "\n"))

	_, err = execute(t, NewTimelineCommand(), "--steps", "0", configPath)
	assert.ErrorContains(t, err, "--steps")
}

func TestFiltersCommands(t *testing.T) {
	tat := filepath.Join(t.TempDir(), "filters.tat")

	_, err := execute(t, NewFiltersCommand(), "add", tat, "alpha")
	require.NoError(t, err)
	_, err = execute(t, NewFiltersCommand(), "add", "--excluding", "--color", "#00ff00", tat, "beta")
	require.NoError(t, err)

	out, err := execute(t, NewFiltersCommand(), "list", tat)
	require.NoError(t, err)
	assert.Equal(t, "1. \"alpha\" #f08080\n2. \"beta\" #00ff00 (excluding)\n", out)

	out, err = execute(t, NewFiltersCommand(), "move", tat, "2", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1. \"beta\""))

	out, err = execute(t, NewFiltersCommand(), "disable", tat, "beta")
	require.NoError(t, err)
	assert.Contains(t, out, "1. \"beta\" #00ff00 (disabled, excluding)")

	_, err = execute(t, NewFiltersCommand(), "enable", tat, "gamma")
	assert.ErrorContains(t, err, "no filter with pattern")

	out, err = execute(t, NewFiltersCommand(), "remove", tat, "1")
	require.NoError(t, err)
	assert.Equal(t, "1. \"alpha\" #f08080\n", out)

	_, err = execute(t, NewFiltersCommand(), "remove", tat, "5")
	assert.ErrorContains(t, err, "out of range")
}

func TestFiltersExport(t *testing.T) {
	dir, configPath := workspace(t, "filters:\n  - pattern: two\n    color: \"#ff0000\"\nview:\n  sort_by: file\n  sort_direction: asc\n")
	tat := filepath.Join(dir, "out.tat")

	out, err := execute(t, NewFiltersCommand(), "export", configPath, tat)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 filters")

	p, err := project.Load(tat)
	require.NoError(t, err)
	assert.Equal(t, "logweave", p.Settings.Name)
	assert.Equal(t, "file", string(p.Settings.SortBy))
	require.Len(t, p.Filters, 1)
	assert.Equal(t, "#ff0000", p.Filters[0].Color)
}

func TestRunScenarios(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "test.log"), scenarioLog)
	configPath := filepath.Join(dir, "logweave.yaml")
	writeFile(t, configPath, "files:\n  - path: test.log\nview:\n  sort_direction: asc\n")

	out, err := execute(t, NewScenariosCommand(), configPath)
	require.NoError(t, err)
	assert.Equal(t,
		"09/28/2022 20:00:00.000 GMT  login  step 1: open page\n"+
			"09/28/2022 20:00:02.000 GMT  checkout  step 1: pay\n", out)

	out, err = execute(t, NewScenariosCommand(), "-o", "json", configPath, "chk")
	require.NoError(t, err)
	var steps []scenario.Step
	require.NoError(t, json.Unmarshal([]byte(out), &steps))
	require.Len(t, steps, 1)
	assert.Equal(t, "checkout", steps[0].Name)

	out, err = execute(t, NewScenariosCommand(), configPath, "zzzz")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestRunValidate(t *testing.T) {
	_, configPath := workspace(t, "  - path: missing.log\n")

	out, err := execute(t, NewValidateCommand(), configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid!")
	assert.Contains(t, out, "Files:    2 pattern(s)")
	assert.Contains(t, out, ": 2 file(s)")
	assert.Contains(t, out, "Warning: no file matches")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, bad, "files: []\n")
	_, err = execute(t, NewValidateCommand(), bad)
	assert.ErrorContains(t, err, "validation failed")
}

func TestNewVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand())
	require.NoError(t, err)
	assert.Equal(t, "logweave dev\n", out)
}

func TestParseZones(t *testing.T) {
	zones, err := parseZones([]string{"a.log=+3", "b.log=-12"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a.log": 3, "b.log": -12}, zones)

	_, err = parseZones([]string{"=3"})
	assert.Error(t, err)
	_, err = parseZones([]string{"a.log=x"})
	assert.Error(t, err)
}
