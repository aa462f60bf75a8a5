package runner

import (
	"fmt"
	"io"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/fatih/color"
)

// matchedValuePreview is how many runes of a matched value the report shows.
const matchedValuePreview = 40

// Reporter writes the human-readable run report.
type Reporter struct {
	out       io.Writer
	header    *color.Color
	changed   *color.Color
	failed    *color.Color
	unchanged *color.Color
}

// NewReporter creates a reporter writing to out.
func NewReporter(out io.Writer, useColors bool) *Reporter {
	r := &Reporter{
		out:       out,
		header:    color.New(color.Bold),
		changed:   color.New(color.FgYellow),
		failed:    color.New(color.FgRed),
		unchanged: color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.header, r.changed, r.failed, r.unchanged} {
		if useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Println writes a raw line.
func (r *Reporter) Println(line string) {
	fmt.Fprintln(r.out, line)
}

// ConfigHeader opens the section of one configuration.
func (r *Reporter) ConfigHeader(name string) {
	fmt.Fprintf(r.out, "\n%s\n", r.header.Sprintf("=== [%s] ===", name))
}

// MonitorHeader announces a monitor before it is checked.
func (r *Reporter) MonitorHeader(m models.Monitor) {
	fmt.Fprintf(r.out, "[%s] %s\n", m.ID, m.Name)
}

// MonitorResult prints the status of a finished check and its selectors.
func (r *Reporter) MonitorResult(result models.CheckResult) {
	fmt.Fprintf(r.out, "  %s\n", r.statusColor(result.Status).Sprintf("[%s] %s", statusIcon(result.Status), result.Status))

	switch {
	case result.ErrorDetails != nil:
		fmt.Fprintf(r.out, "  %s %s\n", r.failed.Sprintf("[%s]", result.ErrorDetails.Code), result.ErrorDetails.Message)
	case result.Error != "":
		fmt.Fprintf(r.out, "  Error: %s\n", result.Error)
	}

	for _, sr := range result.SelectorResults {
		icon := "-"
		if sr.Status == models.StatusChanged {
			icon = "!"
		}
		value := ""
		if v := models.StringOrEmpty(sr.MatchedValue); v != "" {
			value = ": " + truncateRunes(v, matchedValuePreview)
		}
		fmt.Fprintf(r.out, "    %s %s%s\n", r.statusColor(sr.Status).Sprintf("[%s]", icon), sr.Name, value)
	}
}

// Summary prints one line per configuration.
func (r *Reporter) Summary(results []models.ConfigResult) {
	fmt.Fprintf(r.out, "\n%s\n", r.header.Sprint("=== Summary ==="))
	for _, cr := range results {
		label, c := "OK", r.unchanged
		switch {
		case len(cr.Errors) > 0:
			label, c = "ERROR", r.failed
		case cr.Changed:
			label, c = "CHANGED", r.changed
		}
		fmt.Fprintf(r.out, "%s %s: %d changes, %d errors\n",
			c.Sprintf("[%s]", label), cr.ConfigName, len(cr.Changes), len(cr.Errors))
	}
}

func (r *Reporter) statusColor(status models.CheckStatus) *color.Color {
	switch status {
	case models.StatusChanged:
		return r.changed
	case models.StatusError:
		return r.failed
	default:
		return r.unchanged
	}
}

func statusIcon(status models.CheckStatus) string {
	switch status {
	case models.StatusChanged:
		return "!"
	case models.StatusError:
		return "x"
	default:
		return "-"
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
