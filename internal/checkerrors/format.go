package checkerrors

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ConsoleFormatter renders errors for a terminal.
type ConsoleFormatter struct {
	code  *color.Color
	label *color.Color
	key   *color.Color
	fix   *color.Color
}

// NewConsoleFormatter creates a formatter; colours are emitted only when useColors is set.
func NewConsoleFormatter(useColors bool) *ConsoleFormatter {
	f := &ConsoleFormatter{
		code:  color.New(color.FgRed),
		label: color.New(color.Faint),
		key:   color.New(color.FgCyan),
		fix:   color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{f.code, f.label, f.key, f.fix} {
		if useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// Format renders err. Errors that are not *Error are rendered as their message.
func (f *ConsoleFormatter) Format(err error) string {
	ce, ok := As(err)
	if !ok {
		return err.Error()
	}

	lines := []string{
		fmt.Sprintf("%s %s", f.code.Sprintf("[%s]", ce.Code), ce.Message),
		"",
		fmt.Sprintf("%s %s", f.label.Sprint("Stage:"), ce.Stage),
	}

	if len(ce.Context) > 0 {
		lines = append(lines, f.label.Sprint("Context:"))
		for _, k := range sortedKeys(ce.Context) {
			lines = append(lines, fmt.Sprintf("  %s %v", f.key.Sprintf("%s:", k), ce.Context[k]))
		}
	}

	lines = append(lines, "", fmt.Sprintf("%s %s", f.fix.Sprint("How to fix:"), ce.Suggestion))

	if ce.Cause != nil {
		lines = append(lines, "", fmt.Sprintf("%s %s", f.label.Sprint("Caused by:"), ce.Cause.Error()))
	}

	return strings.Join(lines, "\n")
}

// FormatConsole renders err without colours.
func FormatConsole(err error) string {
	return NewConsoleFormatter(false).Format(err)
}

// FormatGitHubActions renders err as a GitHub Actions workflow command.
// Multi-line annotation bodies use the %0A escape GitHub expects.
func FormatGitHubActions(err error) string {
	ce, ok := As(err)
	if !ok {
		return fmt.Sprintf("::error::%s", escapeWorkflowData(err.Error()))
	}

	title := fmt.Sprintf("%s - %s Error", ce.Code, strings.ToUpper(string(ce.Stage)))
	parts := []string{ce.Message}

	if len(ce.Context) > 0 {
		pairs := make([]string, 0, len(ce.Context))
		for _, k := range sortedKeys(ce.Context) {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, ce.Context[k]))
		}
		parts = append(parts, "Context: "+strings.Join(pairs, ", "))
	}
	parts = append(parts, "How to fix: "+ce.Suggestion)

	body := make([]string, len(parts))
	for i, p := range parts {
		body[i] = escapeWorkflowData(p)
	}
	return fmt.Sprintf("::error title=%s::%s", title, strings.Join(body, "%0A"))
}

type jsonError struct {
	Code       Code           `json:"code"`
	Stage      Stage          `json:"stage"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion"`
	Context    map[string]any `json:"context"`
	Timestamp  string         `json:"timestamp"`
	Cause      string         `json:"cause,omitempty"`
}

// MarshalJSON renders the error in its wire form.
func (e *Error) MarshalJSON() ([]byte, error) {
	je := jsonError{
		Code:       e.Code,
		Stage:      e.Stage,
		Message:    e.Message,
		Suggestion: e.Suggestion,
		Context:    e.Context,
		Timestamp:  e.Timestamp.Format(time.RFC3339Nano),
	}
	if je.Context == nil {
		je.Context = map[string]any{}
	}
	if e.Cause != nil {
		je.Cause = e.Cause.Error()
	}
	return json.Marshal(je)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeWorkflowData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
