package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/models"
)

// GitHubOutputEnv names the file GitHub Actions reads step outputs from.
const GitHubOutputEnv = "GITHUB_OUTPUT"

type selectorChange struct {
	Name                 string             `json:"name"`
	Status               models.CheckStatus `json:"status"`
	MatchedValue         *string            `json:"matchedValue,omitempty"`
	PreviousMatchedValue *string            `json:"previousMatchedValue,omitempty"`
}

type monitorChange struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	URL              string           `json:"url"`
	ChangedSelectors []string         `json:"changedSelectors"`
	SelectorResults  []selectorChange `json:"selectorResults,omitempty"`
}

// FormatGitHubOutput renders the step outputs of a run as key=value lines.
func FormatGitHubOutput(output models.RunOutput) (string, error) {
	changes := make([]monitorChange, 0, len(output.Changes))
	for _, r := range output.Changes {
		mc := monitorChange{
			ID:               r.ID,
			Name:             r.Name,
			URL:              r.URL,
			ChangedSelectors: r.ChangedSelectors,
		}
		if mc.ChangedSelectors == nil {
			mc.ChangedSelectors = []string{}
		}
		for _, sr := range r.SelectorResults {
			mc.SelectorResults = append(mc.SelectorResults, selectorChange{
				Name:                 sr.Name,
				Status:               sr.Status,
				MatchedValue:         sr.MatchedValue,
				PreviousMatchedValue: sr.PreviousMatchedValue,
			})
		}
		changes = append(changes, mc)
	}

	errorDetails := make([]*models.ErrorDetails, 0, len(output.Errors))
	for _, r := range output.Errors {
		if r.ErrorDetails != nil {
			errorDetails = append(errorDetails, r.ErrorDetails)
		}
	}

	changesJSON, err := json.Marshal(changes)
	if err != nil {
		return "", err
	}
	resultsJSON, err := json.Marshal(output.Results)
	if err != nil {
		return "", err
	}
	errorsJSON, err := json.Marshal(errorDetails)
	if err != nil {
		return "", err
	}

	lines := []string{
		fmt.Sprintf("changed=%t", output.Changed),
		"changes=" + string(changesJSON),
		"results=" + string(resultsJSON),
		fmt.Sprintf("error_count=%d", output.ErrorCount),
		"errors=" + string(errorsJSON),
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// WriteGitHubOutput appends the step outputs to $GITHUB_OUTPUT. It does
// nothing outside GitHub Actions.
func WriteGitHubOutput(output models.RunOutput) error {
	path := os.Getenv(GitHubOutputEnv)
	if path == "" {
		return nil
	}

	content, err := FormatGitHubOutput(output)
	if err != nil {
		return common.WrapError(err, "failed to encode GitHub outputs")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return common.WrapError(err, fmt.Sprintf("failed to open %s", path))
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return common.WrapError(err, fmt.Sprintf("failed to write %s", path))
	}
	return nil
}
