package checkerrors

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"syscall"
)

// Config stage

func NewConfigFileNotFound(path string) *Error {
	return New(CodeConfigFileNotFound, StageConfig,
		fmt.Sprintf("Config file not found: %s", path),
		"Check the path and make sure the file exists. Paths are resolved relative to the working directory.",
		map[string]any{"filePath": path}, nil)
}

func NewConfigYAMLParse(path string, cause error) *Error {
	return New(CodeConfigYAMLParse, StageConfig,
		fmt.Sprintf("Failed to parse YAML in %s", path),
		"Check YAML syntax: indentation must use spaces, strings with special characters need quotes.",
		map[string]any{"filePath": path}, cause)
}

// NewConfigValidation reports every failed rule of a config file.
func NewConfigValidation(path string, problems []string) *Error {
	return New(CodeConfigValidation, StageConfig,
		fmt.Sprintf("Config validation failed for %s:\n  %s", path, strings.Join(problems, "\n  ")),
		"Fix the listed fields. Each monitor needs id, name, url and at least one selector.",
		map[string]any{"filePath": path, "errors": len(problems)}, nil)
}

// Fetch stage

func NewFetchNetwork(url string, cause error, attempt, maxAttempts int) *Error {
	return New(CodeFetchNetwork, StageFetch,
		fmt.Sprintf("Network error%s: %s", attemptSuffix(attempt, maxAttempts), url),
		"Check if URL is correct and accessible. Verify network connectivity. Site may be blocking requests.",
		attemptContext(url, attempt, maxAttempts), cause)
}

func NewFetchTimeout(url string, timeoutMs, attempt, maxAttempts int) *Error {
	ctx := attemptContext(url, attempt, maxAttempts)
	ctx["timeout"] = timeoutMs
	return New(CodeFetchTimeout, StageFetch,
		fmt.Sprintf("Request timed out after %dms%s: %s", timeoutMs, attemptSuffix(attempt, maxAttempts), url),
		fmt.Sprintf("Increase timeout value in config (current: %dms). Site may be slow or unresponsive.", timeoutMs),
		ctx, nil)
}

var httpSuggestions = map[int]string{
	400: "Bad request. The URL may be malformed or missing required parameters.",
	401: "Authentication required. This page needs login credentials.",
	403: "Access forbidden. Site may be blocking automated requests. Try a different user agent or dynamic mode.",
	404: "Page not found. Check if the URL is correct and the page still exists.",
	429: "Rate limited. Reduce check frequency or increase retries.",
	500: "Server error. The site may be temporarily down. Try again later.",
	502: "Bad gateway. The site's server may be having issues. Try again later.",
	503: "Service unavailable. The site may be under maintenance. Try again later.",
}

func NewFetchHTTP(url string, status int, statusText string) *Error {
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	suggestion, ok := httpSuggestions[status]
	if !ok {
		suggestion = fmt.Sprintf("HTTP %d error. Check if URL is accessible in browser.", status)
	}
	return New(CodeFetchHTTP, StageFetch,
		fmt.Sprintf("HTTP %d (%s): %s", status, statusText, url),
		suggestion,
		map[string]any{"url": url, "httpStatus": status, "statusText": statusText}, nil)
}

func NewFetchPageLoadFailed(url string, cause error) *Error {
	return New(CodeFetchPageLoadFailed, StageFetch,
		fmt.Sprintf("Failed to load page: %s", url),
		"Page failed to load in browser. Check URL and try again.",
		map[string]any{"url": url}, cause)
}

// NewFetchEngineNotAvailable is terminal: the retry executor never retries it.
func NewFetchEngineNotAvailable(cause error) *Error {
	return New(CodeFetchEngineNotAvailable, StageFetch,
		"Headless browser is required for dynamic mode but not available",
		"Install Chrome or Chromium, or point PAGEWATCH_CHROME_PATH (or browser.bin) at an existing binary. Use mode: static if the page does not need rendering.",
		map[string]any{}, cause)
}

func NewFetchWaitForSelectorTimeout(url, selector string, timeoutMs int) *Error {
	return New(CodeFetchWaitForSelectorTimeout, StageFetch,
		fmt.Sprintf("Timeout waiting for selector '%s' on %s", selector, url),
		"Selector may not exist or takes too long to appear. Verify in browser DevTools.",
		map[string]any{"url": url, "selector": selector, "timeout": timeoutMs}, nil)
}

// Extract stage

func NewExtractSelectorValueMissing(selectorName, selectorType string) *Error {
	example := `value: ".my-class"`
	if selectorType == "xpath" {
		example = `value: "//div[@class=\"my-class\"]"`
	}
	return New(CodeExtractSelectorValueMissing, StageExtract,
		fmt.Sprintf("%s selector requires a 'value' field", strings.ToUpper(selectorType)),
		fmt.Sprintf("Add 'value' to selector config. Example: %s", example),
		map[string]any{"selector": selectorName, "selectorType": selectorType}, nil)
}

func NewExtractInvalidSelector(selectorName, selectorType, value string, cause error) *Error {
	return New(CodeExtractInvalidSelector, StageExtract,
		fmt.Sprintf("Invalid %s selector: '%s'", selectorType, value),
		"Check the selector syntax. Test it in browser DevTools before adding it to the config.",
		map[string]any{"selector": selectorName, "selectorType": selectorType, "value": value}, cause)
}

// Match stage

func NewMatchInvalidPattern(pattern string, cause error) *Error {
	return New(CodeMatchInvalidPattern, StageMatch,
		fmt.Sprintf("Invalid regex pattern: '%s'", pattern),
		"Check regex syntax. Common issues: unescaped special characters, missing brackets. Test at regex101.com",
		map[string]any{"pattern": pattern}, cause)
}

func NewMatchUnknownType(matchType string) *Error {
	return New(CodeMatchUnknownType, StageMatch,
		fmt.Sprintf("Unknown match type: '%s'", matchType),
		"Valid match types: 'regex', 'exact', 'contains'.",
		map[string]any{"matchType": matchType}, nil)
}

// Storage stage

func NewStorageStateRead(path string, cause error) *Error {
	return New(CodeStorageStateRead, StageStorage,
		fmt.Sprintf("Failed to read state from %s", path),
		"Check that the state path is readable by the current user.",
		map[string]any{"filePath": path}, cause)
}

func NewStorageStateWrite(path string, cause error) *Error {
	suggestion := "Check that the state directory exists and is writable."
	switch {
	case errors.Is(cause, fs.ErrPermission):
		suggestion = "Permission denied. Check write permissions on the state directory."
	case errors.Is(cause, syscall.ENOSPC):
		suggestion = "Disk is full. Free up space and run again."
	}
	return New(CodeStorageStateWrite, StageStorage,
		fmt.Sprintf("Failed to write state to %s", path),
		suggestion,
		map[string]any{"filePath": path}, cause)
}

func NewStorageStateParse(path string, cause error) *Error {
	return New(CodeStorageStateParse, StageStorage,
		fmt.Sprintf("Failed to parse state file %s", path),
		"State file may be corrupted. Delete it and run again to create fresh state.",
		map[string]any{"filePath": path}, cause)
}

func NewStorageHistoryWrite(path string, cause error) *Error {
	return New(CodeStorageHistoryWrite, StageStorage,
		fmt.Sprintf("Failed to write history to %s", path),
		"Check that the history directory exists and is writable.",
		map[string]any{"filePath": path}, cause)
}

func attemptContext(url string, attempt, maxAttempts int) map[string]any {
	ctx := map[string]any{"url": url}
	if attempt > 0 {
		ctx["attempt"] = attempt
	}
	if maxAttempts > 0 {
		ctx["maxAttempts"] = maxAttempts
	}
	return ctx
}
