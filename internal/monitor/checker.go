package monitor

import (
	"context"
	"time"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/differ"
	"github.com/aleister1102/pagewatch/internal/extractor"
	"github.com/aleister1102/pagewatch/internal/fingerprint"
	"github.com/aleister1102/pagewatch/internal/matcher"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/rs/zerolog"
)

// PageFetcher retrieves monitor pages. *fetcher.Fetcher satisfies it.
type PageFetcher interface {
	FetchPage(ctx context.Context, m models.Monitor, defaults models.Defaults) (*models.FetchResult, error)
	FetchStatic(ctx context.Context, m models.Monitor, defaults models.Defaults) (*models.FetchResult, error)
	FetchDynamic(ctx context.Context, m models.Monitor, defaults models.Defaults) (*models.FetchResult, error)
	DynamicAvailable() bool
}

// Checker runs the fetch, extract, match, fingerprint and diff pipeline for
// one monitor at a time.
type Checker struct {
	fetcher   PageFetcher
	extractor *extractor.Extractor
	matcher   *matcher.Matcher
	differ    *differ.LineSetDiff
	now       func() time.Time
	logger    zerolog.Logger
}

// NewChecker creates a checker from its stage components.
func NewChecker(
	fetcher PageFetcher,
	ext *extractor.Extractor,
	m *matcher.Matcher,
	d *differ.LineSetDiff,
	logger zerolog.Logger,
) *Checker {
	return &Checker{
		fetcher:   fetcher,
		extractor: ext,
		matcher:   m,
		differ:    d,
		now:       time.Now,
		logger:    logger.With().Str("component", "Checker").Logger(),
	}
}

// WithClock replaces the time source used to stamp results.
func (c *Checker) WithClock(now func() time.Time) *Checker {
	c.now = now
	return c
}

// CheckMonitor checks m against the prior state returned by lookup. It never
// returns an error: failures become a result with status "error" and no
// selector results, and the caller must leave stored state untouched.
func (c *Checker) CheckMonitor(ctx context.Context, m models.Monitor, defaults models.Defaults, lookup models.StateLookup) models.CheckResult {
	timestamp := models.FormatTimestamp(c.now())
	result := models.CheckResult{
		ID:        m.ID,
		Name:      m.Name,
		URL:       m.URL,
		Timestamp: timestamp,
	}

	var previous *models.MonitorState
	if lookup != nil {
		if ms, ok := lookup(m.ID); ok {
			previous = &ms
		}
	}

	page, err := c.loadPage(ctx, m, defaults)
	if err != nil {
		return c.failed(result, err)
	}

	selectorResults, combinedHash, err := c.processSelectors(page, m.Selectors, previous)
	if err != nil {
		return c.failed(result, err)
	}

	result.SelectorResults = selectorResults
	result.CurrentHash = combinedHash
	if previous != nil {
		result.PreviousHash = models.StringPtr(previous.Hash)
	}

	result.Status = models.StatusUnchanged
	for _, sr := range selectorResults {
		if sr.Status == models.StatusChanged {
			result.ChangedSelectors = append(result.ChangedSelectors, sr.Name)
		}
	}
	if len(result.ChangedSelectors) > 0 {
		result.Status = models.StatusChanged
	}

	c.logger.Info().
		Str("monitor_id", m.ID).
		Str("status", string(result.Status)).
		Strs("changed_selectors", result.ChangedSelectors).
		Msg("Monitor checked")
	return result
}

// loadPage picks the fetch strategy. An explicit mode is used as is. In
// auto mode the static page is used unless the first selector extracts
// nothing and a renderer is available, in which case the whole page is
// re-fetched dynamically.
func (c *Checker) loadPage(ctx context.Context, m models.Monitor, defaults models.Defaults) (*extractor.Page, error) {
	if m.EffectiveMode().IsExplicit() {
		c.logger.Debug().Str("monitor_id", m.ID).Str("mode", string(m.Mode)).Str("url", m.URL).Msg("Fetching page")
		fetched, err := c.fetcher.FetchPage(ctx, m, defaults)
		if err != nil {
			return nil, err
		}
		return extractor.ParsePage(fetched.HTML), nil
	}

	c.logger.Debug().Str("monitor_id", m.ID).Str("url", m.URL).Msg("Fetching page (static)")
	fetched, err := c.fetcher.FetchStatic(ctx, m, defaults)
	if err != nil {
		return nil, err
	}
	page := extractor.ParsePage(fetched.HTML)

	if len(m.Selectors) == 0 {
		return page, nil
	}
	first, err := c.extractor.ExtractFrom(page, m.Selectors[0])
	if err != nil {
		return nil, err
	}
	if !extractor.IsEmpty(first) || !c.fetcher.DynamicAvailable() {
		return page, nil
	}

	c.logger.Info().
		Str("monitor_id", m.ID).
		Str("selector", m.Selectors[0].Name).
		Msg("Empty static result, retrying with dynamic mode")
	fetched, err = c.fetcher.FetchDynamic(ctx, m, defaults)
	if err != nil {
		return nil, err
	}
	return extractor.ParsePage(fetched.HTML), nil
}

func (c *Checker) processSelectors(page *extractor.Page, selectors []models.Selector, previous *models.MonitorState) ([]models.SelectorResult, string, error) {
	results := make([]models.SelectorResult, 0, len(selectors))
	segments := make([]fingerprint.Segment, 0, len(selectors))

	for _, sel := range selectors {
		extracted, err := c.extractor.ExtractFrom(page, sel)
		if err != nil {
			return nil, "", err
		}
		hash := fingerprint.Hash(extracted.Content)

		var matchedValue *string
		if sel.Match != nil {
			matched, err := c.matcher.Match(extracted.Content, *sel.Match)
			if err != nil {
				return nil, "", err
			}
			matchedValue = matched.Value
		}

		sr := models.SelectorResult{
			Name:         sel.Name,
			Status:       models.StatusUnchanged,
			Hash:         hash,
			Content:      extracted.Content,
			MatchedValue: matchedValue,
		}

		if previous != nil {
			if prior, ok := previous.Selectors[sel.Name]; ok {
				sr.PreviousHash = models.StringPtr(prior.Hash)
				sr.PreviousMatchedValue = prior.MatchedValue
				if prior.Hash != hash {
					sr.Status = models.StatusChanged
					sr.Diff = c.differ.Diff(models.StringOrEmpty(prior.MatchedValue), models.StringOrEmpty(matchedValue))
				}
			}
		}

		results = append(results, sr)
		segments = append(segments, fingerprint.Segment{Name: sel.Name, Content: extracted.Content})
	}

	return results, fingerprint.Combined(segments), nil
}

func (c *Checker) failed(result models.CheckResult, err error) models.CheckResult {
	c.logger.Warn().
		Err(err).
		Str("monitor_id", result.ID).
		Str("url", result.URL).
		Msg("Monitor check failed")
	return ErrorResult(result, err)
}

// ErrorResult marks result as failed with err. Structured errors also fill
// ErrorDetails.
func ErrorResult(result models.CheckResult, err error) models.CheckResult {
	result.Status = models.StatusError
	result.CurrentHash = ""
	result.Error = err.Error()

	if ce, ok := checkerrors.As(err); ok {
		result.ErrorDetails = &models.ErrorDetails{
			Code:       string(ce.Code),
			Stage:      string(ce.Stage),
			Message:    ce.Message,
			Suggestion: ce.Suggestion,
			Context:    ce.Context,
		}
	}
	return result
}
