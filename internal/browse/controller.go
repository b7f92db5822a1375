// Package browse holds the exercise catalog view state: the loaded exercise
// list, the active body part or search filter and the current page.
package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"fitflow/internal/errs"
	"fitflow/internal/model"
)

const (
	// PageSize is the number of exercises shown per page.
	PageSize = 6
	// ResultsOffset is where the results grid starts, passed to the
	// Scroller after a search or page change.
	ResultsOffset = 1800
)

var (
	ErrUnknownBodyPart = errors.New("unknown body part")
	ErrInvalidPage     = errors.New("page must be at least 1")
)

// Source is the catalog service the controller fetches from.
type Source interface {
	ListExercises(ctx context.Context, bodyPart string) ([]model.Exercise, error)
	ListBodyParts(ctx context.Context) ([]string, error)
}

// Filter is the shared filter context. The controller updates it; views
// read it to label results.
type Filter struct {
	BodyPart string
	Query    string
}

// Scroller moves the view to offset.
type Scroller func(offset int)

// Controller manages catalog state. Methods that fetch block and are meant
// to be called from a tea.Cmd.
type Controller struct {
	source Source
	filter *Filter
	logger *slog.Logger
	scroll Scroller

	mu        sync.RWMutex
	exercises []model.Exercise
	bodyParts []string
	page      int
	inflight  int
}

// New creates a Controller. filter may be nil, in which case a fresh one
// scoped to "all" is used. scroll may be nil.
func New(source Source, filter *Filter, logger *slog.Logger, scroll Scroller) *Controller {
	if filter == nil {
		filter = &Filter{}
	}
	if filter.BodyPart == "" {
		filter.BodyPart = model.BodyPartAll
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		source: source,
		filter: filter,
		logger: logger.With("component", "catalog"),
		scroll: scroll,
		page:   1,
	}
}

// LoadBodyParts fetches the valid body part tags. "all" is always first.
func (c *Controller) LoadBodyParts(ctx context.Context) ([]string, error) {
	tags, err := c.source.ListBodyParts(ctx)
	if err != nil {
		c.logger.Error("failed to load body parts", "error", err)
		return nil, errs.Wrap(err, errs.CodeCatalog, "Failed to load body parts")
	}

	parts := make([]string, 0, len(tags)+1)
	parts = append(parts, model.BodyPartAll)
	for _, t := range tags {
		if t != model.BodyPartAll {
			parts = append(parts, t)
		}
	}

	c.mu.Lock()
	c.bodyParts = parts
	c.mu.Unlock()

	return slices.Clone(parts), nil
}

// SetBodyPartFilter replaces the exercise list with the exercises for tag.
// The current page is kept as is. On failure the previous list stays.
func (c *Controller) SetBodyPartFilter(ctx context.Context, tag string) error {
	if !c.knownTag(tag) {
		return fmt.Errorf("%w: %q", ErrUnknownBodyPart, tag)
	}

	c.setLoading(true)
	defer c.setLoading(false)

	exercises, err := c.source.ListExercises(ctx, tag)
	if err != nil {
		c.logger.Error("failed to fetch exercises", "body_part", tag, "error", err)
		return errs.Wrap(err, errs.CodeCatalog, "Failed to load exercises")
	}

	c.mu.Lock()
	c.exercises = exercises
	c.filter.BodyPart = tag
	c.filter.Query = ""
	c.mu.Unlock()

	c.logger.Debug("exercises loaded", "body_part", tag, "count", len(exercises))
	return nil
}

// Search refetches the full catalog and keeps exercises whose name, target,
// equipment or body part contains query. It returns the match count.
func (c *Controller) Search(ctx context.Context, query string) (int, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0, errs.New(errs.CodeValidation, "Please enter a search term")
	}

	c.setLoading(true)
	defer c.setLoading(false)

	all, err := c.source.ListExercises(ctx, model.BodyPartAll)
	if err != nil {
		c.logger.Error("search fetch failed", "query", q, "error", err)
		return 0, errs.Wrap(err, errs.CodeCatalog, "Failed to search exercises")
	}

	matches := make([]model.Exercise, 0)
	for _, ex := range all {
		if matchesQuery(ex, q) {
			matches = append(matches, ex)
		}
	}

	c.mu.Lock()
	c.exercises = matches
	c.filter.Query = q
	c.mu.Unlock()

	c.logger.Debug("search completed", "query", q, "count", len(matches))
	c.scrollToResults()
	return len(matches), nil
}

func matchesQuery(ex model.Exercise, q string) bool {
	return strings.Contains(strings.ToLower(ex.Name), q) ||
		strings.Contains(strings.ToLower(ex.Target), q) ||
		strings.Contains(strings.ToLower(ex.Equipment), q) ||
		strings.Contains(strings.ToLower(ex.BodyPart), q)
}

// Paginate sets the current page. There is no upper bound; a page past the
// end yields an empty slice.
func (c *Controller) Paginate(page int) error {
	if page < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	c.mu.Lock()
	c.page = page
	c.mu.Unlock()

	c.scrollToResults()
	return nil
}

// PageSlice returns the exercises on the current page.
func (c *Controller) PageSlice() []model.Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := (c.page - 1) * PageSize
	end := c.page * PageSize
	if start > len(c.exercises) {
		start = len(c.exercises)
	}
	if end > len(c.exercises) {
		end = len(c.exercises)
	}
	return slices.Clone(c.exercises[start:end])
}

func (c *Controller) Exercises() []model.Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.exercises)
}

func (c *Controller) BodyParts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.bodyParts)
}

func (c *Controller) Page() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// PageCount is the number of pages the current list spans, at least 1.
func (c *Controller) PageCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := (len(c.exercises) + PageSize - 1) / PageSize
	if n < 1 {
		return 1
	}
	return n
}

func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight > 0
}

// Filter returns a copy of the active filter.
func (c *Controller) Filter() Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.filter
}

func (c *Controller) knownTag(tag string) bool {
	if tag == model.BodyPartAll {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.bodyParts, tag)
}

func (c *Controller) setLoading(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.inflight++
	} else if c.inflight > 0 {
		c.inflight--
	}
}

func (c *Controller) scrollToResults() {
	if c.scroll != nil {
		c.scroll(ResultsOffset)
	}
}
