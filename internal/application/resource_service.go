package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/bnema/adminkit/internal/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// RetryRecorder counts a user-initiated retry against the session budget.
type RetryRecorder interface {
	Retry(ctx context.Context, classified domain.ClassifiedError) (int, error)
}

type ResourceServiceOptions struct {
	Variant domain.BuilderVariant
	Retries RetryRecorder
	Logger  zerolog.Logger
}

type cacheEntry struct {
	result domain.Result
	tags   []string
}

// ResourceService runs descriptors through the query builder and the
// transport. Successful reads are cached by URL under the tags they provide;
// successful writes invalidate every entry sharing one of their tags.
type ResourceService struct {
	transport ports.Transport
	rules     domain.TagRules
	variant   domain.BuilderVariant
	retries   RetryRecorder
	logger    zerolog.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func NewResourceService(transport ports.Transport, rules domain.TagRules, opts ResourceServiceOptions) *ResourceService {
	if rules == nil {
		rules = domain.TagRules{}
	}
	if opts.Variant.Name == "" {
		opts.Variant = domain.StandardVariant
	}

	return &ResourceService{
		transport: transport,
		rules:     rules,
		variant:   opts.Variant,
		retries:   opts.Retries,
		logger:    opts.Logger,
		cache:     map[string]cacheEntry{},
	}
}

// Fetch returns the cached result for the descriptor URL or executes it.
// Concurrent fetches of the same URL share one request. The shared request
// does not inherit any caller's cancellation; a caller whose ctx ends stops
// waiting and gets ctx.Err() while the others keep the result.
func (s *ResourceService) Fetch(ctx context.Context, desc domain.ResourceDescriptor) (domain.Result, error) {
	req, err := domain.Build(domain.OperationFetch, desc, s.variant)
	if err != nil {
		return domain.Result{}, fmt.Errorf("build fetch request: %w", err)
	}

	if entry, ok := s.cached(req.URL); ok {
		s.logger.Debug().Str("url", req.URL).Msg("resource.cache_hit")
		return entry.result, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(req.URL, func() (any, error) {
		result := s.transport.Execute(shared, req)
		if result.OK() {
			s.store(req.URL, cacheEntry{result: result, tags: s.tagsFor(desc, http.MethodGet)})
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return domain.Result{}, fmt.Errorf("fetch %s: %w", req.URL, ctx.Err())
	case res := <-ch:
		return res.Val.(domain.Result), nil
	}
}

// Refetch drops the cached entry and fetches again.
func (s *ResourceService) Refetch(ctx context.Context, desc domain.ResourceDescriptor) (domain.Result, error) {
	url, err := domain.BuildURL(desc, s.variant)
	if err != nil {
		return domain.Result{}, fmt.Errorf("build fetch request: %w", err)
	}

	s.mu.Lock()
	delete(s.cache, url)
	s.mu.Unlock()

	return s.Fetch(ctx, desc)
}

func (s *ResourceService) Create(ctx context.Context, desc domain.ResourceDescriptor) (domain.Result, error) {
	return s.Mutate(ctx, domain.OperationCreate, desc)
}

func (s *ResourceService) Replace(ctx context.Context, desc domain.ResourceDescriptor) (domain.Result, error) {
	return s.Mutate(ctx, domain.OperationReplace, desc)
}

func (s *ResourceService) Update(ctx context.Context, desc domain.ResourceDescriptor) (domain.Result, error) {
	return s.Mutate(ctx, domain.OperationUpdate, desc)
}

func (s *ResourceService) Delete(ctx context.Context, desc domain.ResourceDescriptor) (domain.Result, error) {
	return s.Mutate(ctx, domain.OperationDelete, desc)
}

func (s *ResourceService) Upsert(ctx context.Context, desc domain.ResourceDescriptor) (domain.Result, error) {
	return s.Mutate(ctx, domain.OperationUpsert, desc)
}

// Mutate executes a write. On success it invalidates the tags resolved for
// the descriptor type and the HTTP verb actually used.
func (s *ResourceService) Mutate(ctx context.Context, op domain.Operation, desc domain.ResourceDescriptor) (domain.Result, error) {
	if !op.IsMutation() {
		return domain.Result{}, fmt.Errorf("operation %q is not a mutation", op)
	}

	req, err := domain.Build(op, desc, s.variant)
	if err != nil {
		return domain.Result{}, fmt.Errorf("build %s request: %w", op, err)
	}

	result := s.transport.Execute(ctx, req)
	if !result.OK() {
		return result, nil
	}

	tags := s.tagsFor(desc, req.Method)
	removed := s.Invalidate(tags...)
	s.logger.Debug().
		Str("method", req.Method).
		Strs("tags", tags).
		Int("invalidated", removed).
		Msg("resource.invalidated")

	return result, nil
}

// Retry records a retry of a failed operation and executes it again,
// bypassing the cache for reads.
func (s *ResourceService) Retry(ctx context.Context, op domain.Operation, desc domain.ResourceDescriptor, failed domain.ClassifiedError) (domain.Result, error) {
	var errs error
	if s.retries != nil {
		if _, err := s.retries.Retry(ctx, failed); err != nil {
			errs = fmt.Errorf("record retry: %w", err)
		}
	}

	var (
		result domain.Result
		err    error
	)
	if op == domain.OperationFetch || op == "" {
		result, err = s.Refetch(ctx, desc)
	} else {
		result, err = s.Mutate(ctx, op, desc)
	}

	return result, errors.Join(errs, err)
}

// Invalidate removes every cached entry providing one of tags and returns
// the number of entries removed.
func (s *ResourceService) Invalidate(tags ...string) int {
	if len(tags) == 0 {
		return 0
	}

	wanted := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		wanted[tag] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for url, entry := range s.cache {
		for _, tag := range entry.tags {
			if _, ok := wanted[tag]; ok {
				delete(s.cache, url)
				removed++
				break
			}
		}
	}

	return removed
}

// CachedURLs lists the cached request URLs in sorted order.
func (s *ResourceService) CachedURLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urls := make([]string, 0, len(s.cache))
	for url := range s.cache {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	return urls
}

func (s *ResourceService) tagsFor(desc domain.ResourceDescriptor, method string) []string {
	if override := strings.TrimSpace(desc.URL); strings.Contains(strings.Trim(override, "/"), "/") {
		return s.rules.TagsForPath(override, method)
	}

	return s.rules.TagsFor(desc.Type, method)
}

func (s *ResourceService) cached(url string) (cacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[url]
	return entry, ok
}

func (s *ResourceService) store(url string, entry cacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[url] = entry
}
