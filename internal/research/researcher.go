package research

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cyderes/trending-topics-service/internal/config"
	"github.com/cyderes/trending-topics-service/internal/metrics"
	"github.com/cyderes/trending-topics-service/internal/models"
)

// Reasons reported when research degrades to the fallback set
const (
	ReasonUnconfigured = "no LLM provider configured"
	ReasonRateLimited  = "provider rate limit exceeded"
	ReasonTimeout      = "provider timed out"
	ReasonRequest      = "provider request failed"
	ReasonParse        = "provider response could not be parsed"
)

// Cache stores successful research results between calls
type Cache interface {
	Get(ctx context.Context, key string) ([]models.CandidateTrend, bool, error)
	Set(ctx context.Context, key string, trends []models.CandidateTrend, ttl time.Duration) error
}

// Request describes what to research
type Request struct {
	BrandContext string
	Niche        string
	ContentType  string
	Count        int
}

// Outcome is either a provider result (Source llm) or the degraded fallback
// set (Source fallback) with the Reason it was substituted.
type Outcome struct {
	Candidates []models.CandidateTrend
	Source     models.Source
	Message    string
	Reason     string
	Cached     bool
}

// Degraded reports whether the fallback set was returned
func (o Outcome) Degraded() bool {
	return o.Source == models.SourceFallback
}

// Researcher asks a Provider for trend candidates and never fails on
// provider errors
type Researcher struct {
	provider Provider
	cache    Cache
	limiter  *rate.Limiter
	config   config.ResearchConfig
	logger   *slog.Logger
}

// NewResearcher creates a Researcher. provider and cache may be nil.
func NewResearcher(cfg config.ResearchConfig, provider Provider, cache Cache, logger *slog.Logger) *Researcher {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}

	return &Researcher{
		provider: provider,
		cache:    cache,
		limiter:  limiter,
		config:   cfg,
		logger:   logger.With("component", "research"),
	}
}

// Research returns at most req.Count candidates. The only error is a
// *models.ValidationError for unusable input.
func (r *Researcher) Research(ctx context.Context, req Request) (Outcome, error) {
	req, err := r.normalize(req)
	if err != nil {
		return Outcome{}, err
	}

	if r.provider == nil {
		return r.fallback(req, ReasonUnconfigured, nil), nil
	}

	key := cacheKey(req)
	if cached, ok := r.fromCache(ctx, key); ok {
		outcome := Outcome{
			Candidates: cached[:min(len(cached), req.Count)],
			Source:     models.SourceLLM,
			Cached:     true,
		}
		outcome.Message = fmt.Sprintf("Generated %d trends for %s (cached)", len(outcome.Candidates), req.Niche)
		metrics.RecordResearch(string(outcome.Source), true)
		return outcome, nil
	}

	candidates, reason, err := r.callProvider(ctx, req)
	if err != nil {
		return r.fallback(req, reason, err), nil
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, candidates, r.config.CacheTTL); err != nil {
			r.logger.Warn("failed to cache research result", "error", err)
		}
	}

	metrics.RecordResearch(string(models.SourceLLM), false)
	r.logger.Info("research completed", "provider", r.provider.Name(), "niche", req.Niche, "trends", len(candidates))

	return Outcome{
		Candidates: candidates,
		Source:     models.SourceLLM,
		Message:    fmt.Sprintf("Generated %d trends for %s", len(candidates), req.Niche),
	}, nil
}

func (r *Researcher) normalize(req Request) (Request, error) {
	req.BrandContext = strings.TrimSpace(req.BrandContext)
	req.Niche = strings.TrimSpace(req.Niche)
	req.ContentType = strings.TrimSpace(req.ContentType)

	if req.Niche == "" {
		return req, models.NewValidationError("niche", "is required")
	}
	if req.Count < 0 {
		return req, models.NewValidationError("count", "must be at least 1")
	}
	if req.Count == 0 {
		req.Count = r.config.DefaultCount
	}
	if req.Count > r.config.MaxCount {
		req.Count = r.config.MaxCount
	}
	return req, nil
}

// callProvider makes a single bounded attempt; the reason names the failure
func (r *Researcher) callProvider(ctx context.Context, req Request) ([]models.CandidateTrend, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, ReasonRateLimited, fmt.Errorf("%w: %w", models.ErrProvider, err)
		}
	}

	text, err := r.provider.Complete(ctx, systemPrompt, buildPrompt(req))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ReasonTimeout, err
		}
		return nil, ReasonRequest, err
	}

	candidates, err := parseTrends(text, req.Count)
	if err != nil {
		return nil, ReasonParse, fmt.Errorf("%w: %w", models.ErrProvider, err)
	}
	return candidates, "", nil
}

func (r *Researcher) fromCache(ctx context.Context, key string) ([]models.CandidateTrend, bool) {
	if r.cache == nil {
		return nil, false
	}
	cached, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("research cache lookup failed", "error", err)
		return nil, false
	}
	if !ok || len(cached) == 0 {
		return nil, false
	}
	return cached, true
}

func (r *Researcher) fallback(req Request, reason string, cause error) Outcome {
	candidates := fallbackTrends(req.Niche, req.Count)

	metrics.RecordResearch(string(models.SourceFallback), false)
	if cause != nil {
		metrics.RecordProviderError(reason)
		r.logger.Warn("trend research degraded to fallback", "reason", reason, "error", cause)
	} else {
		r.logger.Info("trend research using fallback", "reason", reason)
	}

	return Outcome{
		Candidates: candidates,
		Source:     models.SourceFallback,
		Reason:     reason,
		Message:    fmt.Sprintf("Trend research is unavailable (%s); returned %d default trends", reason, len(candidates)),
	}
}

// cacheKey identifies a request independent of case and surrounding spaces
func cacheKey(req Request) string {
	h := sha256.New()
	for _, part := range []string{req.BrandContext, req.Niche, req.ContentType} {
		h.Write([]byte(strings.ToLower(part)))
		h.Write([]byte{0})
	}
	fmt.Fprintf(h, "%d", req.Count)
	return "research:" + hex.EncodeToString(h.Sum(nil))
}
