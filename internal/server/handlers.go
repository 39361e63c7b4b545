package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cyderes/trending-topics-service/internal/models"
	"github.com/cyderes/trending-topics-service/internal/query"
	"github.com/cyderes/trending-topics-service/internal/research"
)

type researchRequest struct {
	BrandContext string `json:"brand_context"`
	Niche        string `json:"niche"`
	ContentType  string `json:"content_type"`
	Count        int    `json:"count"`
	Save         bool   `json:"save"`
}

type researchResponse struct {
	Trends  []models.CandidateTrend `json:"trends"`
	Source  models.Source           `json:"source"`
	Message string                  `json:"message"`
	Created []models.Trend          `json:"created,omitempty"`
}

type bulkRequest struct {
	Trends []models.CandidateTrend `json:"trends"`
}

type bulkResponse struct {
	Count   int            `json:"count"`
	Message string         `json:"message"`
	Trends  []models.Trend `json:"trends"`
}

type hideRequest struct {
	IsHidden *bool `json:"is_hidden"`
}

// handleHealth reports store reachability
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.deps.Store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		body["status"] = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// handleResearch always answers 200 for valid input, degraded or not
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	outcome, err := s.deps.Researcher.Research(r.Context(), research.Request{
		BrandContext: req.BrandContext,
		Niche:        req.Niche,
		ContentType:  req.ContentType,
		Count:        req.Count,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := researchResponse{
		Trends:  outcome.Candidates,
		Source:  outcome.Source,
		Message: outcome.Message,
	}

	if req.Save {
		result, err := s.deps.Ingestor.BulkCreate(r.Context(), outcome.Candidates)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		resp.Created = result.Created
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.Ingestor.BulkCreate(r.Context(), req.Trends)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, bulkResponse{
		Count:   result.Count,
		Message: fmt.Sprintf("Created %d trends", result.Count),
		Trends:  result.Created,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	page, err := s.deps.Querier.List(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	trend, err := s.deps.Querier.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleSetHidden(w http.ResponseWriter, r *http.Request) {
	var req hideRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IsHidden == nil {
		s.writeServiceError(w, r, models.NewValidationError("is_hidden", "is required"))
		return
	}

	trend, err := s.deps.Visibility.SetHidden(r.Context(), chi.URLParam(r, "id"), *req.IsHidden)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, trend)
}

// listParams reads the listing filters. Unparsable limit and offset values
// are ignored and fall back to defaults.
func listParams(r *http.Request) (query.Params, error) {
	q := r.URL.Query()
	var params query.Params

	if category := strings.TrimSpace(q.Get("category")); category != "" {
		params.Category = &category
	}

	switch v := strings.ToLower(strings.TrimSpace(q.Get("is_hidden"))); v {
	case "":
	case "all":
		params.IncludeAll = true
	default:
		hidden, err := strconv.ParseBool(v)
		if err != nil {
			return params, models.NewValidationError("is_hidden", "must be true, false or all")
		}
		params.IsHidden = &hidden
	}

	if l, err := strconv.Atoi(q.Get("limit")); err == nil {
		params.Limit = &l
	}
	if o, err := strconv.Atoi(q.Get("offset")); err == nil {
		params.Offset = &o
	}

	return params, nil
}
