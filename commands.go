package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cyderes/trending-topics-service/internal/cache"
	"github.com/cyderes/trending-topics-service/internal/ingestion"
	"github.com/cyderes/trending-topics-service/internal/query"
	"github.com/cyderes/trending-topics-service/internal/research"
	"github.com/cyderes/trending-topics-service/internal/server"
	"github.com/cyderes/trending-topics-service/internal/storage"
	"github.com/cyderes/trending-topics-service/internal/visibility"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe()
		},
	}
}

func (a *app) researchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Research trends once and print them as JSON",
		RunE:  a.runResearch,
	}

	cmd.Flags().String("niche", "", "niche to research (required)")
	cmd.Flags().String("brand", "", "brand context")
	cmd.Flags().String("content-type", "", "content type, e.g. reels or blog posts")
	cmd.Flags().Int("count", 0, "number of trends (0 uses the configured default)")
	cmd.Flags().Bool("save", false, "store the researched trends")
	cmd.MarkFlagRequired("niche")

	return cmd
}

func (a *app) runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStorage(ctx, a.cfg.Storage, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	researcher, closeCache, err := a.newResearcher(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	httpServer := server.NewServer(a.cfg.Server, server.Deps{
		Researcher: researcher,
		Ingestor:   ingestion.NewService(a.cfg.Ingestion, store, a.logger),
		Querier:    query.NewService(a.cfg.Query, store, a.logger),
		Visibility: visibility.NewService(store, a.logger),
		Store:      store,
	}, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("shutdown complete")
	return nil
}

func (a *app) runResearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	niche, _ := flags.GetString("niche")
	brand, _ := flags.GetString("brand")
	contentType, _ := flags.GetString("content-type")
	count, _ := flags.GetInt("count")
	save, _ := flags.GetBool("save")

	researcher, closeCache, err := a.newResearcher(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	outcome, err := researcher.Research(ctx, research.Request{
		BrandContext: brand,
		Niche:        niche,
		ContentType:  contentType,
		Count:        count,
	})
	if err != nil {
		return err
	}

	out := map[string]any{
		"trends":  outcome.Candidates,
		"source":  outcome.Source,
		"message": outcome.Message,
	}

	if save {
		store, err := storage.NewStorage(ctx, a.cfg.Storage, a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		result, err := ingestion.NewService(a.cfg.Ingestion, store, a.logger).BulkCreate(ctx, outcome.Candidates)
		if err != nil {
			return err
		}
		out["created"] = result.Created
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// newResearcher wires the configured provider and the optional Redis cache.
// An unreachable cache is logged and skipped.
func (a *app) newResearcher(ctx context.Context) (*research.Researcher, func(), error) {
	provider, err := research.NewProvider(a.cfg.Research)
	if err != nil {
		return nil, nil, err
	}
	if provider == nil {
		a.logger.Warn("LLM_API_KEY not set, research will return fallback trends")
	}

	var researchCache research.Cache
	closeCache := func() {}

	if a.cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, a.cfg.Cache, a.logger)
		if err != nil {
			a.logger.Warn("research cache disabled", "error", err)
		} else {
			researchCache = rc
			closeCache = func() { rc.Close() }
		}
	}

	return research.NewResearcher(a.cfg.Research, provider, researchCache, a.logger), closeCache, nil
}
