package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cbso/internal/fetch"
	"cbso/internal/filing"
	"cbso/internal/ops"
	"cbso/internal/pipeline"
	"cbso/internal/pipeline/metrics"
	"cbso/internal/platform/config"
	"cbso/internal/platform/httpserver"
	"cbso/internal/platform/logger"
	platformredis "cbso/internal/platform/redis"
	"cbso/internal/store/postgres"
)

// main wires high-level dependencies and keeps the run lifecycle small.
// Business logic lives in the internal packages.
func main() {
	var enterpriseFile string
	flag.StringVar(&enterpriseFile, "enterprises", "", "file with one enterprise number per line")
	flag.Parse()

	cfg := config.FromEnv()
	log := logger.New()

	if enterpriseFile == "" {
		log.Fatal("missing -enterprises file")
	}
	enterpriseIDs, err := readEnterpriseIDs(enterpriseFile)
	if err != nil {
		log.Fatalf("read enterprise list: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open postgres pool: %v", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	st := postgres.New(pool)

	client := fetch.NewClient(cfg.CBSO, nil)
	cache, redisClient, err := buildCache(cfg)
	if err != nil {
		log.Fatalf("payload cache: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	loader := fetch.NewLoader(client, cache)

	checks := map[string]ops.HealthChecker{
		"postgres": ops.HealthFunc(pool.Ping),
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	srv := httpserver.New(cfg.Addr, ops.New(checks).Router())
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ops server error: %v", err)
		}
	}()

	p := pipeline.New(loader, st, log, metrics.New(), pipeline.WithWorkers(cfg.Workers))

	log.Printf("ingesting %d companies with %d workers", len(enterpriseIDs), cfg.Workers)
	summary, err := p.Run(ctx, enterpriseIDs)
	if err != nil {
		log.Printf("run aborted: %v", err)
	} else {
		log.Printf("run complete: %d companies, %d failed, %d items skipped",
			summary.Companies, summary.Failed, summary.ItemErrors)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}

// buildCache prefers Redis when configured and falls back to the on-disk
// cache otherwise.
func buildCache(cfg config.Config) (fetch.PayloadCache, *platformredis.Client, error) {
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if redisClient != nil {
		return fetch.NewRedisCache(redisClient), redisClient, nil
	}
	cache, err := fetch.NewDiskCache(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	return cache, nil, nil
}

func readEnterpriseIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		// Listed numbers arrive dotted ("0400.638.803") or bare.
		line := filing.DigitsOnly(scanner.Text())
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s lists no enterprise numbers", path)
	}
	return ids, nil
}
