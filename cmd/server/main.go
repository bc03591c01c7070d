// Command server runs the credanchor gateway: DID creation/resolution,
// credential issuance, and credential verification over HTTP.
//
// All network clients (ledger, content store, anchor log, cache) are
// constructed once here and injected into the pipeline; nothing reaches for
// ambient global state.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"credanchor/internal/anchorlog"
	"credanchor/internal/contentstore"
	"credanchor/internal/identity"
	"credanchor/internal/issuer"
	"credanchor/internal/ledger/devnet"
	"credanchor/internal/platform/config"
	"credanchor/internal/platform/httpserver"
	"credanchor/internal/platform/logger"
	"credanchor/internal/platform/metrics"
	platformredis "credanchor/internal/platform/redis"
	httptransport "credanchor/internal/transport/http"
	"credanchor/internal/verifier"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	ledgerClient := devnet.New(cfg.OperatorBalance)

	cache, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	store, cleanup, err := buildContentStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	log.Info("content store ready", "backend", cfg.ContentStore)

	anchors, closeAnchors, err := buildAnchorLog(ctx, cfg, ledgerClient)
	if err != nil {
		return err
	}
	defer closeAnchors()

	identitySvc := identity.NewService(ledgerClient, redisClient(cache), log, cfg.InitialBalance)
	issueSvc := issuer.NewService(store, anchorlog.WithMetrics(anchors, m.AnchorAppends), log)
	verifySvc := verifier.NewService(identitySvc, store, log)

	defaultIssuer, err := resolveDefaultIssuer(ctx, cfg, identitySvc, log)
	if err != nil {
		return err
	}

	didHandler := httptransport.NewDIDHandler(identitySvc, log, m)
	vcHandler := httptransport.NewVCHandler(issueSvc, verifySvc, defaultIssuer, log, m)
	router := httptransport.NewRouter(log, m, didHandler, vcHandler)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting credanchor gateway", "addr", cfg.Addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildContentStore(ctx context.Context, cfg config.Server) (contentstore.Store, func(), error) {
	switch cfg.ContentStore {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		pg := contentstore.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	case "ipfs":
		return contentstore.NewIPFS(cfg.IPFSAPIURL), func() {}, nil
	default:
		return contentstore.NewMemory(), func() {}, nil
	}
}

func buildAnchorLog(ctx context.Context, cfg config.Server, ledgerClient *devnet.Ledger) (anchorlog.Log, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return anchorlog.NewLedgerTopic(ledgerClient, cfg.AnchorTopic), func() {}, nil
	}
	kafka, err := anchorlog.NewKafka(cfg.KafkaBrokers, cfg.AnchorTopic)
	if err != nil {
		return nil, nil, err
	}
	if err := kafka.EnsureTopic(ctx, 1, 1); err != nil {
		kafka.Close()
		return nil, nil, err
	}
	return kafka, kafka.Close, nil
}

// resolveDefaultIssuer uses the configured issuer identity when present and
// otherwise registers a fresh one so the issue route works out of the box.
func resolveDefaultIssuer(ctx context.Context, cfg config.Server, identitySvc *identity.Service, log *slog.Logger) (httptransport.DefaultIssuer, error) {
	if cfg.IssuerDID != "" && cfg.IssuerPrivateKey != "" {
		return httptransport.DefaultIssuer{DID: cfg.IssuerDID, PrivateKey: cfg.IssuerPrivateKey}, nil
	}
	created, err := identitySvc.Create(ctx)
	if err != nil {
		return httptransport.DefaultIssuer{}, err
	}
	log.Info("created default issuer identity", "did", created.DID, "account_id", created.AccountID)
	return httptransport.DefaultIssuer{DID: created.DID, PrivateKey: created.PrivateKey}, nil
}

// redisClient unwraps the platform client, tolerating the not-configured case.
func redisClient(c *platformredis.Client) *redis.Client {
	if c == nil {
		return nil
	}
	return c.Client
}
