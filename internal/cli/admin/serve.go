package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cloo-solutions/syllabus/internal/api/handlers"
	"github.com/cloo-solutions/syllabus/internal/config"
	"github.com/cloo-solutions/syllabus/internal/database"
	"github.com/cloo-solutions/syllabus/internal/domain"
	"github.com/cloo-solutions/syllabus/internal/extract"
	"github.com/cloo-solutions/syllabus/internal/jobs"
	"github.com/cloo-solutions/syllabus/internal/llm"
	"github.com/cloo-solutions/syllabus/internal/repository"
	"github.com/cloo-solutions/syllabus/internal/server"
	"github.com/cloo-solutions/syllabus/internal/service"
	"github.com/cloo-solutions/syllabus/internal/storage"
	"github.com/cloo-solutions/syllabus/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the syllabus API server.

Without SYLLABUS_DATABASE_URL documents, FAQs and jobs live in memory and are
lost on restart. Without S3 settings files are kept under the uploads and
processed directories.`,
		RunE: runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides SYLLABUS_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", database.DefaultMigrationsSource, "Migration source URL")

	return cmd
}

// stores bundles the persistence chosen at startup.
type stores struct {
	documents service.DocumentRepositoryInterface
	faqs      service.FaqRepositoryInterface
	jobs      service.ExtendJobRepositoryInterface
	uploads   storage.BlobStore
	processed storage.BlobStore
	close     func()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	// 10% sampling in production, everything in development
	sampleRate := 0.1
	if cfg.Environment == "development" {
		sampleRate = 1.0
	}
	shutdownTelemetry, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
	} else {
		defer shutdownTelemetry()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	migrations, _ := cmd.Flags().GetString("migrations")
	st, err := openStores(ctx, cfg, !noMigrate, migrations)
	if err != nil {
		return err
	}
	defer st.close()

	llmClient, llmCloser, err := llm.New(ctx, cfg.LLM())
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() {
		if err := llmCloser.Close(); err != nil {
			log.Printf("failed to close LLM client: %v", err)
		}
	}()
	log.Printf("LLM provider: %s", cfg.LLMProvider)

	// Background tasks outlive the request that submitted them and are
	// drained on shutdown, so they do not share the signal context.
	pool := jobs.NewPool(cfg.Workers, cfg.QueueSize)
	pool.Start(context.Background())
	defer pool.Stop()

	uuidGen := &service.DefaultUUIDGenerator{}
	documentSvc := service.NewDocumentService(st.documents, st.uploads, st.processed, extract.NewDocconvExtractor(false), uuidGen)
	faqSvc := service.NewFaqService(st.documents, st.faqs, st.jobs, llmClient, pool, uuidGen)
	chatSvc := service.NewChatService(st.documents, llmClient)

	// no task from a previous process survives a restart
	if n, err := faqSvc.FailInterrupted(ctx); err != nil {
		return err
	} else if n > 0 {
		log.Printf("marked %d interrupted extension jobs as failed", n)
	}

	router := server.NewRouter(server.RouterConfig{
		APIKey:          cfg.APIKey,
		CORSOrigins:     cfg.CORSOrigins,
		MaxUploadBytes:  cfg.MaxUploadBytes(),
		DocumentHandler: handlers.NewDocumentHandler(documentSvc),
		FaqHandler:      handlers.NewFaqHandler(faqSvc),
		ChatHandler:     handlers.NewChatHandler(chatSvc),
	})
	if cfg.APIKey == "" {
		log.Println("warning: SYLLABUS_API_KEY is not set, the API is open")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweeper := jobs.NewWorker("extend-sweeper", jobs.NewExtendJobSweeper(st.jobs, domain.ExtendJobTTL), cfg.SweepInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("server exited")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, migrate bool, migrations string) (*stores, error) {
	st := &stores{close: func() {}}

	if cfg.HasDatabase() {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, database.PoolConfig{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Println("connected to database")

		if migrate {
			if _, err := database.RunMigrations(cfg.DatabaseURL, migrations); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		st.documents = repository.NewDocumentRepository(pool)
		st.faqs = repository.NewFaqRepository(pool)
		st.jobs = repository.NewExtendJobRepository(pool)
		st.close = pool.Close
	} else {
		log.Println("SYLLABUS_DATABASE_URL not set, using in-memory stores")
		st.documents = repository.NewMemoryDocumentRepository()
		st.faqs = repository.NewMemoryFaqRepository()
		st.jobs = repository.NewMemoryExtendJobRepository()
	}

	uploads, processed, err := openBlobStores(ctx, cfg)
	if err != nil {
		st.close()
		return nil, err
	}
	st.uploads, st.processed = uploads, processed

	return st, nil
}

func openBlobStores(ctx context.Context, cfg *config.Config) (storage.BlobStore, storage.BlobStore, error) {
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, cfg.S3())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		return s3Client.WithPrefix("uploads"), s3Client.WithPrefix("processed"), nil
	}

	uploads, err := storage.NewLocalStore(cfg.UploadsDir)
	if err != nil {
		return nil, nil, err
	}
	processed, err := storage.NewLocalStore(cfg.ProcessedDir)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("storing files under %s and %s", cfg.UploadsDir, cfg.ProcessedDir)
	return uploads, processed, nil
}
