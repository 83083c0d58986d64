package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"pancasila-learning-service/internal/app"
	"pancasila-learning-service/internal/cert"
	"pancasila-learning-service/internal/config"
	"pancasila-learning-service/internal/content"
	"pancasila-learning-service/internal/domain"
	"pancasila-learning-service/internal/infra/memory"
	pgloader "pancasila-learning-service/internal/infra/postgres"
	redisinfra "pancasila-learning-service/internal/infra/redis"
	"pancasila-learning-service/internal/progress"
	transport "pancasila-learning-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the learning server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// Corpus source priority: Postgres, then a JSON document, then the
	// built-in demo corpus.
	var loader content.CorpusLoader = content.NewStaticLoader(sampleCorpus())
	if cfg.Content.Path != "" {
		loader = content.NewFileLoader(cfg.Content.Path)
	}
	var corpusDB *pgloader.CorpusLoader
	if pool != nil {
		corpusDB = pgloader.NewCorpusLoader(pool)
		loader = corpusDB
	}

	// The corpus is loaded exactly once; a failure here aborts startup.
	store, err := content.NewStore(ctx, loader)
	if err != nil {
		return fmt.Errorf("load content corpus: %w", err)
	}

	var chapters app.ChapterRepository = store
	if redisClient != nil && corpusDB != nil {
		contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
		chapters = redisinfra.NewChapterRepository(redisClient, corpusDB, contentTTL)
	}

	var kv progress.KeyValueStore = memory.NewKeyValueStore()
	if redisClient != nil {
		kv = redisinfra.NewKeyValueStore(redisClient)
	}
	ledger := progress.NewLedger(kv)

	runner := app.NewQuizRunnerWithTiming(chapters, ledger, cert.NewIssuer(), cfg.Quiz.SecondsPerQuestion, time.Second)
	learning := app.NewLearningService(store, store, ledger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewHandler(learning).Register(mux)
	mux.HandleFunc("/ws/quiz", transport.NewWSHandler(runner).ServeQuiz)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting learning service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCorpus provides a minimal demo corpus; point content.path at the
// real data.json (or seed Postgres) in production.
func sampleCorpus() domain.Corpus {
	return domain.Corpus{
		Chapters: []domain.Chapter{
			{
				ID:         "1",
				Title:      "Sejarah Lahirnya Pancasila",
				Icon:       "assets/img/bab1.png",
				Competency: "Memahami proses perumusan Pancasila sebagai dasar negara.",
				Sections: []domain.Section{
					{Type: domain.SectionText, Title: "Pengantar", Body: "Pancasila dirumuskan dalam sidang BPUPKI."},
					{Type: domain.SectionQuote, Title: "Definisi", Body: "Pancasila adalah dasar negara Indonesia.", Source: "Ir. Soekarno, 1 Juni 1945"},
					{Type: domain.SectionList, Title: "Tokoh Perumus", Items: []string{"Ir. Soekarno", "Moh. Yamin", "Soepomo"}},
				},
				Quiz: []domain.Question{
					{
						Prompt:  "Kapan Pancasila pertama kali diperkenalkan?",
						Options: []string{"1 Juni 1945", "17 Agustus 1945", "28 Oktober 1928"},
						Answer:  0,
					},
					{
						Prompt:  "Badan yang merumuskan dasar negara adalah...",
						Options: []string{"KNIP", "BPUPKI", "MPR"},
						Answer:  1,
					},
				},
			},
		},
		References: []domain.LegalReference{
			{
				Label:    "Pasal 1 Ayat 1 UUD 1945",
				Body:     "Negara Indonesia ialah Negara Kesatuan, yang berbentuk Republik.",
				Keywords: []string{"negara", "kesatuan", "republik"},
			},
		},
	}
}
