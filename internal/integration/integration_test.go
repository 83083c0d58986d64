package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"pancasila-learning-service/internal/app"
	"pancasila-learning-service/internal/cert"
	"pancasila-learning-service/internal/domain"
	pgloader "pancasila-learning-service/internal/infra/postgres"
	infraredis "pancasila-learning-service/internal/infra/redis"
	pgmigrations "pancasila-learning-service/internal/infra/postgres/migrations"
	"pancasila-learning-service/internal/progress"
)

func TestQuizAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedChapter(t, ctx, pgURL, sampleChapter())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewCorpusLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	chapters := infraredis.NewChapterRepository(redisClient, loader, 5*time.Minute)
	ledger := progress.NewLedger(infraredis.NewKeyValueStore(redisClient))
	issuer := cert.NewIssuerWithSources(time.Now, rand.New(rand.NewSource(1)))
	runner := app.NewQuizRunner(chapters, ledger, issuer)

	if err := runner.Start(ctx, "1", "Ani"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Answer the first question right and the second wrong.
	if _, err := runner.SubmitAnswer(1); err != nil {
		t.Fatalf("submit q1: %v", err)
	}
	if _, err := runner.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := runner.SubmitAnswer(1); err != nil {
		t.Fatalf("submit q2: %v", err)
	}
	result, err := runner.Advance()
	if err != nil {
		t.Fatalf("final advance: %v", err)
	}

	if result == nil || result.FinalPercentage != 50 {
		t.Fatalf("expected 50%%, got %+v", result)
	}
	if result.Certificate.Status != domain.StatusNotPassed {
		t.Fatalf("expected NOT_PASSED, got %s", result.Certificate.Status)
	}

	// The score landed in the Redis-backed ledger.
	percent, err := ledger.CompletionPercent(ctx, "1")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if percent != 100 {
		t.Fatalf("expected chapter done after quiz, got %d%%", percent)
	}
	record, ok, err := ledger.Record(ctx, "1")
	if err != nil || !ok || record.QuizScore == nil || *record.QuizScore != 50 {
		t.Fatalf("expected persisted score 50, got record=%+v ok=%v err=%v", record, ok, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "learn", "POSTGRES_PASSWORD": "learnpass", "POSTGRES_DB": "learndb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://learn:learnpass@%s:%s/learndb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedChapter(t *testing.T, ctx context.Context, dsn string, chapter domain.Chapter) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(chapter)
	if err != nil {
		t.Fatalf("marshal chapter: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO chapters (id, position, data) VALUES (?, 0, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, chapter.ID, string(data)); err != nil {
		t.Fatalf("insert chapter: %v", err)
	}
}

func sampleChapter() domain.Chapter {
	return domain.Chapter{
		ID:    "1",
		Title: "Sejarah Pancasila",
		Quiz: []domain.Question{
			{Prompt: "Kapan Pancasila lahir?", Options: []string{"1944", "1945"}, Answer: 1},
			{Prompt: "Siapa yang memperkenalkan istilahnya?", Options: []string{"Soekarno", "Hatta"}, Answer: 0},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
