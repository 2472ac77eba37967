package integration

import (
	"context"
	"database/sql"
	"fmt"
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

	"quiz-tutor-bot/internal/app"
	"quiz-tutor-bot/internal/domain"
	pgstore "quiz-tutor-bot/internal/infra/postgres"
	pgmigrations "quiz-tutor-bot/internal/infra/postgres/migrations"
	redissession "quiz-tutor-bot/internal/infra/redis"
)

func TestAnswerFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBunDB(t, ctx, pgURL)
	defer db.Close()
	seedBank(t, ctx, db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	bank := pgstore.NewQuestionBank(pool)
	responses := pgstore.NewResponseLog(db)
	sessions := redissession.NewSessionStore(redisClient, 5*time.Minute)
	quiz := app.NewQuizService(sessions, bank, responses)
	stats := app.NewStatsService(responses, []int64{42})

	user := domain.User{ID: 7, Username: "alice", FirstName: "Alice"}
	if err := quiz.Start(ctx, user); err != nil {
		t.Fatalf("start: %v", err)
	}

	menu, err := quiz.TopicMenu(ctx, user.ID)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if len(menu) != 2 || menu[0].Title != "Algebra" {
		t.Fatalf("unexpected menu: %+v", menu)
	}

	view, err := quiz.PresentQuestion(ctx, user.ID, menu[0].Selector)
	if err != nil {
		t.Fatalf("present: %v", err)
	}
	if view.Topic != "Algebra" || len(view.Options) != 3 {
		t.Fatalf("unexpected question view: %+v", view)
	}

	feedback, err := quiz.SubmitAnswer(ctx, user.ID, "B")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !feedback.Correct || feedback.NextSelector != "0" {
		t.Fatalf("expected correct feedback on topic 0, got %+v", feedback)
	}

	// The session is consumed: the same text again grades nothing.
	if _, err := quiz.SubmitAnswer(ctx, user.ID, "B"); err != domain.ErrNoActiveSession {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}

	personal, err := quiz.Personal(ctx, user.ID)
	if err != nil {
		t.Fatalf("personal: %v", err)
	}
	if personal.TotalAnswered != 1 || personal.TotalCorrect != 1 {
		t.Fatalf("unexpected personal stats: %+v", personal)
	}

	if err := stats.Authorize(42); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	summary, err := stats.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalUsers != 1 || summary.TotalAttempts != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	aggregates, attempts, err := stats.ExportDatasets(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(aggregates) != 1 || aggregates[0].Username != "alice" {
		t.Fatalf("unexpected aggregates: %+v", aggregates)
	}
	if len(attempts) != 1 || !attempts[0].Correct {
		t.Fatalf("unexpected attempts: %+v", attempts)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

func openBunDB(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedBank(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	records := []pgstore.TaskRecord{
		{
			ID:            1,
			Topic:         "Algebra",
			QuestionType:  "single_choice",
			QuestionText:  "<p>What is <b>2 + 2</b>?</p>",
			Options:       map[string]string{"a": "3", "b": "4", "c": "5"},
			CorrectAnswer: "b",
			Explanation:   "<p>Two plus two is four.</p>",
		},
	}
	inserted, err := pgstore.SeedTasks(ctx, db, records)
	if err != nil {
		t.Fatalf("seed tasks: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 inserted task, got %d", inserted)
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
