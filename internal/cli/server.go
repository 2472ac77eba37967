package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-tutor-bot/internal/app"
	"quiz-tutor-bot/internal/config"
	"quiz-tutor-bot/internal/domain"
	"quiz-tutor-bot/internal/infra/memory"
	pgstore "quiz-tutor-bot/internal/infra/postgres"
	redissession "quiz-tutor-bot/internal/infra/redis"
	"quiz-tutor-bot/internal/logger"
	"quiz-tutor-bot/internal/transport/telegram"
)

// NewStartCmd builds the CLI subcommand to start the bot.
func NewStartCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), *configPath)
		},
	}
}

func runBot(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token not configured")
	}

	log := logger.New("quiz-tutor-bot")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		bank app.QuestionBank
		resp app.ResponseLog
	)
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		db := openBunDB(cfg.Postgres.URL)
		defer db.Close()

		bank = pgstore.NewQuestionBank(pool)
		resp = pgstore.NewResponseLog(db)
		log.Info("using postgres storage")
	} else {
		bank = memory.NewQuestionBank(sampleQuestions())
		resp = memory.NewResponseLog()
		log.Warn("no postgres configured, using in-memory sample bank")
	}

	topicTTL := config.TTLDuration(cfg.Topics.CacheTTL, 5*time.Minute)
	bank = memory.NewTopicCache(bank, topicTTL)

	var sessions app.SessionStore
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		sessions = redissession.NewSessionStore(client, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
		log.Info("using redis-aware session store")
	} else {
		sessions = memory.NewSessionStore()
	}

	quiz := app.NewQuizService(sessions, bank, resp)
	stats := app.NewStatsService(resp, cfg.Telegram.AdminIDs)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("create bot api: %w", err)
	}
	log.WithField("bot", api.Self.UserName).Info("authorized with telegram")

	handler := telegram.NewHandler(api, quiz, stats, log)
	if err := handler.Run(ctx); err != nil {
		return err
	}
	log.Info("shut down")
	return nil
}

// sampleQuestions keeps the bot usable without a database; swap in the
// postgres bank for real deployments.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:     1,
			Topic:  "Algebra",
			Kind:   domain.KindSingleChoice,
			Prompt: "What is 2 + 2?",
			Options: []domain.Option{
				{Label: "a", Text: "3"},
				{Label: "b", Text: "4"},
				{Label: "c", Text: "5"},
			},
			CorrectAnswer: "b",
			Explanation:   "Two plus two is four.",
		},
		{
			ID:     2,
			Topic:  "Logic",
			Kind:   domain.KindMultiChoice,
			Prompt: "Which of these are even numbers?",
			Options: []domain.Option{
				{Label: "a", Text: "1"},
				{Label: "b", Text: "2"},
				{Label: "c", Text: "7"},
				{Label: "d", Text: "8"},
			},
			CorrectAnswer: "bd",
		},
	}
}
