package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quiz-tutor-bot/internal/config"
	pgstore "quiz-tutor-bot/internal/infra/postgres"
	"quiz-tutor-bot/internal/logger"
)

// NewSeedCmd loads question-bank entries from a JSON file into the
// tasks table. Entries whose id already exists are skipped, so a seed
// file can be re-applied safely.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load questions from a JSON file into the bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var records []pgstore.TaskRecord
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			db := openBunDB(cfg.Postgres.URL)
			defer db.Close()

			inserted, err := pgstore.SeedTasks(cmd.Context(), db, records)
			if err != nil {
				return err
			}
			logger.New("quiz-tutor-bot").WithFields(logrus.Fields{
				"file":     file,
				"total":    len(records),
				"inserted": inserted,
			}).Info("seed finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "questions.json", "path to the question bank JSON file")
	return cmd
}
