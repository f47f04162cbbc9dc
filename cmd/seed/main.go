package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"codecoach/internal/app/seed"
	"codecoach/internal/domain/repository"
	"codecoach/internal/platform/cache"
	"codecoach/internal/platform/config"
	"codecoach/internal/platform/database"
	"codecoach/internal/platform/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Load a YAML question bank into the question store",
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringP("file", "f", "seed/questions.yaml", "Path to the YAML question bank")
	rootCmd.Flags().Bool("dry-run", false, "Validate the bank and print what would be written")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	bank, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	questions, err := bank.Build()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	// Writing through the server's cache drops the tier pools it may hold.
	rdb, err := cache.ConnectRedis(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var sharedCache cache.Cache
	if rdb != nil {
		defer rdb.Close()
		sharedCache = cache.NewRedisCache(rdb, cache.KeyPrefix)
	}

	seeder := seed.NewSeeder(repository.NewQuestionStore(db, sharedCache, cfg.QuestionCacheTTL, log), log)
	n, err := seeder.Run(ctx, questions, dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d questions valid, nothing written (dry run)\n", len(questions))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d questions upserted from %s\n", n, path)
	return nil
}
