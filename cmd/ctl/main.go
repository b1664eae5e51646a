package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"downtime-panel-bot/internal/config"
	"downtime-panel-bot/internal/logging"
	"downtime-panel-bot/internal/storage"
)

var (
	appName     = "downtimectl"
	appLongName = "Downtime panel bot administration"
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: appLongName,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.Load()
		var err error
		logr, err = logging.New(cfg.LogLevel, "development")
		return err
	},
}

var (
	cfg  *config.Config
	logr *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openBackend opens the backend named by the environment.
func openBackend(ctx context.Context) (storage.Persister, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return storage.Open(ctx, backendOptions(cfg), logr.Named("storage"))
}

func backendOptions(c *config.Config) storage.Options {
	return storage.Options{
		Backend:       c.StorageBackend,
		DataFile:      c.DataFile,
		DatabaseURL:   c.DatabaseURL,
		RedisURL:      c.RedisURL,
		RedisKey:      c.RedisKey,
		S3Bucket:      c.S3Bucket,
		S3Key:         c.S3Key,
		S3Region:      c.S3Region,
		LegacyGuildID: c.LegacyGuildID(),
	}
}
