// menu-sync is the operator CLI for the menu cache: inspect entries, clear
// them, or clear-and-warm in one step.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/orussy/online-menu/pkg/cache"
	"github.com/orussy/online-menu/pkg/catalog"
	"github.com/orussy/online-menu/pkg/config"
	"github.com/orussy/online-menu/pkg/logging"
)

var (
	store         *cache.Store
	catalogClient *catalog.Client
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "menu-sync",
		Short: "Administer the menu catalog cache",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(logging.Config{Level: "warn", Pretty: true})

			redisClient := redis.NewClient(&redis.Options{
				Addr: cfg.RedisAddr,
				DB:   cfg.RedisDB,
			})
			if err := redisClient.Ping(cmd.Context()).Err(); err != nil {
				return fmt.Errorf("connect to Redis at %s: %w", cfg.RedisAddr, err)
			}

			store = cache.New(redisClient)
			catalogClient, err = catalog.New(catalog.Config{
				BaseURL: cfg.APIBaseURL,
				Token:   cfg.APIToken,
				Cache:   store,
				TTL:     cfg.CacheTTL,
			})
			return err
		},
	}

	rootCmd.AddCommand(statusCmd(), syncCmd(), clearCmd(), refreshCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List cache entries with their age and expiry state",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := store.Entries(cmd.Context())
			if len(entries) == 0 {
				fmt.Println("cache is empty")
				return nil
			}
			for _, e := range entries {
				state := "fresh"
				if e.Expired {
					state = "expired"
				}
				fmt.Printf("%-40s %8.2fh %8s %7d bytes\n", e.Key, e.AgeHours, state, e.Size)
			}
			fmt.Printf("%d entries\n", len(entries))
			return nil
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Clear all cache entries, then warm with a fresh category fetch",
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted := store.ClearAll(cmd.Context())
			fmt.Printf("cleared %d entries\n", deleted)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			if err := catalogClient.Refresh(ctx); err != nil {
				return fmt.Errorf("warm fetch failed: %w", err)
			}
			fmt.Println("cache warmed")
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted := store.ClearAll(cmd.Context())
			fmt.Printf("cleared %d entries\n", deleted)
			return nil
		},
	}
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <key>",
		Short: "Invalidate one cache key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted := store.Clear(cmd.Context(), args[0])
			if deleted == 0 {
				fmt.Printf("no entry for key %q\n", args[0])
				return nil
			}
			fmt.Printf("invalidated %q\n", args[0])
			return nil
		},
	}
}
