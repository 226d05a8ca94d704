package kcal

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/config"
	"github.com/saadjs/kcal-sync/internal/resolve"
	"github.com/saadjs/kcal-sync/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage kcal-sync local configuration",
}

var (
	cfgFoodSources string
	cfgDefaultUser string
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set local settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("food-sources") {
			// validate names without building clients
			if _, err := resolve.BuildFallback(config.SplitList(cfgFoodSources), nil, resolve.SourceOptions{USDAAPIKey: "-"}); err != nil {
				return err
			}
		}
		return withDB(func(sqldb *sql.DB) error {
			settings := &store.Settings{DB: sqldb}
			updates := 0
			if cmd.Flags().Changed("food-sources") {
				value := strings.Join(config.SplitList(cfgFoodSources), ",")
				if err := settings.Set(cmd.Context(), store.SettingFoodSources, value); err != nil {
					return err
				}
				updates++
			}
			if cmd.Flags().Changed("default-user") {
				if err := settings.Set(cmd.Context(), store.SettingLastUser, cfgDefaultUser); err != nil {
					return err
				}
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d config value(s)\n", updates)
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show local settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			cfg, err := (&store.Settings{DB: sqldb}).List(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(cfg))
			for k := range cfg {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, cfg[k])
			}
			return nil
		})
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration after file, environment and flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		token := "(unset)"
		if cfg.Token != "" {
			token = "(set)"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "user\t%s\n", cfg.User)
		fmt.Fprintf(out, "base_url\t%s\n", cfg.BaseURL)
		fmt.Fprintf(out, "token\t%s\n", token)
		fmt.Fprintf(out, "timeout\t%s\n", cfg.GetTimeout())
		fmt.Fprintf(out, "requests_per_second\t%g (burst %d)\n", cfg.RequestsPerSecond, cfg.GetBurst())
		fmt.Fprintf(out, "log_level\t%s\n", cfg.GetLogLevel())
		fmt.Fprintf(out, "keep_stale_on_error\t%t\n", cfg.KeepStaleOnError)
		fmt.Fprintf(out, "food_sources\t%s\n", strings.Join(cfg.GetFoodSources(), ","))
		fmt.Fprintf(out, "catalog.alcohol\t%s\n", strings.Join(cfg.GetAlcoholCategories(), ","))
		fmt.Fprintf(out, "catalog.caffeine\t%s\n", strings.Join(cfg.GetCaffeineCategories(), ","))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd, configShowCmd)

	configSetCmd.Flags().StringVar(&cfgFoodSources, "food-sources", "", "Food lookup order (comma-separated: backend, openfoodfacts, usda)")
	configSetCmd.Flags().StringVar(&cfgDefaultUser, "default-user", "", "User to sync when none is configured")
}
