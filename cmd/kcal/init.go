package kcal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/app"
	"github.com/saadjs/kcal-sync/internal/config"
	"github.com/saadjs/kcal-sync/internal/db"
)

var initToken string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local database and config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := app.EnsureParentDir(path); err != nil {
			return err
		}

		sqldb, err := db.Open(path)
		if err != nil {
			return err
		}
		defer sqldb.Close()

		if err := db.ApplyMigrations(sqldb); err != nil {
			return err
		}
		version, err := db.SchemaVersion(sqldb)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized kcal-sync database at %s (schema v%d)\n", path, version)

		cfgPath, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		_, statErr := os.Stat(cfgPath)
		changed := os.IsNotExist(statErr)
		if userFlag != "" {
			cfg.User = userFlag
			changed = true
		}
		if baseURL != "" {
			cfg.BaseURL = baseURL
			changed = true
		}
		if initToken != "" {
			cfg.Token = initToken
			changed = true
		}
		if changed {
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", cfgPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initToken, "token", "", "API token to store in the config file")
}
