package kcal

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/saadjs/kcal-sync/internal/app"
	"github.com/saadjs/kcal-sync/internal/backend"
	"github.com/saadjs/kcal-sync/internal/catalog"
	"github.com/saadjs/kcal-sync/internal/config"
	"github.com/saadjs/kcal-sync/internal/db"
	"github.com/saadjs/kcal-sync/internal/logging"
	"github.com/saadjs/kcal-sync/internal/reconcile"
	"github.com/saadjs/kcal-sync/internal/resolve"
	"github.com/saadjs/kcal-sync/internal/service"
	"github.com/saadjs/kcal-sync/internal/store"
)

func withDB(run func(*sql.DB) error) error {
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
	return run(sqldb)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return app.DefaultConfigPath()
}

func resolveEnvPath(cfgPath string) string {
	if envPath != "" {
		return envPath
	}
	if configPath != "" {
		return filepath.Join(filepath.Dir(cfgPath), ".env")
	}
	p, err := app.DefaultEnvPath()
	if err != nil {
		return ""
	}
	return p
}

// loadConfig merges the config file, the environment and the persistent
// flags, in increasing order of precedence.
func loadConfig() (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, resolveEnvPath(path)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userFlag) != "" {
		cfg.User = strings.TrimSpace(userFlag)
	}
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimSpace(baseURL)
	}
	if strings.TrimSpace(logLevel) != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// session is everything a diary command needs, wired from one config.
type session struct {
	cfg        *config.Config
	log        *logrus.Logger
	client     *backend.Client
	catalog    *catalog.Cache
	resolver   *resolve.Resolver
	controller *reconcile.Controller
	diary      *service.Diary
	settings   *store.Settings
	recents    *store.Recents
	goals      *store.Goals
}

func withSession(cmd *cobra.Command, run func(context.Context, *session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.SetupWriter(cfg.GetLogLevel(), cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return withDB(func(sqldb *sql.DB) error {
		s := &session{
			cfg:      cfg,
			log:      log,
			settings: &store.Settings{DB: sqldb},
			recents:  &store.Recents{DB: sqldb},
			goals:    &store.Goals{DB: sqldb},
		}
		if err := s.applySettings(ctx); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := s.settings.Set(ctx, store.SettingLastUser, cfg.User); err != nil {
			return err
		}

		s.client = &backend.Client{
			BaseURL:    cfg.BaseURL,
			Token:      cfg.Token,
			HTTPClient: &http.Client{Timeout: cfg.GetTimeout()},
			Limiter:    backend.NewLimiter(cfg.RequestsPerSecond, cfg.GetBurst()),
			Logger:     log.WithField("component", "backend"),
		}
		foods, err := resolve.BuildFallback(cfg.GetFoodSources(), s.client, resolve.SourceOptions{USDAAPIKey: cfg.USDAAPIKey, OpenFoodFactsURL: cfg.OpenFoodFactsURL})
		if err != nil {
			return err
		}
		matcher := resolve.NewTokenMatcher()
		if cfg.MatchThreshold > 0 {
			matcher.Threshold = cfg.MatchThreshold
		}
		s.catalog = catalog.New()
		s.resolver = &resolve.Resolver{
			Foods:       foods,
			CustomFoods: s.client,
			Products:    s.client,
			Catalog:     s.catalog,
			Recents:     s.recents,
			Matcher:     matcher,
			Logger:      log.WithField("component", "resolve"),
		}
		s.controller = reconcile.New(s.client, reconcile.Options{
			User:             cfg.User,
			Goals:            s.goals,
			KeepStaleOnError: cfg.KeepStaleOnError,
			Logger:           log.WithField("component", "reconcile"),
		})
		s.diary = &service.Diary{
			Ledger: s.controller,
			Writer: s.client,
			User:   cfg.User,
			Logger: log.WithField("component", "diary"),
		}
		return run(ctx, s)
	})
}

// applySettings fills gaps in the config from the local settings table: the
// last user seen and the food source order.
func (s *session) applySettings(ctx context.Context) error {
	if strings.TrimSpace(s.cfg.User) == "" {
		last, ok, err := s.settings.Get(ctx, store.SettingLastUser)
		if err != nil {
			return err
		}
		if ok {
			s.cfg.User = last
		}
	}
	if len(s.cfg.FoodSources) == 0 {
		v, ok, err := s.settings.Get(ctx, store.SettingFoodSources)
		if err != nil {
			return err
		}
		if ok {
			s.cfg.FoodSources = config.SplitList(v)
		}
	}
	return nil
}

// warmCatalog loads the popular categories. Failures are logged, not fatal.
func (s *session) warmCatalog(ctx context.Context) (catalog.Result, error) {
	return catalog.Populate(ctx, s.catalog, s.client, catalog.Categories{
		Alcohol:  s.cfg.GetAlcoholCategories(),
		Caffeine: s.cfg.GetCaffeineCategories(),
	}, s.log.WithField("component", "catalog"))
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}
