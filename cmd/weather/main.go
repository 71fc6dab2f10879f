package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-cli/internal/api/http"
	"github.com/i474232898/weather-cli/internal/config"
	"github.com/i474232898/weather-cli/internal/geo"
	"github.com/i474232898/weather-cli/internal/menu"
	"github.com/i474232898/weather-cli/internal/scheduler"
	"github.com/i474232898/weather-cli/internal/store"
	"github.com/i474232898/weather-cli/internal/weather"
	"github.com/i474232898/weather-cli/internal/weather/providers"
)

// InitLogger parses the level string and configures logrus with it.
func InitLogger(logLevel string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	customFormatter := &log.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	}
	log.SetFormatter(customFormatter)
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.AppConfig

	root := &cobra.Command{
		Use:           "weather",
		Short:         "Look up current weather and keep a local history of lookups",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if err := InitLogger(loaded.LogLevel); err != nil {
				return fmt.Errorf("invalid LOG_LEVEL: %w", err)
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			service := newService(cfg, store.NewCSVStore(cfg.HistoryFile))
			return menu.New(service, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd(&cfg), newWatchCmd(&cfg))
	return root
}

func newServeCmd(cfg **config.AppConfig) *cobra.Command {
	var memory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lookups and history over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := *cfg

			var historyStore weather.Store = store.NewCSVStore(conf.HistoryFile)
			if memory {
				historyStore = store.NewMemoryStore(conf.StoreMaxHistory)
			}
			service := newService(conf, historyStore)

			app := fiber.New(fiber.Config{
				AppName:               "weather-cli",
				DisableStartupMessage: true,
				ReadTimeout:           10 * time.Second,
				WriteTimeout:          10 * time.Second,
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					code := fiber.StatusInternalServerError
					if e, ok := err.(*fiber.Error); ok {
						code = e.Code
					}
					return c.Status(code).JSON(fiber.Map{
						"error":   true,
						"message": err.Error(),
					})
				},
			})

			app.Use(logger.New())
			app.Use(recover.New())

			app.Get("/health", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{
					"status":  "ok",
					"service": "weather-cli",
				})
			})

			httpapi.RegisterRoutes(app, service)

			go func() {
				log.Infof("[serve] listening on :%s", conf.Port)
				if err := app.Listen(":" + conf.Port); err != nil {
					log.Errorf("[serve] fiber server stopped: %v", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&memory, "memory", false, "keep history in memory instead of the history file")
	return cmd
}

func newWatchCmd(cfg **config.AppConfig) *cobra.Command {
	var (
		city     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Look up the weather periodically and append each result to history",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := *cfg
			if city == "" {
				city = c.WatchCity
			}
			if interval <= 0 {
				interval = c.WatchInterval
			}

			service := newService(c, store.NewCSVStore(c.HistoryFile))
			sched := scheduler.New(city, interval, c.HTTPTimeout, service, cmd.OutOrStdout())
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "city to watch (default: WATCH_CITY, then the caller's own city)")
	cmd.Flags().DurationVar(&interval, "every", 0, "lookup interval (default: WATCH_INTERVAL)")
	return cmd
}

// newService wires the OpenWeatherMap provider and the IP locator around the
// given history store. Both share the configured timeout.
func newService(cfg *config.AppConfig, historyStore weather.Store) *weather.Service {
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherURL, cfg.Lang)
	locator := geo.NewIPLocator(cfg.GeolocationURL, cfg.HTTPTimeout, geo.GoogleReverse(cfg.GeocoderAPIKey))

	return weather.NewService(historyStore, provider, locator)
}
