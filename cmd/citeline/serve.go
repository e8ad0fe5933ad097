package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/matsen/citeline/internal/config"
	"github.com/matsen/citeline/internal/server"
	"github.com/matsen/citeline/internal/views"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Server setting defaults.
const (
	DefaultListen       = "0.0.0.0:8000"
	DefaultRateLimit    = 20.0
	DefaultRateBurst    = 40
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 60 * time.Second
)

func init() {
	f := serveCmd.Flags()
	f.String("listen", DefaultListen, "Address to listen on")
	f.Float64("rate-limit", DefaultRateLimit, "Requests per second per client (0 disables)")
	f.Int("rate-burst", DefaultRateBurst, "Burst size per client")
	f.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	f.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")

	bindServeFlags(viper.GetViper(), f)

	cobra.OnInitialize(initViper)
	rootCmd.AddCommand(serveCmd)
}

// serveKeys are the viper keys of the serve settings. Flags use dashes.
var serveKeys = []string{"listen", "rate_limit", "rate_burst", "read_timeout", "write_timeout"}

// bindServeFlags binds the serve flags to viper keys.
func bindServeFlags(v *viper.Viper, f *pflag.FlagSet) {
	for _, key := range serveKeys {
		_ = v.BindPFlag(key, f.Lookup(strings.ReplaceAll(key, "_", "-")))
	}
}

// initViper reads CITELINE_* environment variables.
func initViper() {
	configureEnv(viper.GetViper())
}

func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("CITELINE")
	v.AutomaticEnv()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the corpus views over HTTP",
	Long: `Serve the corpus views over HTTP.

Endpoints:
  GET /, /<virus>            index page
  GET /api/citations         citation graph
  GET /api/timeseries        yearly publication counts (?search=)
  GET /api/publications      publication timeline (?search=)

  Searches match any term; "quoted phrases" match exactly and a
  leading - excludes a term, e.g. ?search=zika+-mayaro
  GET /api/graph             citation graph as Cytoscape.js elements
  GET /healthz               liveness

Settings hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (CITELINE_LISTEN, CITELINE_RATE_LIMIT, ...)
  3. Defaults`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// serverConfig collects server settings from viper and the repository config.
func serverConfig(v *viper.Viper, cfg *config.Config) server.Config {
	return server.Config{
		Listen:           v.GetString("listen"),
		RateLimit:        v.GetFloat64("rate_limit"),
		RateBurst:        v.GetInt("rate_burst"),
		ReadTimeout:      v.GetDuration("read_timeout"),
		WriteTimeout:     v.GetDuration("write_timeout"),
		TimelineHeadline: cfg.TimelineHeadline,
		DefaultVirus:     cfg.DefaultVirus,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	logger := logrus.StandardLogger()
	srv, err := server.New(views.NewService(db, logger), serverConfig(viper.GetViper(), mustLoadConfig(repoRoot)), logger)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}
