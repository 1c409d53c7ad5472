// Command basalt runs a web server built on the basalt HTTP stack.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/basaltio/basalt/config"
	"github.com/basaltio/basalt/fileserver"
	"github.com/basaltio/basalt/filesystem"
	"github.com/basaltio/basalt/http"
	"github.com/basaltio/basalt/logging"
	"github.com/basaltio/basalt/schedule"
	"github.com/basaltio/basalt/session"
	"github.com/basaltio/basalt/telemetry"
)

var (
	configFile   string
	addr         string
	workers      int
	logLevel     string
	logFormat    string
	otlpEndpoint string
)

var rootCmd = &cobra.Command{
	Use:   "basalt",
	Short: "basalt serves HTTP from scratch, without net/http",
	Long: `basalt is a web server built directly on TCP: its own request
parser, router, session store and file server. Configuration comes from
an optional YAML file; flags override it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "path to the YAML configuration file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config file")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "number of connection workers, overrides the config file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "", "log format: text or json")
	rootCmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint for telemetry export")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.LoadFile(configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("addr") {
		cfg.Addr = addr
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if cmd.Flags().Changed("otlp-endpoint") {
		cfg.Telemetry.OTLPEndpoint = otlpEndpoint
	}

	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if cfg.Telemetry.OTLPEndpoint != "" {
		shutdown, err := telemetry.Setup(ctx, cfg.Name, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Error("telemetry shutdown", "error", err)
			}
		}()
		logger = otelslog.NewLogger(cfg.Name)
	}

	store := session.NewMemoryStore(cfg.SessionTTL())
	defer store.Close()

	router, err := buildRouter(cfg, logger, store)
	if err != nil {
		return err
	}

	server, err := http.NewServer(cfg.Name, cfg.Addr, router,
		http.WithLogger(logger),
		http.WithWorkers(cfg.Workers))
	if err != nil {
		return err
	}

	scheduler := schedule.NewScheduler(logger)
	if err := scheduler.Add("prune-sessions", cfg.SessionTTL()/2, func(ctx context.Context) {
		if pruned := store.PruneExpired(); pruned > 0 {
			logger.Info("pruned expired sessions", "count", pruned)
		}
	}); err != nil {
		return err
	}
	go func() {
		_ = scheduler.Run(ctx)
	}()

	serverErrChannel := make(chan error, 1)
	go func() {
		serverErrChannel <- server.Run(ctx)
	}()

	select {
	case err := <-serverErrChannel:
		return err
	case <-ctx.Done():
		stop()
	}

	// Run drains in-flight connections once the context is canceled.
	return <-serverErrChannel
}

func buildRouter(cfg config.Config, logger *slog.Logger, store *session.MemoryStore) (*http.Router, error) {
	fsys := filesystem.NewLocalFileSystem()

	fs := fileserver.New(fsys)
	for _, mount := range cfg.Mounts {
		var err error
		if mount.Kind == "file" {
			err = fs.MapFile(mount.Route, mount.Path)
		} else {
			err = fs.MapDir(mount.Route, mount.Path)
		}
		if err != nil {
			return nil, err
		}
	}

	router := http.NewRouter()
	router.SetFileServer(fs)

	// registered before Use so the 404 page skips the session middleware
	if cfg.NotFoundPage != "" {
		page, err := fsys.ReadFile(cfg.NotFoundPage)
		if err != nil {
			return nil, fmt.Errorf("read not-found page: %w", err)
		}
		router.CatchAll(http.MethodGet, http.HandlerFunc(func(req *http.Request, params http.Params) (*http.Response, error) {
			return http.NewResponse().
				WithStatus(http.StatusNotFound).
				WithBody("text/html", page), nil
		}))
	}

	router.Use(
		http.RecoverMiddleware(logger),
		http.SessionMiddleware(store, cfg.Session.CookieName, cfg.SessionTTL()),
	)

	if err := router.GET("/hello", http.HandlerFunc(func(req *http.Request, params http.Params) (*http.Response, error) {
		name, found := req.QueryParam("name")
		if !found {
			name = "World"
		}
		return http.NewResponse().WithHtml("<h1>Hello " + name + "!</h1>"), nil
	})); err != nil {
		return nil, err
	}

	if err := router.GET("/mirror", http.HandlerFunc(func(req *http.Request, params http.Params) (*http.Response, error) {
		return http.NewResponse().WithJson(map[string]any{
			"method":  req.Method,
			"url":     req.URL,
			"query":   req.Query,
			"headers": req.Headers,
		})
	})); err != nil {
		return nil, err
	}

	if err := router.GET("/visits", http.HandlerFunc(func(req *http.Request, params http.Params) (*http.Response, error) {
		cookie, err := req.Cookie(cfg.Session.CookieName)
		if err != nil {
			return nil, err
		}
		sess, err := store.Load(cookie.Value)
		if err != nil {
			return nil, err
		}

		visits := sess.Get("visits", 0).(int) + 1
		sess.Set("visits", visits)
		if err := store.Save(sess); err != nil {
			return nil, err
		}

		return http.NewResponse().WithText("visit " + strconv.Itoa(visits)), nil
	})); err != nil {
		return nil, err
	}

	if err := router.POST("/upload", http.HandlerFunc(func(req *http.Request, params http.Params) (*http.Response, error) {
		part, err := req.MultipartBody()
		if err != nil {
			return nil, err
		}
		logger.Info("file received", "name", part.Name, "file_name", part.FileName, "bytes", len(part.Data))
		return http.NewResponse().WithJson(map[string]any{
			"name":     part.Name,
			"fileName": part.FileName,
			"size":     len(part.Data),
		})
	})); err != nil {
		return nil, err
	}

	return router, nil
}
