package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modelmgr/internal/catalog"
	"modelmgr/internal/common/fsutil"
	"modelmgr/internal/config"
	"modelmgr/internal/download"
	"modelmgr/internal/httpapi"
	"modelmgr/internal/manager"
	"modelmgr/internal/prefs"
	"modelmgr/internal/probe"
)

type flags struct {
	addr        string
	modelsDir   string
	prefsDir    string
	configPath  string
	logLevel    string
	autoLoad    bool
	corsEnabled bool
	corsOrigins []string
	resampleSec int
}

func main() {
	f := flags{}
	root := &cobra.Command{
		Use:           "modelmgrd",
		Short:         "Adaptive model lifecycle daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}
	root.Flags().StringVar(&f.addr, "addr", "", "HTTP listen address, e.g. :8090 (defaults MODELMGR_ADDR or :8090)")
	root.Flags().StringVar(&f.modelsDir, "models-dir", "~/models/llm", "Directory holding downloaded model files")
	root.Flags().StringVar(&f.prefsDir, "prefs-dir", "~/.modelmgr/prefs", "Directory for the preference store")
	root.Flags().StringVar(&f.configPath, "config", "", "Optional config file (.yaml/.json/.toml); flags override it")
	root.Flags().StringVar(&f.logLevel, "log-level", "info", "Log level: debug|info|warn|error|off")
	root.Flags().BoolVar(&f.autoLoad, "auto-load", true, "Run the selection/load pipeline at startup")
	root.Flags().BoolVar(&f.corsEnabled, "cors-enabled", false, "Enable CORS middleware")
	root.Flags().StringSliceVar(&f.corsOrigins, "cors-origins", nil, "Allowed CORS origins")
	root.Flags().IntVar(&f.resampleSec, "resample-interval-sec", 30, "Resource re-sample interval in seconds (0 disables)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(f flags) error {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	// Flags and environment override the file.
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if cfg.Addr == "" {
		cfg.Addr = os.Getenv("MODELMGR_ADDR")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8090"
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = f.modelsDir
	}
	if cfg.PrefsDir == "" {
		cfg.PrefsDir = f.prefsDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = f.logLevel
	}
	if cfg.ResampleIntervalSec == 0 {
		cfg.ResampleIntervalSec = f.resampleSec
	}
	if f.corsEnabled {
		cfg.CORSEnabled = true
		cfg.CORSOrigins = f.corsOrigins
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(httpapi.ParseLevel(cfg.LogLevel))

	modelsDir, err := fsutil.ExpandHome(cfg.ModelsDir)
	if err != nil {
		return fmt.Errorf("resolve models dir: %w", err)
	}
	cfg.ModelsDir = modelsDir

	cat := catalog.Builtin()
	pb := probe.New(cfg.ModelsDir, probe.WithSafetyMargin(cfg.SafetyMargin))

	store, err := prefs.Open(cfg.PrefsDir, log)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	defer store.Close()

	dl, err := download.NewHTTPDownloader(cfg.ModelsDir, cat, log)
	if err != nil {
		return err
	}
	lister, err := download.NewLocalLister(cfg.ModelsDir, cat)
	if err != nil {
		return err
	}
	loader, err := download.NewFileLoader(cfg.ModelsDir, cat)
	if err != nil {
		return err
	}

	mgr := manager.New(manager.Config{
		Catalog:         cat,
		Probe:           pb,
		Prefs:           store,
		Downloader:      dl,
		Loader:          loader,
		Lister:          lister,
		Logger:          log,
		LoadAttempts:    cfg.LoadAttempts,
		RetryDelay:      time.Duration(cfg.RetryDelayMS) * time.Millisecond,
		ProgressStepPct: cfg.ProgressStepPct,
	})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(log)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
		[]string{"GET", "POST", "PUT", "OPTIONS"}, []string{"Content-Type"})

	mgr.StartSampler(baseCtx, time.Duration(cfg.ResampleIntervalSec)*time.Second)

	go func() {
		if err := mgr.Initialize(baseCtx, f.autoLoad); err != nil {
			log.Error().Err(err).Msg("startup initialize failed")
		}
	}()

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(mgr)}
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Msg("modelmgrd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM): cancel in-flight lifecycle work,
	// then drain the server.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
