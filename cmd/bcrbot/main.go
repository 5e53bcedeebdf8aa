package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/pflag"
	zaplogfmt "github.com/sykesm/zap-logfmt"
	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bazelbuild/continuous-integration/bcrbot/internal/bot"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/cfg"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/githubclt"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/logfields"
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/webhook"
)

const appName = "bcrbot"

var logger *zap.Logger

// Version is set via a ldflag on compilation
var Version = "unknown"

func exitOnErr(msg string, err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "ERROR:", msg+", error:", err.Error())
	os.Exit(1)
}

func panicHandler() {
	if r := recover(); r != nil {
		logger.Info(
			"panic caught , terminating gracefully",
			zap.String("panic", fmt.Sprintf("%v", r)),
			zap.StackSkip("stacktrace", 1),
		)

		ctx, cancelFn := context.WithTimeout(context.Background(), time.Minute)
		defer cancelFn()

		goodbye.Exit(ctx, 1)
	}
}

func startHTTPServer(listenAddr string, handler http.Handler) {
	httpServer := http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 30 * time.Second,
	}

	goodbye.Register(func(context.Context, os.Signal) {
		const shutdownTimeout = 30 * time.Second
		ctx, cancelFn := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelFn()

		logger.Debug(
			"terminating http server",
			logfields.Event("http_server_terminating"),
			zap.Duration("shutdown_timeout", shutdownTimeout),
		)

		err := httpServer.Shutdown(ctx)
		if err != nil {
			logger.Warn(
				"shutting down http server failed",
				logfields.Event("http_server_termination_failed"),
				zap.Error(err),
			)
		}
	})

	go func() {
		defer panicHandler()

		logger.Info(
			"http server started",
			logfields.Event("http_server_started"),
			zap.String("listenAddr", listenAddr),
		)

		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("http server terminated", logfields.Event("http_server_terminated"))
			return
		}

		logger.Fatal(
			"http server terminated unexpectedly",
			logfields.Event("http_server_terminated_unexpectedly"),
			zap.Error(err),
		)
	}()
}

type arguments struct {
	Verbose     *bool
	ConfigFile  *string
	ShowVersion *bool
	PullRequest *int
	EventName   *string
	EventFile   *string
}

var args arguments

const defConfigFile = "/etc/bcrbot/config.toml"

func mustParseCommandlineParams() {
	args = arguments{
		Verbose: pflag.BoolP(
			"verbose",
			"v",
			false,
			"enable verbose logging",
		),
		ConfigFile: pflag.StringP(
			"cfg-file",
			"c",
			defConfigFile,
			"path to the bcrbot configuration file, the default file is optional",
		),
		ShowVersion: pflag.Bool(
			"version",
			false,
			"print the version and exit",
		),
		PullRequest: pflag.Int(
			"pr",
			0,
			"number of the pull request to process,\nif unset it is read from the event",
		),
		EventName: pflag.String(
			"event-name",
			os.Getenv("GITHUB_EVENT_NAME"),
			"GitHub event type of the event file",
		),
		EventFile: pflag.String(
			"event-file",
			os.Getenv("GITHUB_EVENT_PATH"),
			"path to a file containing the GitHub event payload",
		),
	}

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]... MODE\n", appName)
		fmt.Fprintf(os.Stderr, "Review, approve and merge module registry pull requests.\n")
		fmt.Fprintf(os.Stderr, "\nModes:\n")
		for _, m := range bot.Modes {
			fmt.Fprintf(os.Stderr, "  %s\n", m)
		}
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()
}

func mustParseCfg() *cfg.Config {
	// we use exitOnErr in this function instead of logger.Fatal() because
	// the logger is not initialized yet

	file, err := os.Open(*args.ConfigFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || *args.ConfigFile != defConfigFile {
			exitOnErr("could not open configuration file", err)
		}

		config, err := cfg.Load(nil)
		exitOnErr("could not load configuration from environment", err)

		return config
	}
	defer file.Close()

	config, err := cfg.Load(file)
	if err != nil {
		exitOnErr(fmt.Sprintf("could not load configuration file: %s", *args.ConfigFile), err)
	}

	return config
}

func initLogFmtLogger(config *cfg.Config, logLevel zapcore.Level) *zap.Logger {
	cfg := zapEncoderConfig(config)

	logger := zap.New(zapcore.NewCore(
		zaplogfmt.NewEncoder(cfg),
		os.Stdout,
		logLevel),
	)

	return logger
}

func zapEncoderConfig(config *cfg.Config) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()

	cfg.LevelKey = "loglevel"
	cfg.TimeKey = config.LogTimeKey
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder

	return cfg
}

func mustInitZapFormatLogger(config *cfg.Config, logLevel zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.EncoderConfig = zapEncoderConfig(config)
	cfg.OutputPaths = []string{"stdout"}
	cfg.Encoding = config.LogFormat
	cfg.Level = zap.NewAtomicLevelAt(logLevel)

	logger, err := cfg.Build()
	exitOnErr("could not initialize logger", err)

	return logger
}

func mustInitLogger(config *cfg.Config) {
	var logLevel zapcore.Level
	if *args.Verbose {
		logLevel = zapcore.DebugLevel
	} else {
		if err := (&logLevel).Set(config.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "can not set log level to %q: %s \n", config.LogLevel, err)
			os.Exit(2)
		}
	}

	switch config.LogFormat {
	case "logfmt":
		logger = initLogFmtLogger(config, logLevel)
	case "console", "json":
		logger = mustInitZapFormatLogger(config, logLevel)
	default:
		fmt.Fprintf(os.Stderr, "unsupported log-format argument: %q\n", config.LogFormat)
		os.Exit(2)
	}

	logger = logger.Named("main")
	zap.ReplaceGlobals(logger)

	goodbye.Register(func(context.Context, os.Signal) {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "flushing logs failed: %s\n", err)
		}
	})
}

func hide(in string) string {
	if in == "" {
		return in
	}

	return "**hidden**"
}

func mustParseMode() bot.Mode {
	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	mode, err := bot.ParseMode(pflag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		pflag.Usage()
		os.Exit(2)
	}

	return mode
}

func mustParseEvent() *webhook.Event {
	if *args.EventFile == "" {
		return nil
	}

	if *args.EventName == "" {
		fmt.Fprintln(os.Stderr, "ERROR: --event-name or GITHUB_EVENT_NAME must be set when an event file is passed")
		os.Exit(2)
	}

	ev, err := webhook.ParseEventFile(*args.EventName, *args.EventFile)
	if err != nil {
		logger.Fatal(
			"could not parse event file",
			logfields.Event("event_file_parsing_failed"),
			zap.String("event_file", *args.EventFile),
			zap.Error(err),
		)
	}

	return ev
}

func pushMetrics(config *cfg.Config, mode bot.Mode) {
	if config.Metrics.PushgatewayURL == "" {
		return
	}

	err := push.New(config.Metrics.PushgatewayURL, appName).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("mode", string(mode)).
		Push()
	if err != nil {
		logger.Warn(
			"pushing metrics to pushgateway failed",
			logfields.Event("metrics_push_failed"),
			zap.String("pushgateway_url", config.Metrics.PushgatewayURL),
			zap.Error(err),
		)
	}
}

func serve(config *cfg.Config, b *bot.Bot) {
	if config.Server.HTTPListenAddr == "" {
		fmt.Fprintln(os.Stderr, "ERROR: server.http_listen_addr must be defined in serve mode")
		os.Exit(1)
	}

	evLoop := bot.NewEventLoop(b, cfg.Duration(config.Server.PeriodicReviewInterval))

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(resp http.ResponseWriter, _ *http.Request) {
		resp.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Method(
		http.MethodPost,
		config.Server.WebhookEndpoint,
		webhook.New(evLoop.C(), webhook.WithPayloadSecret(config.Server.WebhookSecret)),
	)

	logger.Info(
		"registered github webhook event http endpoint",
		logfields.Event("github_http_handler_registered"),
		zap.String("endpoint", config.Server.WebhookEndpoint),
	)

	startHTTPServer(config.Server.HTTPListenAddr, router)

	go func() {
		defer panicHandler()
		evLoop.Start()
	}()

	goodbye.Register(func(context.Context, os.Signal) {
		logger.Debug(
			"stopping event loop",
			logfields.Event("event_loop_stopping"),
		)
		evLoop.Stop()
	})

	// goodbye terminates the process when a signal is received
	select {}
}

func main() {
	defer panicHandler()

	defer goodbye.Exit(context.Background(), 1)
	goodbye.Notify(context.Background())

	mustParseCommandlineParams()

	if *args.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		os.Exit(0) // nolint:gocritic // defer functions won't run
	}

	mode := mustParseMode()
	config := mustParseCfg()

	mustInitLogger(config)

	logger.Info(
		"loaded cfg",
		logfields.Event("cfg_loaded"),
		logfields.Mode(string(mode)),
		zap.String("cfg_file", *args.ConfigFile),
		zap.String("repository", config.Repository),
		zap.String("stable_branch", config.StableBranch),
		zap.String("github_api_token", hide(config.GithubAPIToken)),
		zap.String("webhook_secret", hide(config.Server.WebhookSecret)),
		zap.Bool("dry_run", config.DryRun),
		zap.String("log_format", config.LogFormat),
		zap.String("log_level", config.LogLevel),
		zap.String("gate_workflow_path", config.Gate.WorkflowPath),
		zap.Bool("gate_disabled", config.Gate.Disabled),
		zap.String("pr_filter_query", config.Review.PRFilterQuery),
		zap.String("pushgateway_url", config.Metrics.PushgatewayURL),
	)

	var githubClient githubclt.API = githubclt.New(config.GithubAPIToken)
	if config.DryRun {
		githubClient = githubclt.NewDryClient(githubClient, logger)
	}

	b, err := bot.New(githubClient, config)
	if err != nil {
		logger.Fatal("initializing bot failed", logfields.Event("bot_init_failed"), zap.Error(err))
	}

	if mode == bot.ModeServe {
		serve(config, b)
		return
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	goodbye.Register(func(_ context.Context, sig os.Signal) {
		logger.Info(fmt.Sprintf("terminating, received signal %s", sig.String()))
		cancelFn()
		b.Stop()
	})

	err = b.Run(ctx, mode, &bot.Request{
		PullRequest: *args.PullRequest,
		Event:       mustParseEvent(),
		Output:      os.Stdout,
	})

	pushMetrics(config, mode)

	if err != nil {
		logger.Error(
			"execution failed",
			logfields.Event("mode_failed"),
			logfields.Mode(string(mode)),
			zap.Error(err),
		)

		goodbye.Exit(context.Background(), 1)
	}

	logger.Info("finished", logfields.Event("mode_finished"), logfields.Mode(string(mode)))
	goodbye.Exit(context.Background(), 0)
}
