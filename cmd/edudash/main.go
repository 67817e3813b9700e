package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/edudash/edudash/cmd/edudash/cli"
	"github.com/edudash/edudash/internal/access"
	"github.com/edudash/edudash/internal/app"
	"github.com/edudash/edudash/internal/auth"
	"github.com/edudash/edudash/internal/guard"
	"github.com/edudash/edudash/internal/observability"
	"github.com/edudash/edudash/internal/platform/cache"
	"github.com/edudash/edudash/internal/school"
	"github.com/edudash/edudash/internal/shared"
)

func main() {
	if len(os.Args) > 1 {
		os.Exit(runCommand(os.Args[1], os.Args[2:]))
	}

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	if err := serve(); err != nil {
		slog.Default().Error("edudash", slog.Any("error", err))
		os.Exit(1)
	}
}

func runCommand(name string, args []string) int {
	rules := cli.NewRulesCLI(access.DefaultPolicy())
	switch name {
	case "serve":
		if err := serve(); err != nil {
			slog.Default().Error("edudash", slog.Any("error", err))
			return 1
		}
		return 0
	case "rules":
		var opts cli.RulesOptions
		if code, ok := parseFlags(rulesFlags(&opts), args); !ok {
			return code
		}
		return rules.RulesCommand(opts)
	case "check":
		var opts cli.CheckOptions
		if code, ok := parseFlags(checkFlags(&opts), args); !ok {
			return code
		}
		return rules.CheckCommand(opts)
	default:
		_, _ = fmt.Fprintf(os.Stderr, "edudash: unknown command %q (want serve, rules or check)\n", name)
		return 2
	}
}

func rulesFlags(opts *cli.RulesOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("rules", pflag.ContinueOnError)
	fs.StringVarP(&opts.Role, "role", "r", "", "only show this role")
	fs.BoolVar(&opts.JSONOutput, "json", false, "print JSON")
	return fs
}

func checkFlags(opts *cli.CheckOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	fs.StringVarP(&opts.Role, "role", "r", "", "principal role (empty for anonymous)")
	fs.StringVar(&opts.PrincipalID, "id", "", "principal id")
	fs.StringVarP(&opts.Kind, "kind", "k", "", "resource kind")
	fs.StringVarP(&opts.Action, "action", "a", "read", "action")
	fs.StringVar(&opts.OwnerID, "owner", "", "record owner id")
	return fs
}

// parseFlags reports ok when the command should run. Otherwise code is the
// exit status: 0 after --help, 2 on a usage error.
func parseFlags(fs *pflag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	policy, err := access.NewPolicy(access.DefaultRules(), access.WithObserver(metrics.ObserveAccess))
	if err != nil {
		return fmt.Errorf("access policy: %w", err)
	}

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	guards := guard.Middleware{
		Logger: logger,
		OnDecision: func(r *http.Request, outcome guard.Outcome) {
			metrics.ObserveGuard(r, outcome.Decision.String())
		},
	}

	authHandler := auth.NewHandler(logger, auth.NewService(policy), sessionManager, csrfManager)
	schoolService := school.NewService(school.NewSeededRepository(), policy)
	schoolHandler := school.NewHandler(logger, schoolService, policy, guards)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		SchoolHandler:  schoolHandler,
		Metrics:        metrics,
		Redis:          redisClient,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
