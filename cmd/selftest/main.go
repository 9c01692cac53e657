package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "embed"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/selftest/internal/handler"
	appI18n "github.com/pavelanni/selftest/internal/i18n"
	"github.com/pavelanni/selftest/internal/importer"
	"github.com/pavelanni/selftest/internal/llm"
	"github.com/pavelanni/selftest/internal/llm/prompts"
	"github.com/pavelanni/selftest/internal/session"
	"github.com/pavelanni/selftest/internal/store"
)

//go:embed demo.yaml
var demoExam []byte

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading .env file", "error", err)
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "selftest",
		Short:        "Timed self-test exams with bookmarks, saved sessions and review",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, importCmd(), listCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `selftest --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// addCommonFlags registers the flags every command reads.
func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("db", "selftest.db", "SQLite database path")
	f.StringP("lang", "l", "en", "Message language (en, ru)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local JSON API",
		RunE:  runServe,
	}
	addCommonFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", "127.0.0.1:8080", "HTTP listen address")
	f.String("password", "", "API password; empty keeps the stored one (or set SELFTEST_PASSWORD)")
	f.Bool("demo", true, "Add the demo exam on first run")
	f.Duration("tick", time.Second, "Countdown tick interval")
	f.String("llm-url", "", "OpenAI-compatible API base URL; empty disables explanation drafts")
	f.String("llm-key", "", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("prompt-variant", string(prompts.PromptStandard), "Explanation prompt variant (concise, standard, detailed)")
	f.String("prompts-dir", "", "Directory with explain_<variant>.txt templates overriding the built-in ones")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("SELFTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("selftest")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/selftest")
	v.AddConfigPath("/etc/selftest")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// openStore opens the database and loads the message catalog.
func openStore(v *viper.Viper) (*store.Store, error) {
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}
	if err := checkLang(lang); err != nil {
		return nil, err
	}
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// checkLang fails when lang has no message file.
func checkLang(lang string) error {
	var names []string
	for _, tag := range appI18n.Supported() {
		if strings.EqualFold(tag.String(), lang) {
			return nil
		}
		names = append(names, tag.String())
	}
	return fmt.Errorf("unsupported language %q (available: %s)", lang, strings.Join(names, ", "))
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(v)
	if err != nil {
		return err
	}
	defer db.Close()

	im, err := importer.New(db, afero.NewOsFs())
	if err != nil {
		return fmt.Errorf("create importer: %w", err)
	}

	if v.GetBool("demo") {
		if err := seedDemo(ctx, db, im); err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
	}
	if pw := v.GetString("password"); pw != "" {
		if err := db.SetPassword(ctx, pw); err != nil {
			return fmt.Errorf("set password: %w", err)
		}
		slog.Info("API password updated")
	}

	ctl := session.New(db,
		session.WithImporter(im),
		session.WithLogger(slog.Default()),
		session.WithTick(v.GetDuration("tick")),
	)
	if err := ctl.Load(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	defer ctl.Close()

	drafter, err := newDrafter(v)
	if err != nil {
		return err
	}

	examCount, err := db.ExamCount(ctx)
	if err != nil {
		return fmt.Errorf("count exams: %w", err)
	}
	auth, err := db.HasPassword(ctx)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	h := handler.New(ctl, db, im, drafter)
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"lang", v.GetString("lang"),
		"exams", examCount,
		"auth", auth,
		"llm", drafter != nil,
	)
	fmt.Fprintln(cmd.OutOrStdout(), appI18n.T(ctx, "AppTitle")+": "+
		appI18n.Td(ctx, "ServerListening", map[string]any{"Addr": addr}))

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}
	return nil
}

// newDrafter returns nil when no LLM endpoint is configured.
func newDrafter(v *viper.Viper) (handler.Drafter, error) {
	url := v.GetString("llm-url")
	if url == "" {
		return nil, nil
	}
	if dir := v.GetString("prompts-dir"); dir != "" {
		if err := prompts.Load(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("load prompts: %w", err)
		}
	} else if err := prompts.LoadDefault(); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	variant := strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant")))
	if !prompts.IsValidVariant(variant) {
		slog.Warn("invalid prompt-variant, using standard", "variant", variant)
		variant = string(prompts.PromptStandard)
	}
	slog.Info("explanation drafts enabled", "url", url, "model", v.GetString("llm-model"), "variant", variant)
	return llm.New(url, v.GetString("llm-key"), v.GetString("llm-model"), prompts.PromptVariant(variant)), nil
}

func seedDemo(ctx context.Context, db *store.Store, im *importer.Importer) error {
	exam, problems := im.Parse("demo.yaml", demoExam)
	if len(problems) > 0 {
		return fmt.Errorf("demo exam: %s", strings.Join(problems, "; "))
	}
	seeded, err := db.SeedDemo(ctx, exam)
	if err != nil {
		return err
	}
	if seeded {
		slog.Info("seeded demo exam", "filename", exam.Filename, "questions", len(exam.Test))
	}
	return nil
}
