package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"studytracker/internal/api"
	"studytracker/internal/catalog"
	"studytracker/internal/config"
	"studytracker/internal/logging"
	"studytracker/internal/pdf"
	"studytracker/internal/session"
	"studytracker/internal/storage"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:           "studytracker",
		Short:         "Lernfortschritt nach Fach und Thema verfolgen",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "config.json", "Pfad zur Konfigurationsdatei")
	flags.String("port", "", "Server-Port")
	flags.String("backend", "", "Persistenz: none, sheet, sqlite oder postgres")
	_ = v.BindPFlag("server_port", flags.Lookup("port"))
	_ = v.BindPFlag("backend", flags.Lookup("backend"))

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msg("📚 STUDY TRACKER - Start")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// Lehrplan laden
	seed := catalog.DefaultSeed()
	if cfg.SeedPath != "" {
		custom, err := pdf.NewParser().SeedFromFile(cfg.SeedPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.SeedPath).Msg("Lehrplan nicht lesbar, verwende Standard")
		} else {
			seed = custom
		}
	}
	log.Info().Int("subjects", len(seed.Subjects)).Int("topics", seed.TopicCount()).Msg("Lehrplan geladen")

	// Persistenz initialisieren
	backend, err := storage.Open(cfg)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Backend).Msg("Backend konnte nicht initialisiert werden")
		return err
	}

	hub := api.NewHub(log)
	sess := session.New(seed, backend,
		session.WithPublisher(hub),
		session.WithLogger(log),
		session.WithExportSheet(cfg.Worksheet),
	)
	defer sess.Close()

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := sess.Open(loadCtx); err != nil {
		log.Warn().Msg("⚠️  Gespeicherter Katalog nicht lesbar, Sitzung startet mit dem Lehrplan")
	}
	cancel()

	handler := api.NewHandler(sess, hub, cfg, log)
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info().Msg("⏹️  Server wird heruntergefahren...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logStartup(log, cfg, backend.Name())

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Server-Fehler")
		return err
	}
	return nil
}

func logStartup(log zerolog.Logger, cfg *config.Config, backend string) {
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Str("addr", "http://localhost:"+cfg.ServerPort).Msg("✅ Server läuft")
	log.Info().Str("backend", backend).Msg("💾 Persistenz")
	log.Info().Msg("💡 Drücke Strg+C zum Beenden")
}
