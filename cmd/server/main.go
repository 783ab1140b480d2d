package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"arguematch/config"
	"arguematch/db"
	"arguematch/internal/debate"
	"arguematch/services"
	"arguematch/websocket"
)

var rootCmd = &cobra.Command{
	Use:   "arguematch",
	Short: "Real-time matchmaking and timed debates between two participants",
	RunE:  runServer,
}

var (
	flagConfig string
	flagPort   int
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", config.DefaultPath, "path to the YAML config file")
	flags.IntVar(&flagPort, "port", 0, "HTTP port, overrides server.port")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute arguematch command")
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if errors.Is(err, os.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
		log.Warn().Str("path", flagConfig).Msg("[server] no config file, using defaults")
		return config.Default(), nil
	}
	return cfg, err
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flagPort > 0 {
		cfg.Server.Port = flagPort
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := services.Options{
		Timer: services.TimerConfig{
			SettleDelay: time.Duration(cfg.Debate.SettleDelaySeconds) * time.Second,
			PhasePause:  time.Duration(cfg.Debate.PhasePauseSeconds) * time.Second,
			Tick:        time.Second,
		},
		RelayMode: services.RelayMode(cfg.Debate.RelayMode),
		Topics:    cfg.Debate.Topics,
	}

	// Match archive is optional
	if cfg.Database.URI != "" {
		if err := db.ConnectMongoDB(ctx, cfg.Database.URI, cfg.Database.Name); err != nil {
			return err
		}
		defer db.DisconnectMongoDB(context.Background())
		opts.Archive = db.NewMatchArchive(db.MongoDatabase)
	}

	// Room event stream is optional
	if cfg.Redis.Addr != "" {
		rdb, err := debate.InitRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		publisher := debate.NewStreamPublisher(rdb, 0)
		go publisher.Run(ctx)
		opts.Events = publisher
	}

	hub := websocket.NewHub()
	coordinator := services.NewCoordinator(hub, opts)
	router := setupRouter(cfg, hub, coordinator)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil && err != context.Canceled {
			log.Warn().Err(err).Msg("[server] shutdown error")
		}
	}()

	log.Info().Int("port", cfg.Server.Port).Str("relay", cfg.Debate.RelayMode).Msg("[server] starting")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	log.Info().Msg("[server] shutdown complete")
	return nil
}
