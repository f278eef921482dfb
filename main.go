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
	"time"

	"racbot/src-bot/api"
	"racbot/src-bot/handler"
	"racbot/src-bot/handler/ai_handler"
	"racbot/src-bot/handler/fun_handler"
	"racbot/src-bot/handler/iisr_handler"
	"racbot/src-bot/handler/roguessr_handler"
	"racbot/src-bot/metric"
	"racbot/src-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var logLevel = new(slog.LevelVar)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	logLevel.Set(slog.LevelDebug)
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	root := &cobra.Command{
		Use:          "racbot",
		Short:        "Run the RAC Discord bot",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run()
		},
	}
	root.AddCommand(newEndpointsCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newEndpointsCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "List the API endpoints the bot calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := api.NewRegistry(baseURL, "", "")
			if err != nil {
				return err
			}
			for _, name := range registry.Names() {
				ep, err := registry.Resolve(name)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-30s %-7s %s\n", name, ep.Method, ep.URL)
			}
			return nil
		},
	}
	defaultURL := os.Getenv("API_BASE_URL")
	if defaultURL == "" {
		defaultURL = "https://api.rac-corp.net/"
	}
	cmd.Flags().StringVar(&baseURL, "base-url", defaultURL, "API base URL")
	return cmd
}

func run() error {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return err
	}
	level, err := utils.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logLevel.Set(level)

	as, err := utils.NewAppState(cfg)
	if err != nil {
		return err
	}

	// fill the command table
	handler.Ping(as)
	handler.Usage(as)
	handler.Invite(as)
	handler.CharInfo(as)
	handler.Maintenance(as)
	handler.Help(as)
	fun_handler.Init(as)
	ai_handler.Init(as)
	iisr_handler.Init(as)
	roguessr_handler.Init(as)

	as.DgSession.AddHandler(as.Router.OnMessageCreate)
	as.DgSession.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i == nil || i.Interaction == nil {
			return
		}
		if i.Type == discordgo.InteractionApplicationCommand {
			as.Router.HandleInteraction(context.Background(), s, i)
			return
		}
		// buttons and modals from messages sent by an earlier run
		if err := utils.InteractRespHiddenReply(s, i, "Expired interaction"); err != nil {
			slog.Warn("can't respond", "error", err)
		}
		slog.Debug("unhandled interaction", "type", i.Type.String())
	})
	as.DgSession.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		slog.Info("ready", "user", r.User.Username, "guilds", len(r.Guilds))
	})

	// open a connection to Discord
	if err := as.DgSession.Open(); err != nil {
		return fmt.Errorf("can't open discord session: %w", err)
	}

	clientID := cfg.DiscordClientID
	if clientID == "" && as.DgSession.State.User != nil {
		clientID = as.DgSession.State.User.ID
	}
	if _, err := as.DgSession.ApplicationCommandBulkOverwrite(
		clientID,
		cfg.DiscordGuildID,
		as.Router.ApplicationCommands(),
	); err != nil {
		slog.Error("can't create slash commands", "error", err)
	}

	if !as.Flags.Disabled() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout)
			defer cancel()
			if err := handler.UploadCommands(ctx, as); err != nil {
				slog.Warn("can't upload command list", "error", err)
			}
		}()
	}

	go metric.Init(as)

	// http server
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           muxer,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "commands", len(as.Router.Commands()))

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan
	slog.Info("Gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("can't shut the HTTP server down", "error", err)
	}
	as.GracefulShutdown()
	return nil
}
