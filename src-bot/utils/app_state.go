package utils

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"racbot/src-bot/api"
	"racbot/src-bot/command"

	"github.com/bwmarrin/discordgo"
)

type AppState struct {
	Config    *Config
	DgSession *discordgo.Session
	// shared by every command; its resty client is the connection pool
	API    *api.Client
	Router *command.Router
	Flags  *FeatureFlags

	MetricChans        *Metric
	AppCloseSignalChan chan os.Signal

	startTime             time.Time
	gracefulShutdownMu    sync.Mutex
	gracefulShutdownChans []chan struct{}
}

// NewAppState wires the session, API client and router from cfg. The
// session isn't opened.
func NewAppState(cfg *Config) (*AppState, error) {
	as := &AppState{
		Config:             cfg,
		Flags:              NewFeatureFlags(cfg.APIDisabled),
		MetricChans:        NewMetric(),
		AppCloseSignalChan: make(chan os.Signal, 1),
		startTime:          time.Now(),
	}

	session, err := discordgo.New("Bot " + cfg.DiscordAppToken)
	if err != nil {
		return nil, fmt.Errorf("NewAppState: can't create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent
	as.DgSession = session

	registry, err := api.NewRegistry(cfg.APIBaseURL, cfg.APIKey, cfg.APIUserAgent)
	if err != nil {
		return nil, fmt.Errorf("NewAppState: %w", err)
	}
	okStatus := api.DefaultOKStatusSet()
	if len(cfg.APIOKStatus) > 0 {
		okStatus = api.NewOKStatusSet(cfg.APIOKStatus...)
	}
	as.API = api.NewClient(registry,
		api.WithOKStatusSet(okStatus),
		api.WithTimeout(cfg.APITimeout),
		api.WithSwitch(as.Flags),
		api.WithObserver(as.MetricChans.ObserveAPI),
		api.WithLogger(slog.Default().With("component", "api")),
	)

	as.Router = command.NewRouter(command.Options{
		Prefix:     cfg.CommandPrefix,
		OperatorID: cfg.OwnerID,
		Moderators: cfg.ModUsernames,
		Deadline:   cfg.APITimeout,
		Observer:   as.MetricChans,
		Logger:     slog.Default(),
	})
	return as, nil
}

func (as *AppState) AddCommand(cmds ...*command.Command) {
	as.Router.Register(cmds...)
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startTime).Round(time.Second)
}

// CreateGracefulShutdownChan returns a channel closed by GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return &ch
}

func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
	if as.DgSession != nil {
		if err := as.DgSession.Close(); err != nil {
			slog.Warn("can't close discord session", "error", err)
		}
	}
}
