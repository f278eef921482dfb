package metric

import (
	"log/slog"
	"time"

	"racbot/src-bot/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// register tolerates collectors left over from an earlier Init.
func register(c prometheus.Collector, name string) bool {
	if err := prometheus.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register metric", "metric", name, "error", err)
			return false
		}
	}
	slog.Debug("metric registered", "metric", name)
	return true
}

func unregister(c prometheus.Collector, name string) {
	switch prometheus.Unregister(c) {
	case true:
		slog.Debug("metric unregistered", "metric", name)
	case false:
		slog.Warn("metric not registered", "metric", name)
	}
}

func apiPing(as *utils.AppState, tickerInterval *time.Duration) {
	name := "racbot_api_ping_microsec"
	apiPing := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The round trip of the API ping endpoint in microseconds",
	})
	if register(apiPing, name) {
		apiPing.Set(0)
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(*tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(apiPing, name)
				return
			case <-ticker.C:
				if as.Flags.Disabled() {
					apiPing.Set(0)
					continue
				}
				latency, err := ping(as)
				if err != nil {
					slog.Debug("can't get api latency", "error", err)
					apiPing.Set(0)
					continue
				}
				apiPing.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

func apiRequest(as *utils.AppState, clearTickerInterval *time.Duration) {
	latencyName := "racbot_api_request_microsec"
	latency := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: latencyName,
		Help: "The latency of the last API request per endpoint in microseconds",
	}, []string{"endpoint"})
	totalName := "racbot_api_requests_total"
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: totalName,
		Help: "API requests that reached the network, by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	register(latency, latencyName)
	register(total, totalName)

	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(*clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(latency, latencyName)
				unregister(total, totalName)
				return
			case sample := <-as.MetricChans.APIRequest:
				latency.WithLabelValues(sample.Endpoint).Set(sample.Latency)
				total.WithLabelValues(sample.Endpoint, sample.Outcome).Inc()
				clearTicker.Reset(*clearTickerInterval)
			case <-clearTicker.C:
				latency.Reset()
			}
		}
	}()
}

func commandInvocation(as *utils.AppState) {
	name := "racbot_command_invocations_total"
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: "Command invocations by command and outcome class",
	}, []string{"command", "outcome"})
	durationName := "racbot_command_duration_seconds"
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    durationName,
		Help:    "Time from admission to outcome per command",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})
	register(total, name)
	register(duration, durationName)

	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(total, name)
				unregister(duration, durationName)
				return
			case sample := <-as.MetricChans.CommandInvocation:
				total.WithLabelValues(sample.Command, sample.Outcome).Inc()
				duration.WithLabelValues(sample.Command).Observe(sample.Latency / 1e6)
			}
		}
	}()
}

func discordSendMessage(as *utils.AppState, clearTickerInterval *time.Duration) {
	name := "racbot_discord_send_message_microsec"
	discordSendMessage := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The latency of a discord message send in microseconds",
	})
	if register(discordSendMessage, name) {
		discordSendMessage.Set(0)
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(*clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(discordSendMessage, name)
				return
			case latency := <-as.MetricChans.DiscordSendMessage:
				discordSendMessage.Set(latency)
				clearTicker.Reset(*clearTickerInterval)
			case <-clearTicker.C:
				discordSendMessage.Set(0)
			}
		}
	}()
}

func discordHeartbeatLatency(as *utils.AppState, tickerInterval *time.Duration) {
	name := "racbot_discord_heartbeat_latency_microsec"
	discordHeartbeatLatency := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The latency of a discord heartbeat in microseconds",
	})
	if register(discordHeartbeatLatency, name) {
		discordHeartbeatLatency.Set(0)
	}
	go func() {
		ticker := time.NewTicker(*tickerInterval)
		defer ticker.Stop()
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(discordHeartbeatLatency, name)
				return
			case <-ticker.C:
				latency := as.DgSession.HeartbeatLatency().Microseconds()
				discordHeartbeatLatency.Set(float64(latency))
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.MetricCollectionInterval
	clearTickerInterval := as.Config.MetricCollectionInterval * 2

	apiPing(as, &tickerInterval)
	apiRequest(as, &clearTickerInterval)
	commandInvocation(as)
	discordSendMessage(as, &clearTickerInterval)
	discordHeartbeatLatency(as, &tickerInterval)
}
