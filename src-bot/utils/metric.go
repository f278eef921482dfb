package utils

import (
	"errors"
	"time"

	"racbot/src-bot/api"
)

type APISample struct {
	Endpoint string
	Outcome  string
	Latency  float64
}

type CommandSample struct {
	Command string
	Outcome string
	Latency float64
}

// Metric carries samples to the collectors started by metric.Init.
// Sends never block; samples are dropped when nothing is collecting.
type Metric struct {
	DiscordSendMessage chan float64
	APIRequest         chan APISample
	CommandInvocation  chan CommandSample
}

func NewMetric() *Metric {
	return &Metric{
		DiscordSendMessage: make(chan float64, 64),
		APIRequest:         make(chan APISample, 64),
		CommandInvocation:  make(chan CommandSample, 64),
	}
}

func (m *Metric) ObserveSend(took time.Duration) {
	select {
	case m.DiscordSendMessage <- float64(took.Microseconds()):
	default:
	}
}

func (m *Metric) ObserveCommand(name, outcome string, took time.Duration) {
	select {
	case m.CommandInvocation <- CommandSample{Command: name, Outcome: outcome, Latency: float64(took.Microseconds())}:
	default:
	}
}

// ObserveAPI has the shape of api.Observer.
func (m *Metric) ObserveAPI(name api.EndpointName, took time.Duration, err error) {
	outcome := "ok"
	var failure *api.Failure
	if errors.As(err, &failure) {
		outcome = failure.Kind.String()
	} else if err != nil {
		outcome = "error"
	}
	select {
	case m.APIRequest <- APISample{Endpoint: string(name), Outcome: outcome, Latency: float64(took.Microseconds())}:
	default:
	}
}
