package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// EndpointName is the canonical identifier of a remote operation.
type EndpointName string

const (
	AIGeminiCreate      EndpointName = "ai.gemini.create"
	AIModerationText    EndpointName = "ai.moderation.text"
	AIImagineCreate     EndpointName = "ai.imagine.create"
	AICaiCreate         EndpointName = "ai.cai.create"
	AICaiHistory        EndpointName = "ai.cai.history"
	BotCommandsUpload   EndpointName = "bot.commands.upload"
	UtilityPing         EndpointName = "utility.ping"
	UtilityUsage        EndpointName = "utility.usage"
	FunWordcloud        EndpointName = "fun.wordcloud"
	IISRTempBanCreate   EndpointName = "iisr.tempban.create"
	IISRPermBanCreate   EndpointName = "iisr.permban.create"
	RoGuessrShutdown    EndpointName = "roguessr.server.shutdown"
	RoGuessrInfo        EndpointName = "roguessr.server.info"
	RoGuessrAnnounce    EndpointName = "roguessr.server.announce"
	RoGuessrAnnounceAll EndpointName = "roguessr.server.announce-all"
	RoGuessrMaps        EndpointName = "roguessr.game.maps"
	RoGuessrChangeMap   EndpointName = "roguessr.game.change-map"
)

var ErrUnknownEndpoint = errors.New("unknown endpoint")

type route struct {
	method string
	path   string
}

// the closed set of operations the bot knows about
var routes = map[EndpointName]route{
	AIGeminiCreate:      {http.MethodPost, "ai/gemini/create"},
	AIModerationText:    {http.MethodPost, "ai/moderation/text"},
	AIImagineCreate:     {http.MethodPost, "ai/imagine/create"},
	AICaiCreate:         {http.MethodPost, "ai/cai/create"},
	AICaiHistory:        {http.MethodGet, "ai/cai/history"},
	BotCommandsUpload:   {http.MethodPost, "bot/commands/upload"},
	UtilityPing:         {http.MethodGet, "utilities/ping"},
	UtilityUsage:        {http.MethodGet, "utilities/usage"},
	FunWordcloud:        {http.MethodPost, "fun1/wordcloud"},
	IISRTempBanCreate:   {http.MethodPost, "iisr/bans/temp"},
	IISRPermBanCreate:   {http.MethodPost, "iisr/bans/perm"},
	RoGuessrShutdown:    {http.MethodDelete, "roguessr/server/shutdown"},
	RoGuessrInfo:        {http.MethodGet, "roguessr/server/info"},
	RoGuessrAnnounce:    {http.MethodGet, "roguessr/server/announce"},
	RoGuessrAnnounceAll: {http.MethodGet, "roguessr/server/announce-all"},
	RoGuessrMaps:        {http.MethodGet, "roguessr/game/maps"},
	RoGuessrChangeMap:   {http.MethodPatch, "roguessr/game/map"},
}

// Endpoint is one resolved remote operation. It is never mutated after
// the registry is built.
type Endpoint struct {
	Name    EndpointName
	URL     string
	Method  string
	headers map[string]string
}

// Headers returns a copy of the endpoint's default headers.
func (e Endpoint) Headers() map[string]string {
	h := make(map[string]string, len(e.headers))
	for k, v := range e.headers {
		h[k] = v
	}
	return h
}

// Registry maps endpoint names to absolute URLs and header templates.
type Registry struct {
	endpoints map[EndpointName]Endpoint
}

// NewRegistry joins every known route onto baseURL. token and userAgent
// become the default Authorization and User-Agent headers.
func NewRegistry(baseURL, token, userAgent string) (*Registry, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("NewRegistry: invalid base url: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("NewRegistry: base url %q is not absolute", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = token
	}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}

	r := &Registry{endpoints: make(map[EndpointName]Endpoint, len(routes))}
	for name, rt := range routes {
		ref, err := url.Parse(rt.path)
		if err != nil {
			return nil, fmt.Errorf("NewRegistry: invalid path for %s: %w", name, err)
		}
		r.endpoints[name] = Endpoint{
			Name:    name,
			URL:     base.ResolveReference(ref).String(),
			Method:  rt.method,
			headers: headers,
		}
	}
	return r, nil
}

// Resolve looks up an endpoint by name.
func (r *Registry) Resolve(name EndpointName) (Endpoint, error) {
	ep, ok := r.endpoints[name]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrUnknownEndpoint, name)
	}
	return ep, nil
}

// Names returns every registered endpoint name in sorted order.
func (r *Registry) Names() []EndpointName {
	names := make([]EndpointName, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
