package main

import (
	"os"

	"iotagateway/internal/analytics"
	"iotagateway/internal/arbitrage"
	"iotagateway/internal/chain"
	"iotagateway/internal/config"
	"iotagateway/internal/defi"
	"iotagateway/internal/dispatch"
	"iotagateway/internal/gas"
	"iotagateway/internal/historian"
	"iotagateway/internal/logger"
	"iotagateway/internal/token"
)

// Gateway wires every component (C1-C8) and exposes the closed tool/resource
// set through whatever protocol transport embeds this binary (spec §1 places
// that framing out of scope, so none is implemented here).
type Gateway struct {
	cfg      *config.Config
	log      logger.Logger
	chains   *chain.Registry
	dispatch *dispatch.Dispatcher
	server   *registerLog
}

// NewGateway constructs the gateway from cfg: the chain registry, every
// read-surface component built over it, and the dispatcher that binds them
// to the closed tool/resource set.
func NewGateway(cfg *config.Config) (*Gateway, error) {
	lg := logger.New("iotagateway", cfg.Log.Level)

	registry := chain.New(cfg, lg)

	tokens, err := token.NewReader(registry, lg)
	if err != nil {
		return nil, err
	}
	gatherer := analytics.NewGatherer(registry, tokens, lg)
	gasEngine := gas.NewEngine(registry, lg)
	scanner := historian.NewScanner(registry, lg)
	pools := arbitrage.NewRegistry()
	arb := arbitrage.NewEngine(registry, tokens, pools, lg)
	staking := defi.PlaceholderStakingProvider{}

	d := dispatch.New(registry, tokens, gatherer, gasEngine, scanner, arb, staking, lg)

	return &Gateway{
		cfg:      cfg,
		log:      lg,
		chains:   registry,
		dispatch: d,
		server:   newRegisterLog(lg),
	}, nil
}

// Run registers the closed tool/resource set and blocks until Stop is
// called from the signal handler.
func (gw *Gateway) Run() {
	gw.dispatch.RegisterAll(gw.server, gw.server)
	gw.log.Noticef("iotagateway initialized: %d tools, %d resources registered across %d networks",
		len(gw.server.tools), len(gw.server.resources), len(gw.chains.List()))
	gw.log.Notice("gateway is a library surface embedded by a protocol transport; idling")
	select {}
}

// Stop logs a clean shutdown. There is no listener or connection pool to
// release here; the transport embedding this gateway owns that lifecycle.
func (gw *Gateway) Stop() {
	gw.log.Notice("iotagateway shutting down")
	os.Exit(0)
}

// registerLog is the process's ToolServer/ResourceServer: since spec.md
// explicitly places the protocol framing out of scope, it only records what
// was registered rather than serving any transport. A real embedding
// (JSON-over-stdio, JSON-over-HTTP) replaces it with its own implementation
// of the same two interfaces.
type registerLog struct {
	log       logger.Logger
	tools     map[string]dispatch.ToolHandler
	resources map[string]dispatch.ResourceHandler
}

func newRegisterLog(log logger.Logger) *registerLog {
	return &registerLog{log: log, tools: map[string]dispatch.ToolHandler{}, resources: map[string]dispatch.ResourceHandler{}}
}

func (r *registerLog) RegisterTool(name, description string, schema dispatch.Schema, handler dispatch.ToolHandler) {
	r.tools[name] = handler
	r.log.Debugf("registered tool %s", name)
}

func (r *registerLog) RegisterResource(name, uriTemplate string, handler dispatch.ResourceHandler) {
	r.resources[name] = handler
	r.log.Debugf("registered resource %s (%s)", name, uriTemplate)
}
