package chain

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"iotagateway/internal/apperrors"
	"iotagateway/internal/config"
	"iotagateway/internal/logger"
)

// Registry resolves network names/chain ids to a descriptor and a lazily
// initialized client. It is built once at startup from a static table;
// extending it to a new network requires a code change, never a runtime
// discovery (spec §4.1).
type Registry struct {
	log        logger.Logger
	tls        config.TLSOptions
	byName     map[string]*NetworkDescriptor
	byChainID  map[int64]*NetworkDescriptor
	ordered    []*NetworkDescriptor
	siblingIDs map[int64]bool

	mu      sync.RWMutex
	clients map[string]Client
	group   singleflight.Group
}

// entry is the static registration record for a network, before the
// sibling env overrides (§6.5) are applied to its RPC URL.
type entry struct {
	desc   NetworkDescriptor
	envKey string // sibling short name used to look up an env override, "" if none
}

// New builds the registry from the closed static table, applying any
// sibling env overrides from cfg.
func New(cfg *config.Config, log logger.Logger) *Registry {
	r := &Registry{
		log:        log,
		tls:        cfg.TLS,
		byName:     make(map[string]*NetworkDescriptor),
		byChainID:  make(map[int64]*NetworkDescriptor),
		siblingIDs: make(map[int64]bool),
		clients:    make(map[string]Client),
	}

	for _, e := range staticTable() {
		d := e.desc
		if e.envKey != "" {
			if ov, ok := cfg.Siblings[e.envKey]; ok && ov.NodeURL != "" {
				d.DefaultRPCURL = ov.NodeURL
			}
		}
		r.register(d)
	}

	return r
}

// register adds a descriptor to all lookup indexes.
func (r *Registry) register(d NetworkDescriptor) {
	cp := d
	r.byName[strings.ToLower(d.ShortName)] = &cp
	r.byChainID[d.ChainID] = &cp
	r.ordered = append(r.ordered, &cp)
	if d.IsSiblingFamily {
		r.siblingIDs[d.ChainID] = true
	}
}

// staticTable is the closed registration table: the three sibling networks
// (6-decimal native token, primary/alt symbol) plus a representative set of
// broader EVM networks the core exercises for cross-chain tools.
func staticTable() []entry {
	return []entry{
		{
			desc: NetworkDescriptor{
				ShortName: "s1", ChainID: 8822, DisplayName: "Sibling Mainnet",
				NativeToken:     NativeToken{Name: "Sibling Token", Symbol: "PRIM", Decimals: 6},
				DefaultRPCURL:   "https://s1.rpc.example/",
				ExplorerURL:     "https://s1.explorer.example/",
				IsSiblingFamily: true, SiblingVariant: VariantMainnet,
			},
			envKey: "s1",
		},
		{
			desc: NetworkDescriptor{
				ShortName: "s2", ChainID: 8832, DisplayName: "Sibling Alt-Mainnet",
				NativeToken:     NativeToken{Name: "Sibling Token (alt)", Symbol: "ALT", Decimals: 6},
				DefaultRPCURL:   "https://s2.rpc.example/",
				ExplorerURL:     "https://s2.explorer.example/",
				IsSiblingFamily: true, SiblingVariant: VariantAltMainnet,
			},
			envKey: "s2",
		},
		{
			desc: NetworkDescriptor{
				ShortName: "s3", ChainID: 1073, DisplayName: "Sibling Testnet",
				NativeToken:     NativeToken{Name: "Sibling Test Token", Symbol: "PRIM", Decimals: 6},
				DefaultRPCURL:   "https://s3.rpc.example/",
				ExplorerURL:     "https://s3.explorer.example/",
				IsSiblingFamily: true, SiblingVariant: VariantTestnet,
			},
			envKey: "s3",
		},
		{
			desc: NetworkDescriptor{
				ShortName: "ethlike", ChainID: 1, DisplayName: "Ethereum Mainnet",
				NativeToken:     NativeToken{Name: "Ether", Symbol: "ETH", Decimals: 18},
				DefaultRPCURL:   "https://ethlike.rpc.example/",
				ExplorerURL:     "https://ethlike.explorer.example/",
				IsSiblingFamily: false, SiblingVariant: VariantNone,
			},
		},
		{
			desc: NetworkDescriptor{
				ShortName: "poly", ChainID: 137, DisplayName: "Polygon",
				NativeToken:     NativeToken{Name: "Matic", Symbol: "MATIC", Decimals: 18},
				DefaultRPCURL:   "https://poly.rpc.example/",
				ExplorerURL:     "https://poly.explorer.example/",
				IsSiblingFamily: false, SiblingVariant: VariantNone,
			},
		},
		{
			desc: NetworkDescriptor{
				ShortName: "arb", ChainID: 42161, DisplayName: "Arbitrum One",
				NativeToken:     NativeToken{Name: "Ether", Symbol: "ETH", Decimals: 18},
				DefaultRPCURL:   "https://arb.rpc.example/",
				ExplorerURL:     "https://arb.explorer.example/",
				IsSiblingFamily: false, SiblingVariant: VariantNone,
			},
		},
	}
}

// Resolve looks up a network by short name (case-insensitive) or chain id.
func (r *Registry) Resolve(nameOrID string) (*NetworkDescriptor, error) {
	if id, err := strconv.ParseInt(nameOrID, 10, 64); err == nil {
		if d, ok := r.byChainID[id]; ok {
			return d, nil
		}
		return nil, apperrors.NewValidation("network", "unknown chain id "+nameOrID)
	}
	if d, ok := r.byName[strings.ToLower(nameOrID)]; ok {
		return d, nil
	}
	return nil, apperrors.NewValidation("network", "unknown network "+nameOrID)
}

// ResolveOrDefault resolves nameOrID, or the primary sibling network ("s1")
// when nameOrID is empty — the default used by tools/resources whose
// network argument is optional.
func (r *Registry) ResolveOrDefault(nameOrID string) (*NetworkDescriptor, error) {
	if nameOrID == "" {
		return r.Resolve("s1")
	}
	return r.Resolve(nameOrID)
}

// List returns every registered network descriptor.
func (r *Registry) List() []*NetworkDescriptor {
	out := make([]*NetworkDescriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// IsSibling reports whether x (a short name or chain id) matches the closed
// sibling set, by name or by id.
func (r *Registry) IsSibling(nameOrID string) bool {
	d, err := r.Resolve(nameOrID)
	if err != nil {
		return false
	}
	return d.IsSiblingFamily
}

// IsSiblingDescriptor reports sibling-family membership directly from a
// resolved descriptor, avoiding a second lookup.
func (r *Registry) IsSiblingDescriptor(d *NetworkDescriptor) bool {
	return d != nil && d.IsSiblingFamily
}

// RegisterClient pins an already-constructed client for a network, bypassing
// the lazy dial. Production callers have no reason to use this; it exists so
// tests can exercise registry-backed components against a fake Client
// without a live RPC endpoint.
func (r *Registry) RegisterClient(shortName string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[shortName] = c
}

// Client returns the lazily-initialized RPC client for a network,
// constructing it under a single-winner initialization (spec §5) so
// concurrent first-use never produces duplicate connections.
func (r *Registry) Client(ctx context.Context, d *NetworkDescriptor) (Client, error) {
	r.mu.RLock()
	c, ok := r.clients[d.ShortName]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	v, err, _ := r.group.Do(d.ShortName, func() (interface{}, error) {
		r.mu.RLock()
		if existing, ok := r.clients[d.ShortName]; ok {
			r.mu.RUnlock()
			return existing, nil
		}
		r.mu.RUnlock()

		client, err := Dial(ctx, d.DefaultRPCURL, r.tls)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.clients[d.ShortName] = client
		r.mu.Unlock()
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Client), nil
}
