package infra

import (
	"context"
	"sync"
	"time"

	"click-gateway/middleware/clickgate/domain"

	"golang.org/x/time/rate"
)

// GateFactory cria o gate de um visitante. É chamada fora do lock do Registry,
// porque normalmente lê o flag persistido (ex: Redis).
type GateFactory func(ctx context.Context, key domain.Key, overrides map[string]string) domain.Gate

// Registry mantém um gate por visitante (o equivalente à vida de uma página),
// com limpeza periódica de visitantes inativos.
//
// Cada visitante tem também um token bucket (x/time/rate) para cargas de página:
// recargas acima da taxa mantêm o gate atual em vez de reler o store.
type Registry struct {
	mu           sync.Mutex
	entries      map[domain.Key]*registryEntry
	factory      GateFactory
	loadRate     rate.Limit
	loadBurst    int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type registryEntry struct {
	gate     domain.Gate
	loads    *rate.Limiter
	lastSeen time.Time
}

type RegistryOption func(*Registry)

func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) RegistryOption {
	return func(r *Registry) { r.cleanupEvery = d }
}

// WithLoadRate limita recargas de página por visitante (rps <= 0 desliga o limite).
func WithLoadRate(rps float64, burst int) RegistryOption {
	return func(r *Registry) {
		if rps <= 0 {
			r.loadRate = rate.Inf
		} else {
			r.loadRate = rate.Limit(rps)
		}
		r.loadBurst = burst
	}
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(factory GateFactory, opts ...RegistryOption) *Registry {
	r := &Registry{
		entries:      make(map[domain.Key]*registryEntry),
		factory:      factory,
		loadRate:     rate.Limit(1),
		loadBurst:    5,
		idleTTL:      30 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get retorna o gate do visitante, criando-o (sem overrides) se ainda não existe.
func (r *Registry) Get(ctx context.Context, key domain.Key) domain.Gate {
	if g := r.lookup(key); g != nil {
		return g
	}

	g := r.factory(ctx, key, nil)

	r.mu.Lock()
	defer r.mu.Unlock()
	if ent, ok := r.entries[key]; ok {
		// outro request criou primeiro; fica o dele.
		ent.lastSeen = r.now()
		return ent.gate
	}
	r.entries[key] = &registryEntry{gate: g, loads: r.newLoadLimiter(), lastSeen: r.now()}
	return g
}

// Load representa uma nova carga de página: substitui o gate do visitante por um novo
// (estado em memória zerado, flag persistido relido).
//
// Se o visitante excedeu a taxa de recargas, o gate atual é mantido e reloaded=false.
func (r *Registry) Load(ctx context.Context, key domain.Key, overrides map[string]string) (g domain.Gate, reloaded bool) {
	r.mu.Lock()
	ent, ok := r.entries[key]
	var loads *rate.Limiter
	if ok {
		ent.lastSeen = r.now()
		if !ent.loads.Allow() {
			g = ent.gate
			r.mu.Unlock()
			return g, false
		}
		loads = ent.loads
	} else {
		loads = r.newLoadLimiter()
		loads.Allow()
	}
	r.mu.Unlock()

	g = r.factory(ctx, key, overrides)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = &registryEntry{gate: g, loads: loads, lastSeen: r.now()}
	return g, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) CleanupEvery() time.Duration { return r.cleanupEvery }

func (r *Registry) lookup(key domain.Key) domain.Gate {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ent, ok := r.entries[key]; ok {
		ent.lastSeen = r.now()
		return ent.gate
	}
	return nil
}

func (r *Registry) newLoadLimiter() *rate.Limiter {
	return rate.NewLimiter(r.loadRate, r.loadBurst)
}

// Cleanup remove visitantes inativos há mais de idleTTL. O flag persistido não é
// afetado: a próxima visita relê o store.
func (r *Registry) Cleanup() {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	for k, ent := range r.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(r.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa visitantes inativos periodicamente.
// Pare cancelando o contexto.
func (r *Registry) StartJanitor(ctx context.Context) {
	if r.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(r.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.Cleanup()
			}
		}
	}()
}
