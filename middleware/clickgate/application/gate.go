package application

import (
	"context"
	"sync"
	"time"

	"click-gateway/middleware/clickgate/domain"

	"go.uber.org/zap"
)

// NavigationGate decide o destino de cada navegação a partir do veredito atual.
//
// Estados {CLEAN, BLOCKED}. O estado inicial vem do flag persistido lido na construção;
// CLEAN -> BLOCKED acontece quando o classificador cruza o limite e grava o flag uma vez.
// Não existe BLOCKED -> CLEAN dentro da vida do gate: só a expiração do flag, observada
// em uma próxima carga de página, volta a CLEAN.
//
// Os handlers (OnClick / RequestNavigation) são atômicos e sequenciais entre si.
type NavigationGate struct {
	mu         sync.Mutex
	cfg        domain.GateConfig
	classifier *RateClassifier
	blocked    bool
	persisted  bool

	store  domain.FlagStore
	sched  domain.Scheduler
	logger *zap.Logger
}

var _ domain.Gate = (*NavigationGate)(nil)

type GateOption func(*NavigationGate)

func WithLogger(l *zap.Logger) GateOption {
	return func(g *NavigationGate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewNavigationGate cria o gate e lê o flag persistido (happens-before de qualquer decisão).
//
// Falha de leitura é tratada como "sem bloqueio anterior" (fail-open).
// store e sched podem ser nil: sem store nada é persistido; sem sched nenhuma
// navegação é agendada, apenas planejada.
func NewNavigationGate(ctx context.Context, cfg domain.GateConfig, store domain.FlagStore, sched domain.Scheduler, opts ...GateOption) *NavigationGate {
	g := &NavigationGate{
		cfg:        cfg,
		classifier: NewRateClassifier(cfg.ClickThreshold, cfg.TimeWindow),
		store:      store,
		sched:      sched,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.store == nil {
		return g
	}

	v, ok, err := g.store.Get(ctx, domain.FlagName)
	if err != nil {
		g.logger.Warn("flag read failed, assuming clean", zap.Error(err))
		return g
	}
	if ok && v == domain.FlagValue {
		g.blocked = true
		g.persisted = true
	}
	return g
}

// OnClick alimenta o classificador com um clique global.
//
// Retorna o veredito atual e blockedNow=true apenas no clique que causou a transição
// CLEAN -> BLOCKED. Erro de escrita do flag é ignorado: o bloqueio continua valendo
// em memória pelo resto da sessão.
func (g *NavigationGate) OnClick(ctx context.Context, now time.Time) (domain.Verdict, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	crossed := g.classifier.RecordClick(now)
	if !crossed || g.blocked {
		return g.verdictLocked(), false
	}

	g.blocked = true
	if g.store != nil {
		if err := g.store.Set(ctx, domain.FlagName, domain.FlagValue, g.cfg.PersistExpiry); err != nil {
			g.logger.Warn("flag write failed, block kept in memory only", zap.Error(err))
		} else {
			g.persisted = true
		}
	}
	g.logger.Info("visitor blocked",
		zap.Int("clicks", g.classifier.Window().Count),
		zap.Int("threshold", g.cfg.ClickThreshold),
		zap.Duration("window", g.cfg.TimeWindow))
	return domain.Blocked, true
}

// RequestNavigation decide uma navegação para target.
//
//   - BLOCKED: destino RedirectURL após BlockedRedirectDelay (target é descartado).
//   - CLEAN: destino target após RedirectDelay.
//
// Se nav != nil, a navegação é agendada no Scheduler dentro da mesma seção crítica da
// decisão. Uma navegação já agendada nunca é cancelada pelo gate, mesmo que o
// visitante seja bloqueado antes dela disparar.
func (g *NavigationGate) RequestNavigation(_ context.Context, target string, nav domain.Navigator) domain.Navigation {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := domain.Navigation{
		Outcome: domain.Allowed,
		Target:  target,
		Delay:   g.cfg.RedirectDelay,
	}
	if g.blocked {
		n = domain.Navigation{
			Outcome: domain.Denied,
			Target:  g.cfg.RedirectURL,
			Delay:   domain.BlockedRedirectDelay,
		}
	}

	if nav != nil && g.sched != nil {
		dest := n.Target
		n.Task = g.sched.Schedule(n.Delay, func() { nav.Navigate(dest) })
	}
	return n
}

func (g *NavigationGate) Verdict() domain.Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verdictLocked()
}

// Persisted informa se o estado BLOCKED está gravado no store (lido na carga ou escrito
// nesta sessão).
func (g *NavigationGate) Persisted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.persisted
}

func (g *NavigationGate) Config() domain.GateConfig { return g.cfg }

func (g *NavigationGate) verdictLocked() domain.Verdict {
	if g.blocked {
		return domain.Blocked
	}
	return domain.Clean
}
