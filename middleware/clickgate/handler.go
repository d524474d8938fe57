package clickgate

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"click-gateway/middleware/clickgate/application"
	"click-gateway/middleware/clickgate/domain"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GateRegistry entrega o gate de cada visitante (ver infra.Registry).
type GateRegistry interface {
	Get(ctx context.Context, key domain.Key) domain.Gate
	Load(ctx context.Context, key domain.Key, overrides map[string]string) (domain.Gate, bool)
}

type Options struct {
	Gates GateRegistry
	Stats domain.StatsStore

	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool
	// VisitorCookie é o cookie de identificação ("" usa DefaultVisitorCookie, "-" desliga).
	VisitorCookie string
	SecureCookies bool

	// AllowPageOverrides aceita overrides de configuração vindos da página em /v1/load.
	AllowPageOverrides bool
	AddVerdictHeader   bool

	// AllowedHosts restringe os destinos absolutos de /v1/navigate e /go a esses hosts
	// (com ou sem porta). Vazio aceita qualquer http(s), o que faz de /go um open redirect.
	// Caminhos do próprio site e o RedirectURL do gate nunca passam por essa lista.
	AllowedHosts []string

	Now    func() time.Time
	Logger *zap.Logger
}

type handler struct {
	opts  Options
	hosts map[string]struct{}
}

// NewHandler monta as rotas do gate:
//
//	POST /v1/load      nova carga de página
//	POST /v1/click     clique global
//	POST /v1/navigate  decisão de navegação (plano em JSON)
//	GET  /go           decisão de navegação executada pelo servidor (302 após o atraso)
func NewHandler(opts Options) http.Handler {
	switch opts.VisitorCookie {
	case "":
		opts.VisitorCookie = DefaultVisitorCookie
	case "-":
		opts.VisitorCookie = ""
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.VisitorCookie, opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	h := &handler{opts: opts}
	if len(opts.AllowedHosts) > 0 {
		h.hosts = make(map[string]struct{}, len(opts.AllowedHosts))
		for _, host := range opts.AllowedHosts {
			if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
				h.hosts[host] = struct{}{}
			}
		}
	}

	r := chi.NewRouter()
	r.Post("/v1/load", h.load)
	r.Post("/v1/click", h.click)
	r.Post("/v1/navigate", h.navigate)
	r.Get("/go", h.goTo)
	return r
}

type stateResponse struct {
	Verdict    string `json:"verdict"`
	Reloaded   bool   `json:"reloaded,omitempty"`
	BlockedNow bool   `json:"blocked_now,omitempty"`
}

type navigationResponse struct {
	Outcome string `json:"outcome"`
	URL     string `json:"url"`
	DelayMs int64  `json:"delay_ms"`
}

func (h *handler) load(w http.ResponseWriter, r *http.Request) {
	ctx, key := h.begin(w, r)

	var overrides map[string]string
	if h.opts.AllowPageOverrides {
		overrides = formValues(r)
	}

	g, reloaded := h.opts.Gates.Load(ctx, key, overrides)
	if !reloaded {
		h.opts.Logger.Debug("page load throttled, keeping current gate", zap.String("visitor", string(key)))
	}

	h.verdictHeader(w, g.Verdict())
	writeJSON(w, http.StatusOK, stateResponse{Verdict: g.Verdict().String(), Reloaded: reloaded})
}

func (h *handler) click(w http.ResponseWriter, r *http.Request) {
	ctx, key := h.begin(w, r)
	g := h.opts.Gates.Get(ctx, key)

	v, blockedNow := g.OnClick(ctx, h.opts.Now())
	if blockedNow {
		h.opts.Logger.Warn("click rate exceeded, redirects blocked", zap.String("visitor", string(key)))
		h.record(ctx, domain.StatsEvent{Kind: domain.EventBlock, Key: key, At: h.opts.Now()})
	}

	h.verdictHeader(w, v)
	writeJSON(w, http.StatusOK, stateResponse{Verdict: v.String(), BlockedNow: blockedNow})
}

func (h *handler) navigate(w http.ResponseWriter, r *http.Request) {
	ctx, key := h.begin(w, r)
	g := h.opts.Gates.Get(ctx, key)
	trigger, target := h.target(r, g)

	n := g.RequestNavigation(ctx, target, nil)
	h.recordNavigation(ctx, key, trigger, n)

	h.verdictHeader(w, g.Verdict())
	writeJSON(w, http.StatusOK, navigationResponse{
		Outcome: n.Outcome.String(),
		URL:     n.Target,
		DelayMs: n.Delay.Milliseconds(),
	})
}

// goTo executa a navegação no servidor: agenda o redirect e espera o disparo ou o
// cancelamento do request. Um disparo tardio cai no canal bufferizado e é descartado.
func (h *handler) goTo(w http.ResponseWriter, r *http.Request) {
	ctx, key := h.begin(w, r)
	g := h.opts.Gates.Get(ctx, key)
	trigger, target := h.target(r, g)

	fired := make(chan string, 1)
	n := g.RequestNavigation(ctx, target, domain.NavigatorFunc(func(u string) { fired <- u }))
	h.recordNavigation(ctx, key, trigger, n)

	var fallback <-chan time.Time
	if n.Task == nil {
		// gate sem scheduler: o próprio handler espera o atraso.
		t := time.NewTimer(n.Delay)
		defer t.Stop()
		fallback = t.C
	}

	h.verdictHeader(w, g.Verdict())
	w.Header().Set("X-Clickgate-Delay-Ms", formatMillis(n.Delay))

	select {
	case u := <-fired:
		http.Redirect(w, r, u, http.StatusFound)
	case <-fallback:
		http.Redirect(w, r, n.Target, http.StatusFound)
	case <-r.Context().Done():
	}
}

func (h *handler) begin(w http.ResponseWriter, r *http.Request) (context.Context, domain.Key) {
	key, issued := ensureVisitorCookie(w, r, h.opts.VisitorCookie, h.opts.SecureCookies)
	if !issued {
		key = h.opts.KeyFn(r)
	}

	ctx := domain.WithVisitor(r.Context(), domain.Key(key))
	return withHTTP(ctx, w, r), domain.Key(key)
}

func (h *handler) target(r *http.Request, g domain.Gate) (domain.Trigger, string) {
	trigger := domain.ParseTrigger(r.FormValue("trigger"))
	fallback := g.Config().DefaultTargetURL
	target, err := application.ResolveTarget(trigger, r.FormValue("target"), r.FormValue("designated"), fallback)
	if err != nil {
		h.opts.Logger.Debug("navigation target fallback", zap.Error(err), zap.String("target", target))
	}
	if !h.hostAllowed(target) {
		h.opts.Logger.Debug("navigation target host not allowed", zap.String("target", target))
		target = fallback
	}
	return trigger, target
}

// hostAllowed aplica AllowedHosts. Caminhos relativos ao site sempre passam.
func (h *handler) hostAllowed(target string) bool {
	if h.hosts == nil || strings.HasPrefix(target, "/") {
		return true
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if _, ok := h.hosts[strings.ToLower(u.Host)]; ok {
		return true
	}
	_, ok := h.hosts[strings.ToLower(u.Hostname())]
	return ok
}

func (h *handler) recordNavigation(ctx context.Context, key domain.Key, trigger domain.Trigger, n domain.Navigation) {
	h.record(ctx, domain.StatsEvent{
		Kind:    domain.EventNavigation,
		Key:     key,
		Allowed: n.Outcome == domain.Allowed,
		Trigger: trigger,
		At:      h.opts.Now(),
	})
}

// record é best-effort: erro de stats nunca muda a resposta.
func (h *handler) record(ctx context.Context, ev domain.StatsEvent) {
	if h.opts.Stats == nil {
		return
	}
	if err := h.opts.Stats.Record(ctx, ev); err != nil {
		h.opts.Logger.Debug("stats record failed", zap.Error(err))
	}
}

func (h *handler) verdictHeader(w http.ResponseWriter, v domain.Verdict) {
	if h.opts.AddVerdictHeader {
		w.Header().Set("X-Clickgate-Verdict", v.String())
	}
}

func formValues(r *http.Request) map[string]string {
	if err := r.ParseForm(); err != nil {
		return nil
	}
	out := make(map[string]string, len(r.Form))
	for k := range r.Form {
		out[strings.TrimSpace(k)] = r.Form.Get(k)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
