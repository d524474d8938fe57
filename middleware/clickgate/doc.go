// Package clickgate fornece o adapter HTTP (net/http + chi) do gate de navegação por
// taxa de cliques.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: RateClassifier e NavigationGate (decisão allow/deny) sem net/http
//   - infra: stores do flag (memória, Redis), scheduler, registry por visitante, stats
//   - clickgate (este pacote): rotas HTTP, identificação do visitante, flag em cookie
//
// Fluxo com a página:
//
//   1) A página chama POST /v1/load (nova carga: relê o flag "clickLimit")
//   2) Cada clique global vira POST /v1/click
//   3) Cada navegação interceptada vira POST /v1/navigate (plano para o JS executar)
//      ou GET /go (o servidor espera o atraso e responde 302)
//
// O gate não é fronteira de segurança. Sem Options.AllowedHosts, GET /go redireciona
// para qualquer URL http(s) absoluta recebida em "target" (open redirect na origem do
// site); em produção configure a lista (ALLOWED_TARGET_HOSTS no binário).
//
// Variáveis de ambiente do binário (cmd/clickgate) controlam o comportamento,
// como CLICK_THRESHOLD, TIME_WINDOW_MS, FLAG_STORE e REDIRECT_URL.
package clickgate
