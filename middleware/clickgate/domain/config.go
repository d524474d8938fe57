package domain

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// GateConfig é a configuração imutável de um gate, resolvida uma vez na carga da página.
// Todos os campos numéricos são > 0.
type GateConfig struct {
	ClickThreshold int
	TimeWindow     time.Duration
	PersistExpiry  time.Duration
	RedirectDelay  time.Duration
	// RedirectURL é o destino forçado quando o visitante está bloqueado.
	RedirectURL string
	// DefaultTargetURL é o alvo usado quando um gatilho não tem destino próprio.
	DefaultTargetURL string
}

// DefaultGateConfig retorna os valores padrão (7 cliques em 10s, bloqueio por 24h).
func DefaultGateConfig() GateConfig {
	return GateConfig{
		ClickThreshold:   7,
		TimeWindow:       10 * time.Second,
		PersistExpiry:    24 * time.Hour,
		RedirectDelay:    1500 * time.Millisecond,
		RedirectURL:      "https://ecrm.police.go.kr/minwon/main",
		DefaultTargetURL: "/",
	}
}

// Nomes das opções sobrescrevíveis. Aceitam também o formato data-attribute
// (ex: data-click-threshold).
const (
	OptClickThreshold   = "clickThreshold"
	OptTimeWindow       = "timeWindow"
	OptCookieExpiry     = "cookieExpiry"
	OptRedirectDelay    = "redirectDelay"
	OptRedirectURL      = "redirectUrl"
	OptDefaultTargetURL = "defaultTargetUrl"
)

// ResolveConfig aplica overrides sobre base.
//
// Chaves desconhecidas são ignoradas. Valores numéricos malformados ou <= 0 e URLs
// inválidas mantêm o valor de base. O GateConfig retornado é sempre utilizável;
// o erro (ErrInvalidOverride agregado) serve apenas para log.
//
// Quando duas chaves normalizam para a mesma opção, o nome canônico (camelCase)
// vence os apelidos; entre apelidos vence o último em ordem lexicográfica.
func ResolveConfig(base GateConfig, overrides map[string]string) (GateConfig, error) {
	cfg := base
	var errs []error

	for _, rawKey := range overrideOrder(overrides) {
		rawVal := overrides[rawKey]
		val := strings.TrimSpace(rawVal)
		if val == "" {
			continue
		}

		var err error
		switch NormalizeOptionName(rawKey) {
		case OptClickThreshold:
			var n int
			if n, err = positiveInt(val); err == nil {
				cfg.ClickThreshold = n
			}
		case OptTimeWindow:
			cfg.TimeWindow, err = positiveDuration(val, time.Millisecond, cfg.TimeWindow)
		case OptCookieExpiry:
			cfg.PersistExpiry, err = positiveDuration(val, time.Second, cfg.PersistExpiry)
		case OptRedirectDelay:
			cfg.RedirectDelay, err = positiveDuration(val, time.Millisecond, cfg.RedirectDelay)
		case OptRedirectURL:
			if err = validateURL(val); err == nil {
				cfg.RedirectURL = val
			}
		case OptDefaultTargetURL:
			if err = validateURL(val); err == nil {
				cfg.DefaultTargetURL = val
			}
		default:
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidOverride, rawKey, rawVal, err))
		}
	}

	if err := cfg.Validate(); err != nil {
		// só acontece com base inválida; nesse caso os padrões assumem.
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidOverride, err))
		cfg = DefaultGateConfig()
	}
	return cfg, errors.Join(errs...)
}

// overrideOrder ordena as chaves de forma determinística: apelidos primeiro, nomes
// canônicos por último.
func overrideOrder(overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ca, cb := isCanonical(a), isCanonical(b)
		switch {
		case ca == cb:
			return strings.Compare(a, b)
		case ca:
			return 1
		default:
			return -1
		}
	})
	return keys
}

func isCanonical(key string) bool {
	return NormalizeOptionName(key) == key
}

// NormalizeOptionName converte "data-click-threshold" / "click-threshold" em "clickThreshold".
// Nomes já em camelCase são retornados como estão.
func NormalizeOptionName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "data-")
	if !strings.Contains(name, "-") {
		return name
	}

	parts := strings.Split(strings.ToLower(name), "-")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}

func positiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return n, nil
}

func positiveDuration(v string, unit time.Duration, def time.Duration) (time.Duration, error) {
	n, err := positiveInt(v)
	if err != nil {
		return def, err
	}
	if int64(n) > math.MaxInt64/int64(unit) {
		return def, errors.New("out of range")
	}
	return time.Duration(n) * unit, nil
}

// validateURL aceita URLs absolutas http(s) ou caminhos absolutos do próprio site.
func validateURL(v string) error {
	if strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//") {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an absolute http(s) url")
	}
	return nil
}

// ValidURL informa se v é aceitável como destino de navegação.
func ValidURL(v string) bool {
	return strings.TrimSpace(v) != "" && validateURL(strings.TrimSpace(v)) == nil
}

// Validate verifica a invariante "todos os numéricos > 0" e URLs válidas.
func (c GateConfig) Validate() error {
	switch {
	case c.ClickThreshold <= 0:
		return errors.New("click threshold must be > 0")
	case c.TimeWindow <= 0:
		return errors.New("time window must be > 0")
	case c.PersistExpiry <= 0:
		return errors.New("persist expiry must be > 0")
	case c.RedirectDelay <= 0:
		return errors.New("redirect delay must be > 0")
	case !ValidURL(c.RedirectURL):
		return fmt.Errorf("invalid redirect url %q", c.RedirectURL)
	case !ValidURL(c.DefaultTargetURL):
		return fmt.Errorf("invalid default target url %q", c.DefaultTargetURL)
	}
	return nil
}
