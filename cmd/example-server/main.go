package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"click-gateway/middleware/clickgate"
	"click-gateway/middleware/clickgate/application"
	"click-gateway/middleware/clickgate/domain"
	"click-gateway/middleware/clickgate/infra"

	"go.uber.org/zap"
)

// Exemplo: embutindo o gate diretamente no seu webserver (sem o binário cmd/clickgate).
// O flag fica em cookie no navegador do visitante.
const page = `<!doctype html>
<html><body>
<h2>Clique aqui</h2>
<p><a href="/gate/go?trigger=link&target=https%3A%2F%2Fgo.dev%2F">go.dev</a></p>
<p><a id="floating-link" href="/gate/go?trigger=floating&target=https%3A%2F%2Fpkg.go.dev%2F">pkg.go.dev</a></p>
<script>
fetch('/gate/v1/load', {method: 'POST'});
document.addEventListener('click', function () { navigator.sendBeacon('/gate/v1/click'); });
</script>
</body></html>`

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := domain.DefaultGateConfig()
	flags := clickgate.NewCookieFlagStore(false)

	registry := infra.NewRegistry(func(ctx context.Context, _ domain.Key, _ map[string]string) domain.Gate {
		return application.NewNavigationGate(ctx, cfg, flags, infra.TimerScheduler{}, application.WithLogger(logger))
	})
	registry.StartJanitor(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})
	mux.Handle("/gate/", http.StripPrefix("/gate", clickgate.NewHandler(clickgate.Options{
		Gates:            registry,
		Stats:            infra.NewMemoryStatsStore(),
		AddVerdictHeader: true,
		AllowedHosts:     []string{"go.dev", "pkg.go.dev"},
		Logger:           logger,
	})))

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("example server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
