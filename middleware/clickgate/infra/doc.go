// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryFlagStore / RedisFlagStore: flag persistido "clickLimit" com expiração
//   - TimerScheduler: navegação adiada via time.AfterFunc (sem cancelamento pelo gate)
//   - Registry: um gate por visitante, com limpeza periódica e limite de recargas (x/time/rate)
//   - Memory/Redis/PrometheusStatsStore: estatísticas de navegação e bloqueio
package infra
