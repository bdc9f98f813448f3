// Package ratelimit protege a API com limite por cliente (429) e limite de
// requisições simultâneas (503).
//
// Camadas:
//
//   - domain: contratos (Limiter, SlotPool, StatsStore)
//   - application: Guard (decisão + estatística) e Slots (espera com timeout)
//   - infra: token bucket, semáforo, estatísticas em memória ou Redis
//   - ratelimit: middlewares net/http e a rota de estatísticas
//
// O binário configura pelo ambiente: RATE_RPS, RATE_BURST, CONCURRENCY_MAX,
// CONCURRENCY_TIMEOUT e RATE_STATS_BACKEND.
package ratelimit
