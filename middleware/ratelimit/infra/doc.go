// Package infra implementa os contratos do limitador: token bucket por
// cliente (golang.org/x/time/rate), semáforo por channel e estatísticas em
// memória ou Redis.
package infra
