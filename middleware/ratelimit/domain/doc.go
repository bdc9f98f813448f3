// Package domain define os contratos do limitador da API: decisão por
// cliente, vagas de concorrência e estatísticas. Não conhece net/http.
package domain
