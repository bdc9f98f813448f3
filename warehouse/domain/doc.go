// Package domain define tipos e contratos do serviço de armazéns.
//
// Sem dependência de net/http nem de implementações concretas (Airtable,
// Nominatim, Redis...). As regras puras (ranking por tier, campos faltantes,
// extração de imagens de pedidos, haversine) vivem aqui.
package domain
