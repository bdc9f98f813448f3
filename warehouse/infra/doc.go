// Package infra contém implementações concretas dos contratos de domain.
//
//   - AirtableClient: armazéns e pedidos (paginação por offset, limitado a 5 req/s)
//   - NominatimGeocoder: CEP -> coordenadas (OpenStreetMap)
//   - DistanceMatrixRouter: rota de carro via Google Distance Matrix
//   - StraightLineRouter: estimativa por haversine quando não há chave do Google
//   - MemoryCache / RedisCache: cache com TTL
package infra
