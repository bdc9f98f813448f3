// Package application concentra os casos de uso do serviço de armazéns:
// listagem com cache, busca por proximidade, pedidos e manutenção do cache.
//
// Não sabe nada de HTTP; recebe os contratos de domain já montados.
package application
