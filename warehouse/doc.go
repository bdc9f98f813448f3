// Package warehouse expõe a API HTTP de armazéns: listagem, busca por
// proximidade, pedidos, status do cache e envio de e-mails.
//
// As regras ficam em warehouse/application; aqui só há decodificação,
// validação de entrada e tradução de erros para status HTTP.
package warehouse
