// Package image lê o Dockerfile do serviço e confere o contrato de execução
// da imagem: porta publicada, usuário sem privilégios, parâmetros do
// HEALTHCHECK e a ordem das camadas de dependência.
//
// O parse usa o parser de Dockerfile do buildkit; só o último estágio (a
// imagem final) é considerado para EXPOSE/USER/HEALTHCHECK/ENTRYPOINT/CMD.
package image
