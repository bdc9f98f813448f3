// Package health implementa o contrato de saúde da imagem.
//
// Três peças:
//
//   - Handler: responde GET /health dentro do próprio serviço
//   - HTTPProber: uma única verificação (o que o HEALTHCHECK da imagem executa)
//   - Monitor: a máquina de estados starting/healthy/unhealthy com intervalo,
//     timeout, período inicial de tolerância e limite de falhas consecutivas
//
// Os valores padrão (DefaultPolicy) precisam bater com as flags do HEALTHCHECK
// no Dockerfile; o pacote image verifica isso.
package health
