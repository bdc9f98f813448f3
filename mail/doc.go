// Package mail envia os e-mails de prospecção para armazéns.
//
// Cada destinatário recebe uma mensagem própria; assunto e corpo têm padrões
// quando não informados. Falha em um destinatário não interrompe o lote.
package mail
