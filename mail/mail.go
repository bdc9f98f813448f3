package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

var ErrNotConfigured = errors.New("mail sender not configured")

// DefaultBody é o texto enviado quando o lote não traz corpo.
const DefaultBody = `Hi,

We have a request and would like to know if you can help with this.
Please provide the following info below:
Pricing:
Commodity:
Loading method: palletized / slip sheets / floor loaded
Pictures attached below:
Best,
WarehouseNow Team
`

// Request é um destinatário do lote. "adress" é o nome do campo na API.
type Request struct {
	Email        string   `json:"email"`
	Services     []string `json:"services"`
	Adress       string   `json:"adress"`
	EmailSubject string   `json:"email_subject"`
}

type Bulk struct {
	EmailBody  string    `json:"email_body"`
	EmailsData []Request `json:"emails_data"`
	Images     []string  `json:"images,omitempty"`
}

type Result struct {
	Status string `json:"status"`
	To     string `json:"to"`
	Error  string `json:"error,omitempty"`
}

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// ServicesPhrase junta serviços em linguagem natural: "a", "a and b", "a, b and c".
func ServicesPhrase(services []string) string {
	var clean []string
	for _, s := range services {
		if s = strings.TrimSpace(s); s != "" {
			clean = append(clean, s)
		}
	}
	switch len(clean) {
	case 0:
		return "general warehousing services"
	case 1:
		return clean[0]
	default:
		return strings.Join(clean[:len(clean)-1], ", ") + " and " + clean[len(clean)-1]
	}
}

// Compose monta a mensagem de um destinatário aplicando os padrões.
func Compose(from, body string, r Request) Message {
	subject := strings.TrimSpace(r.EmailSubject)
	if subject == "" {
		subject = fmt.Sprintf("Request for %s near %s", ServicesPhrase(r.Services), r.Adress)
	}
	if strings.TrimSpace(body) == "" {
		body = DefaultBody
	}
	return Message{From: from, To: strings.TrimSpace(r.Email), Subject: subject, Body: body}
}

type Service struct {
	Sender Sender
	From   string
	Logger *log.Logger
}

// SendBulk envia em sequência e devolve um resultado por destinatário.
func (s Service) SendBulk(ctx context.Context, b Bulk) ([]Result, error) {
	if s.Sender == nil {
		return nil, ErrNotConfigured
	}
	logger := s.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	results := make([]Result, 0, len(b.EmailsData))
	for _, r := range b.EmailsData {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		m := Compose(s.From, b.EmailBody, r)
		if m.To == "" {
			results = append(results, Result{Status: "error", To: m.To, Error: "missing recipient"})
			continue
		}
		if err := s.Sender.Send(ctx, m); err != nil {
			logger.Warn("email delivery failed", "to", m.To, "err", err)
			results = append(results, Result{Status: "error", To: m.To, Error: err.Error()})
			continue
		}
		results = append(results, Result{Status: "success", To: m.To})
	}
	return results, nil
}
