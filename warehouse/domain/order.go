package domain

import (
	"context"
	"regexp"
)

// OrderSource busca pedidos pelo número do pedido (campo "Request ID").
type OrderSource interface {
	OrdersByRequestID(ctx context.Context, requestID int) ([]Order, error)
}

type Order struct {
	Commodity     string   `json:"commodity"`
	LoadingMethod string   `json:"loading_method"`
	RequestImages []string `json:"request_images"`
}

// links no formato "nome (https://...)" usado em campos de texto longo
var imageLinkRe = regexp.MustCompile(`\((https?://[^)]+)\)`)

func OrderFromRecord(r Record) Order {
	return Order{
		Commodity:     r.Text("Commodity"),
		LoadingMethod: r.Text("Loading Style"),
		RequestImages: RequestImages(r.Fields["BOL & Pictures"]),
	}
}

// RequestImages extrai URLs de "BOL & Pictures": texto com links entre
// parênteses ou lista de anexos com campo url.
func RequestImages(raw any) []string {
	images := []string{}
	switch v := raw.(type) {
	case string:
		for _, m := range imageLinkRe.FindAllStringSubmatch(v, -1) {
			images = append(images, m[1])
		}
	case []any:
		for _, item := range v {
			att, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if url, ok := att["url"].(string); ok {
				images = append(images, url)
			}
		}
	}
	return images
}
