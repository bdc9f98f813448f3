package infra

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"warehousenow/warehouse/domain"

	"golang.org/x/time/rate"
)

const DefaultAirtableURL = "https://api.airtable.com/v0"

// AirtableClient lê as tabelas de armazéns e pedidos de uma base do Airtable.
//
// O Airtable aceita 5 requisições por segundo por base; o limiter segura as
// páginas para não tomar 429 em listagens grandes.
type AirtableClient struct {
	baseURL        string
	token          string
	baseID         string
	warehouseTable string
	requestTable   string
	httpClient     *http.Client
	limiter        *rate.Limiter
}

type AirtableOption func(*AirtableClient)

func WithAirtableURL(u string) AirtableOption {
	return func(c *AirtableClient) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithAirtableHTTPClient(hc *http.Client) AirtableOption {
	return func(c *AirtableClient) { c.httpClient = hc }
}

func WithAirtableRate(rps float64, burst int) AirtableOption {
	return func(c *AirtableClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func WithAirtableTables(warehouses, requests string) AirtableOption {
	return func(c *AirtableClient) {
		if warehouses != "" {
			c.warehouseTable = warehouses
		}
		if requests != "" {
			c.requestTable = requests
		}
	}
}

func NewAirtableClient(token, baseID string, opts ...AirtableOption) *AirtableClient {
	c := &AirtableClient{
		baseURL:        DefaultAirtableURL,
		token:          token,
		baseID:         baseID,
		warehouseTable: "Warehouses",
		requestTable:   "Requests",
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		limiter:        rate.NewLimiter(5, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListWarehouses implementa domain.WarehouseSource.
func (c *AirtableClient) ListWarehouses(ctx context.Context) ([]domain.Record, error) {
	return c.list(ctx, c.warehouseTable, nil)
}

// OrdersByRequestID implementa domain.OrderSource.
func (c *AirtableClient) OrdersByRequestID(ctx context.Context, requestID int) ([]domain.Order, error) {
	params := url.Values{}
	params.Set("filterByFormula", fmt.Sprintf("{Request ID} = %d", requestID))

	records, err := c.list(ctx, c.requestTable, params)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(records))
	for _, r := range records {
		orders = append(orders, domain.OrderFromRecord(r))
	}
	return orders, nil
}

type airtablePage struct {
	Records []domain.Record `json:"records"`
	Offset  string          `json:"offset"`
}

// list percorre todas as páginas de uma tabela seguindo o cursor "offset".
func (c *AirtableClient) list(ctx context.Context, table string, params url.Values) ([]domain.Record, error) {
	if c.token == "" || c.baseID == "" {
		return nil, fmt.Errorf("airtable: %w (AIRTABLE_TOKEN/BASE_ID)", domain.ErrNotConfigured)
	}
	if params == nil {
		params = url.Values{}
	}
	endpoint := c.baseURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(table)

	records := []domain.Record{}
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("airtable %s: %w", table, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("airtable %s: build request: %w", table, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: airtable %s: %v", domain.ErrUpstream, table, err)
		}

		var page airtablePage
		if err := decodeResponse(resp, "airtable "+table, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Records...)

		if page.Offset == "" {
			return records, nil
		}
		params.Set("offset", page.Offset)
	}
}
