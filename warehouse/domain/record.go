package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record é um registro de tabela como o Airtable devolve: os campos são
// dinâmicos e dependem da base.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// Text devolve o campo como texto; números saem sem notação científica.
func (r Record) Text(field string) string {
	switch v := r.Fields[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Number interpreta o campo como float; aceita número ou texto numérico.
func (r Record) Number(field string) (float64, bool) {
	switch v := r.Fields[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Location lê Latitude/Longitude. Ausente ou zero conta como sem coordenada.
func (r Record) Location() (Coordinates, bool) {
	lat, ok1 := r.Number("Latitude")
	lng, ok2 := r.Number("Longitude")
	if !ok1 || !ok2 || lat == 0 || lng == 0 {
		return Coordinates{}, false
	}
	return Coordinates{Lat: lat, Lng: lng}, true
}
