// ABOUTME: Conversion of loose job records into roster contacts
// ABOUTME: Tolerates the spreadsheet column namings the previous system accepted

package dispatch

import (
	"strconv"
	"strings"

	"github.com/lmv-credia/cobranza-gateway/internal/roster"
)

// phoneFieldValue resolves the phone from a record: the requested field
// first, then the legacy fallbacks the old spreadsheets used.
func phoneFieldValue(record map[string]any, phoneField string) string {
	if v, ok := fieldLookup(record, phoneField); ok {
		return fieldString(v)
	}
	for _, fallback := range []string{"telefono", "teléfono"} {
		if v, ok := fieldLookup(record, fallback); ok {
			return fieldString(v)
		}
	}
	return ""
}

func fieldLookup(record map[string]any, name string) (any, bool) {
	if v, ok := record[name]; ok {
		return v, true
	}
	lower := strings.ToLower(name)
	for k, v := range record {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}
	return nil, false
}

// contactFromRecord builds the roster entry for one job record so the
// engine can answer replies with real context. Unknown columns ride along
// as Extra fields.
func contactFromRecord(record map[string]any, phoneField string) roster.Contact {
	c := roster.Contact{Phone: roster.NormalizePhone(phoneFieldValue(record, phoneField))}

	for _, name := range []string{"nombre", "cliente"} {
		if v, ok := fieldLookup(record, name); ok && fieldString(v) != "" {
			c.Name = fieldString(v)
			break
		}
	}
	for _, name := range []string{"saldo", "monto"} {
		if v, ok := fieldLookup(record, name); ok {
			c.Balance = floatField(v)
			break
		}
	}
	for _, name := range []string{"diasatraso", "días atraso", "dias atraso"} {
		if v, ok := fieldLookup(record, name); ok {
			c.DaysOverdue = int(floatField(v))
			break
		}
	}

	known := map[string]bool{
		strings.ToLower(phoneField): true, "telefono": true, "teléfono": true,
		"nombre": true, "cliente": true, "saldo": true, "monto": true,
		"diasatraso": true, "días atraso": true, "dias atraso": true,
	}
	for k, v := range record {
		if known[strings.ToLower(k)] {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra[k] = fieldString(v)
	}
	return c
}

func floatField(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
