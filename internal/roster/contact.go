// ABOUTME: Contact record and phone normalization rules
// ABOUTME: Snapshot JSON keeps the legacy field names (telefono, nombre, saldo, diasAtraso)

package roster

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Contact is one debtor in the portfolio. Extra carries any passthrough
// fields that arrived with the record (spreadsheet columns, campaign tags)
// so template expansion and snapshots can see them.
type Contact struct {
	Phone       string
	Name        string
	Balance     float64
	DaysOverdue int
	Extra       map[string]string
}

// legacy snapshot field names, fixed for compatibility with snapshots
// written by earlier deployments
const (
	fieldPhone       = "telefono"
	fieldName        = "nombre"
	fieldBalance     = "saldo"
	fieldDaysOverdue = "diasAtraso"
)

// NormalizePhone reduces a raw phone value to the canonical 10-digit key:
// digits only, last ten. Returns "" when fewer than ten digits remain.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 10 {
		return ""
	}
	return digits[len(digits)-10:]
}

// PhoneFromAddress extracts the normalized phone from a channel address like
// "5215512345678@s.whatsapp.net": strip the domain, drop the country code,
// keep the last ten digits.
func PhoneFromAddress(addr string) string {
	if i := strings.IndexByte(addr, '@'); i >= 0 {
		addr = addr[:i]
	}
	return NormalizePhone(addr)
}

// MarshalJSON writes the legacy snapshot shape with Extra fields inlined.
func (c Contact) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 4+len(c.Extra))
	for k, v := range c.Extra {
		m[k] = v
	}
	m[fieldPhone] = c.Phone
	m[fieldName] = c.Name
	m[fieldBalance] = c.Balance
	m[fieldDaysOverdue] = c.DaysOverdue
	return json.Marshal(m)
}

// UnmarshalJSON reads the legacy snapshot shape, tolerating numbers or
// strings in the numeric fields the way old snapshots mixed them.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	c.Extra = nil
	for k, v := range m {
		switch k {
		case fieldPhone:
			c.Phone = NormalizePhone(stringValue(v))
		case fieldName:
			c.Name = stringValue(v)
		case fieldBalance:
			c.Balance = floatValue(v)
		case fieldDaysOverdue:
			c.DaysOverdue = int(floatValue(v))
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]string)
			}
			c.Extra[k] = stringValue(v)
		}
	}
	return nil
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func floatValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
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
