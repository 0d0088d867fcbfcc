package mapping

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

const (
	prefixAccessor = "woo_order_get_"
	prefixMeta     = "woo_order_meta_"
	prefixSpecial  = "special_"
)

// FieldKey is a parsed field key. Exactly one of Accessor, Meta or Special.
type FieldKey interface {
	// String returns the wire form sent to the order resolver.
	String() string
	fieldKey()
}

// Accessor reads a WC_Order getter: woo_order_get_<Name>.
type Accessor struct{ Name string }

// Meta reads order meta, optionally walking into a nested value:
// woo_order_meta_<Key>[.<Path...>].
type Meta struct {
	Key  string
	Path []string
}

// Special runs one of the resolver's named handlers: special_<Name>.
type Special struct{ Name string }

func (a Accessor) String() string { return prefixAccessor + a.Name }
func (m Meta) String() string {
	if len(m.Path) == 0 {
		return prefixMeta + m.Key
	}
	return prefixMeta + m.Key + "." + strings.Join(m.Path, ".")
}
func (s Special) String() string { return prefixSpecial + s.Name }

func (Accessor) fieldKey() {}
func (Meta) fieldKey()     {}
func (Special) fieldKey()  {}

var specialNames = map[string]struct{}{
	"products_and_quantities":       {},
	"case_id":                       {},
	"disputed_total":                {},
	"transaction_total":             {},
	"reference_number":              {},
	"tracking_number":               {},
	"shipping_carrier":              {},
	"reason_code_and_reason":        {},
	"reason_code_and_title":         {},
	"dispute_reason":                {},
	"dispute_reason_description":    {},
	"subscription_first_order_date": {},
	"subscription_billing_months":   {},
	"ppu_product_name":              {},
}

var accessorName = regexp.MustCompile(`^[a-z0-9_]+$`)

// ParseFieldKey validates raw against the resolver's key grammar.
func ParseFieldKey(raw string) (FieldKey, error) {
	key := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(key, prefixAccessor):
		name := strings.TrimPrefix(key, prefixAccessor)
		if !accessorName.MatchString(name) {
			return nil, fmt.Errorf("invalid accessor field key %q", raw)
		}
		return Accessor{Name: name}, nil

	case strings.HasPrefix(key, prefixMeta):
		// Meta keys are free-form; only the first "." separates the nested path.
		base, nested, hasPath := strings.Cut(strings.TrimPrefix(key, prefixMeta), ".")
		if base == "" {
			return nil, fmt.Errorf("invalid meta field key %q", raw)
		}
		if !hasPath {
			return Meta{Key: base}, nil
		}
		path := strings.Split(nested, ".")
		if slices.Contains(path, "") {
			return nil, fmt.Errorf("invalid meta field key %q", raw)
		}
		return Meta{Key: base, Path: path}, nil

	case strings.HasPrefix(key, prefixSpecial):
		name := strings.TrimPrefix(key, prefixSpecial)
		if _, ok := specialNames[name]; !ok {
			return nil, fmt.Errorf("unknown special field key %q", raw)
		}
		return Special{Name: name}, nil
	}
	return nil, fmt.Errorf("field key %q must start with %s, %s or %s", raw, prefixAccessor, prefixMeta, prefixSpecial)
}

// Describe renders a key for logs.
func Describe(k FieldKey) string {
	switch v := k.(type) {
	case Accessor:
		return "order." + v.Name + "()"
	case Meta:
		if len(v.Path) == 0 {
			return "meta[" + v.Key + "]"
		}
		return "meta[" + v.Key + "]." + strings.Join(v.Path, ".")
	case Special:
		return "special:" + v.Name
	default:
		return "unknown"
	}
}
