package vehicle

import (
	"fmt"
	"strings"
)

// Record is the loosely-structured vehicle payload captured by the browser
// extension. Every attribute is optional; readers treat absent values as
// empty strings and skip the corresponding form field.
type Record map[string]any

// Str returns the attribute rendered as a trimmed string. JSON numbers come
// through as float64; integral values render without a decimal point.
func (r Record) Str(key string) string {
	value, ok := r[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func (r Record) Year() string          { return r.Str("year") }
func (r Record) Make() string          { return r.Str("make") }
func (r Record) Model() string         { return r.Str("model") }
func (r Record) Trim() string          { return r.Str("trim") }
func (r Record) Price() string         { return r.Str("price") }
func (r Record) Mileage() string       { return r.Str("mileage") }
func (r Record) VIN() string           { return r.Str("vin") }
func (r Record) ExteriorColor() string { return r.Str("exteriorColor") }
func (r Record) InteriorColor() string { return r.Str("interiorColor") }
func (r Record) Transmission() string  { return r.Str("transmission") }
func (r Record) Engine() string        { return r.Str("engine") }
func (r Record) Drivetrain() string    { return r.Str("drivetrain") }
func (r Record) Description() string   { return r.Str("description") }

// ImageURLs returns the captured image source URLs, if any.
func (r Record) ImageURLs() []string {
	raw, ok := r["images"]
	if !ok {
		return nil
	}
	switch list := raw.(type) {
	case []string:
		return list
	case []any:
		urls := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				urls = append(urls, strings.TrimSpace(s))
			}
		}
		return urls
	default:
		return nil
	}
}
