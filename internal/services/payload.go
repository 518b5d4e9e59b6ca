package services

import (
	"strconv"
	"strings"

	"github.com/automatikblog/metrica-click-sub000/internal/models"
)

// identityFields is the fixed priority list scanned for a session identity:
// vendor case-sensitive names first, their lower-case variants next, generic
// names last.
var identityFields = []string{
	"SCK", "SRC",
	"sck", "src",
	"clickid", "click_id", "mcid", "session_id", "sid",
}

// ExtractIdentity scans a decoded webhook payload for a session identity.
// Top-level fields win; one nested level ("data", then "purchase") is scanned
// afterwards because several checkout platforms wrap the interesting fields.
func ExtractIdentity(payload map[string]interface{}) (string, bool) {
	if id, ok := scanIdentity(payload); ok {
		return id, true
	}
	for _, wrapper := range []string{"data", "purchase"} {
		if nested, ok := payload[wrapper].(map[string]interface{}); ok {
			if id, ok := scanIdentity(nested); ok {
				return id, true
			}
		}
	}
	return "", false
}

func scanIdentity(fields map[string]interface{}) (string, bool) {
	for _, name := range identityFields {
		if raw, ok := fields[name]; ok {
			if s, ok := raw.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// PayloadShape tags the vendor convention a webhook body follows. Shape is
// classified once, then parsed; the shapes are tried in priority order.
type PayloadShape int

const (
	ShapeGeneric PayloadShape = iota
	ShapeHotmartPurchase
	ShapeCheckout
	ShapeLead
)

func (s PayloadShape) String() string {
	switch s {
	case ShapeHotmartPurchase:
		return "hotmart_purchase"
	case ShapeCheckout:
		return "checkout"
	case ShapeLead:
		return "lead"
	default:
		return "generic"
	}
}

// NormalizedConversion is the canonical result of payload normalization.
type NormalizedConversion struct {
	Type     string
	Value    float64
	Currency string
	Shape    PayloadShape
}

// ClassifyPayload decides which vendor shape a payload follows.
func ClassifyPayload(payload map[string]interface{}) PayloadShape {
	event := strings.ToUpper(stringField(payload, "event"))

	if _, ok := payload["purchase_value"]; ok {
		return ShapeHotmartPurchase
	}
	if strings.HasPrefix(event, "PURCHASE") {
		return ShapeHotmartPurchase
	}
	if nested, ok := payload["data"].(map[string]interface{}); ok {
		if _, ok := nested["purchase"]; ok {
			return ShapeHotmartPurchase
		}
	}

	for _, key := range []string{"total", "order_total", "checkout_value"} {
		if _, ok := payload[key]; ok {
			return ShapeCheckout
		}
	}

	marker := strings.ToLower(event + " " + stringField(payload, "type") + " " + stringField(payload, "conversion_type"))
	if strings.Contains(marker, "lead") || strings.Contains(marker, "signup") {
		return ShapeLead
	}
	if _, ok := payload["lead"]; ok {
		return ShapeLead
	}

	return ShapeGeneric
}

// NormalizePayload classifies a payload and extracts conversion type,
// monetary value and currency. Currency falls back to the tenant's local
// currency when the payload carries none.
func NormalizePayload(payload map[string]interface{}, defaultCurrency string) NormalizedConversion {
	shape := ClassifyPayload(payload)
	norm := NormalizedConversion{
		Type:     models.ConversionTypePurchase,
		Currency: defaultCurrency,
		Shape:    shape,
	}

	switch shape {
	case ShapeHotmartPurchase:
		norm.Value = firstNumber(payload, "purchase_value", "price", "value")
		if cur := firstString(payload, "currency", "currency_value", "currency_code"); cur != "" {
			norm.Currency = cur
		}
		if purchase := hotmartPurchase(payload); purchase != nil {
			if norm.Value == 0 {
				norm.Value = firstNumber(purchase, "value", "price")
				if price, ok := purchase["price"].(map[string]interface{}); ok {
					norm.Value = firstNumber(price, "value")
					if cur := firstString(price, "currency_value", "currency_code"); cur != "" {
						norm.Currency = cur
					}
				}
			}
		}

	case ShapeCheckout:
		norm.Value = firstNumber(payload, "total", "order_total", "checkout_value")
		if cur := firstString(payload, "currency", "currency_code"); cur != "" {
			norm.Currency = cur
		}

	case ShapeLead:
		marker := strings.ToLower(stringField(payload, "event") + " " + stringField(payload, "type") + " " + stringField(payload, "conversion_type"))
		if strings.Contains(marker, "signup") {
			norm.Type = models.ConversionTypeSignup
		} else {
			norm.Type = models.ConversionTypeLead
		}
		norm.Value = firstNumber(payload, "value", "amount")
		if cur := firstString(payload, "currency"); cur != "" {
			norm.Currency = cur
		}

	default:
		norm.Value = firstNumber(payload, "amount", "value")
		if cur := firstString(payload, "currency"); cur != "" {
			norm.Currency = cur
		}
	}

	return norm
}

// hotmartPurchase digs out data.purchase when the payload uses the nested
// Hotmart v2 envelope.
func hotmartPurchase(payload map[string]interface{}) map[string]interface{} {
	data, ok := payload["data"].(map[string]interface{})
	if !ok {
		return nil
	}
	purchase, ok := data["purchase"].(map[string]interface{})
	if !ok {
		return nil
	}
	return purchase
}

func stringField(fields map[string]interface{}, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

func firstString(fields map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstNumber(fields map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case float64:
			if v != 0 {
				return v
			}
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil && f != 0 {
				return f
			}
		}
	}
	return 0
}
