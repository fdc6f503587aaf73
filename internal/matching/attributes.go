package matching

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"travel-match/internal/domain"
)

var privateKeywordsInText = []string{"private", "exclusive", "charter", "yacht"}

// itemSignals son las senales derivadas una sola vez por item y compartidas por
// el ajustador y los buckets.
type itemSignals struct {
	attrs    domain.ItemAttributes
	text     string
	private  bool
	price    float64
	hasPrice bool
}

func analyzeItem(attrs domain.ItemAttributes) itemSignals {
	text := attrs.Text()
	s := itemSignals{
		attrs:   attrs,
		text:    text,
		private: attrs.HasFlag(domain.FlagPrivateTour) || containsAny(text, privateKeywordsInText),
	}
	if attrs.Price != nil {
		s.price, s.hasPrice = ParsePrice(*attrs.Price)
	}
	return s
}

// ParsePrice interpreta un precio numerico o textual ("$1,250.00", "€80").
// Devuelve false si el valor falta o no es interpretable.
func ParsePrice(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case *float64:
		if x == nil {
			return 0, false
		}
		f = *x
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, x)
		if cleaned == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func containsAny(text string, keywords []string) bool {
	_, ok := firstMatch(text, keywords)
	return ok
}

func firstMatch(text string, keywords []string) (string, bool) {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return k, true
		}
	}
	return "", false
}
