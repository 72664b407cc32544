package alerts

// operatorSymbols maps canonical and legacy comparison operator tokens to
// their display symbols. Older backend versions sent word tokens like
// "greater_than"; both shapes collapse to the same symbol set.
var operatorSymbols = map[string]string{
	"=":  "=",
	">":  ">",
	"<":  "<",
	"!=": "≠",
	">=": "≥",
	"<=": "≤",

	"greater_than": ">",
	"less_than":    "<",
	"equal_to":     "=",
	"not_equal":    "≠",
}

// NormalizeOperator maps a comparison operator token to its display
// symbol. Unrecognized tokens are returned unchanged, so the function is
// total and idempotent.
func NormalizeOperator(token string) string {
	if symbol, ok := operatorSymbols[token]; ok {
		return symbol
	}
	return token
}
