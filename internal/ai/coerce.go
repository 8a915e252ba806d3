package ai

import (
	"math"
	"strconv"
	"strings"
)

// toInt приводит значение из декодированного JSON к int.
// Дробные числа отбрасывают дробную часть, строки должны содержать целое число.
// Числа вне диапазона int не приводятся.
func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		// float64(math.MaxInt) округляется до 2^63, поэтому верхняя граница строгая.
		if v < float64(math.MinInt) || v >= float64(math.MaxInt) {
			return 0, false
		}
		return int(v), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func toNonEmptyString(value any) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
