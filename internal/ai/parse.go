package ai

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Extractor locates a JSON object candidate inside free-form model output.
type Extractor interface {
	Candidate(text string) (string, bool)
}

// OutermostBraces takes everything from the first '{' to the last '}'.
// Two independent objects in one response get bridged into one candidate.
type OutermostBraces struct{}

func (OutermostBraces) Candidate(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}

	return text[start : end+1], true
}

// BalancedBraces returns the first brace-balanced object, skipping braces
// inside string literals.
type BalancedBraces struct{}

func (BalancedBraces) Candidate(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

// ExtractorByName возвращает стратегию по имени из конфигурации.
func ExtractorByName(name string) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "outermost":
		return OutermostBraces{}, nil
	case "balanced":
		return BalancedBraces{}, nil
	default:
		return nil, fmt.Errorf("unknown json extractor: %s", name)
	}
}

type Parser struct {
	extractor Extractor
}

// NewParser создает парсер ответа модели; nil означает OutermostBraces.
func NewParser(extractor Extractor) Parser {
	if extractor == nil {
		extractor = OutermostBraces{}
	}
	return Parser{extractor: extractor}
}

// Parse извлекает из текста JSON-объект и декодирует его без интерпретации полей.
func (p Parser) Parse(text string) (map[string]any, error) {
	candidate, ok := p.extractor.Candidate(text)
	if !ok {
		return nil, newGenerationError(ErrNoStructureFound, nil)
	}

	var decoded any
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		return nil, newGenerationError(ErrMalformedStructure, err)
	}

	object, ok := decoded.(map[string]any)
	if !ok {
		return nil, newGenerationError(ErrMalformedStructure, fmt.Errorf("expected json object, got %T", decoded))
	}

	return object, nil
}
