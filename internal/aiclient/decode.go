package aiclient

import (
	"encoding/json"
	"strings"
)

// DecodeResult — результат разбора ответа модели. Формат ответа внешнего
// сервиса не гарантирован контрактом: либо из текста удаётся извлечь
// JSON-объект (Structured), либо остаётся сырой текст (Raw).
type DecodeResult struct {
	Structured map[string]any `json:"structured,omitempty"`
	Raw        string         `json:"raw"`
}

// IsStructured сообщает, удалось ли извлечь JSON.
func (r DecodeResult) IsStructured() bool { return r.Structured != nil }

// Decode пытается извлечь первый JSON-объект из свободного текста.
// Ошибок не возвращает: неудачный разбор — это Raw-результат.
func Decode(text string) DecodeResult {
	start := strings.Index(text, "{")
	if start < 0 {
		return DecodeResult{Raw: text}
	}

	dec := json.NewDecoder(strings.NewReader(text[start:]))
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return DecodeResult{Raw: text}
	}
	return DecodeResult{Structured: obj, Raw: text}
}
