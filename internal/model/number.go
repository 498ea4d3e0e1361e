package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// Number guarda um valor JSON que deveria ser numérico.
// Valores não numéricos (texto, null, ausente) passam adiante sem alteração,
// e Float informa se o valor é de fato um número.
type Number struct {
	raw json.RawMessage
}

// NumberOf cria um Number a partir de um float
func NumberOf(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}
	}
	return Number{raw: json.RawMessage(strconv.FormatFloat(f, 'f', -1, 64))}
}

// ParseNumber converte a entrada de um campo de formulário.
// Campo vazio vira 0; texto não numérico vira null.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return NumberOf(0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}
	}
	return NumberOf(f)
}

// Float retorna o valor e true somente quando o JSON guardado é um número
func (n Number) Float() (float64, bool) {
	raw := bytes.TrimSpace(n.raw)
	if len(raw) == 0 {
		return 0, false
	}
	c := raw[0]
	if c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FloatOr retorna o valor numérico ou o default informado
func (n Number) FloatOr(def float64) float64 {
	if f, ok := n.Float(); ok {
		return f
	}
	return def
}

// IsNull indica ausência de valor (campo ausente ou null)
func (n Number) IsNull() bool {
	raw := bytes.TrimSpace(n.raw)
	return len(raw) == 0 || bytes.Equal(raw, jsonNull)
}

// String formata o valor para exibição
func (n Number) String() string {
	if n.IsNull() {
		return ""
	}
	if f, ok := n.Float(); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	var s string
	if err := json.Unmarshal(n.raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(n.raw))
}

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(n.raw)) == 0 {
		return jsonNull, nil
	}
	return n.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	n.raw = append(n.raw[:0], data...)
	return nil
}
