package fitsfile

import (
	"math/big"
	"strings"
)

// historyWidth is the longest HISTORY text that fits in one card.
const historyWidth = 72

// Card is one header record.
type Card struct {
	Key     string
	Value   any
	Comment string
}

// Header is an ordered list of cards. HISTORY and COMMENT may repeat; any
// other key appears at most once.
type Header struct {
	Cards []Card
}

// Get returns the first card named key.
func (h *Header) Get(key string) (Card, bool) {
	key = strings.ToUpper(key)
	for _, c := range h.Cards {
		if c.Key == key {
			return c, true
		}
	}
	return Card{}, false
}

// String returns the value of key if it is a string.
func (h *Header) String(key string) (string, bool) {
	c, ok := h.Get(key)
	if !ok {
		return "", false
	}
	s, ok := c.Value.(string)
	return strings.TrimSpace(s), ok
}

// Float returns the value of key converted to float64. Integer values are
// accepted.
func (h *Header) Float(key string) (float64, bool) {
	c, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	switch v := c.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case big.Int:
		f, _ := new(big.Float).SetInt(&v).Float64()
		return f, true
	case *big.Int:
		f, _ := new(big.Float).SetInt(v).Float64()
		return f, true
	default:
		return 0, false
	}
}

// Set replaces the value of key, or appends a new card.
func (h *Header) Set(key string, value any, comment string) {
	key = strings.ToUpper(key)
	for i := range h.Cards {
		if h.Cards[i].Key == key {
			h.Cards[i].Value = value
			h.Cards[i].Comment = comment
			return
		}
	}
	h.Cards = append(h.Cards, Card{Key: key, Value: value, Comment: comment})
}

// Delete removes every card named key.
func (h *Header) Delete(key string) {
	key = strings.ToUpper(key)
	out := h.Cards[:0]
	for _, c := range h.Cards {
		if c.Key != key {
			out = append(out, c)
		}
	}
	h.Cards = out
}

// AddHistory appends text as HISTORY cards, wrapping it at card width.
func (h *Header) AddHistory(text string) {
	for len(text) > historyWidth {
		cut := strings.LastIndexByte(text[:historyWidth], ' ')
		if cut <= 0 {
			cut = historyWidth
		}
		h.Cards = append(h.Cards, Card{Key: "HISTORY", Value: text[:cut]})
		text = strings.TrimLeft(text[cut:], " ")
	}
	h.Cards = append(h.Cards, Card{Key: "HISTORY", Value: text})
}

// History returns the text of every HISTORY card in order.
func (h *Header) History() []string {
	var out []string
	for _, c := range h.Cards {
		if c.Key != "HISTORY" {
			continue
		}
		s, _ := c.Value.(string)
		out = append(out, s)
	}
	return out
}

// Clone returns a copy of h that shares no card storage.
func (h Header) Clone() Header {
	return Header{Cards: append([]Card(nil), h.Cards...)}
}

// commentary reports keys whose text is free-form and may repeat.
func commentary(key string) bool {
	return key == "HISTORY" || key == "COMMENT" || key == ""
}

// structural reports keys that the writer regenerates from the data.
func structural(key string) bool {
	switch key {
	case "SIMPLE", "XTENSION", "BITPIX", "NAXIS", "EXTEND", "PCOUNT", "GCOUNT",
		"BSCALE", "BZERO", "BLANK", "EXTNAME", "END":
		return true
	}
	if rest, ok := strings.CutPrefix(key, "NAXIS"); ok && rest != "" {
		for _, r := range rest {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}
