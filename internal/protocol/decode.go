package protocol

import (
	"bytes"
	"encoding/json"
)

type verdict int

const (
	verdictSkip verdict = iota
	verdictDispatch
	verdictMalformed
)

// ParseChunk dispatches every complete document at the front of buf to h and
// returns the number of bytes consumed. The caller keeps buf[consumed:] and
// prepends it to the next chunk.
//
// Incomplete or syntactically broken trailing bytes are never reported; they
// stay unconsumed. A record whose key is known but whose shape is not is
// reported through h.OnParseError and stops dispatch for this call; consumed
// then points at the start of that record.
func ParseChunk(buf []byte, h Handler) int {
	consumed, _ := demux(buf, h)
	return consumed
}

// Collect is ParseChunk returning the dispatched records as a list.
func Collect(buf []byte) ([]Record, int) {
	var c Collector
	consumed := ParseChunk(buf, &c)
	return c.Records, consumed
}

// demux returns the consumed offset and, when a malformed record halted
// dispatch, the offset just past that record (otherwise -1).
func demux(buf []byte, h Handler) (consumed int, skipTo int) {
	consumed = skipSpace(buf, 0)
	if consumed == len(buf) {
		return consumed, -1
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	for consumed < len(buf) {
		var doc json.RawMessage
		if err := dec.Decode(&doc); err != nil {
			return consumed, -1
		}
		end := int(dec.InputOffset())
		doc = bytes.TrimSpace(doc)
		// A number touching the end of the buffer may still grow.
		if end == len(buf) && isNumberStart(doc) {
			return consumed, -1
		}
		next := skipSpace(buf, end)

		rec, v := classify(doc)
		switch v {
		case verdictDispatch:
			dispatch(h, rec)
		case verdictMalformed:
			h.OnParseError(rec.Text)
			return consumed, next
		}
		consumed = next
	}
	return consumed, -1
}

func classify(doc []byte) (Record, verdict) {
	if len(doc) == 0 || doc[0] != '{' {
		return Record{}, verdictSkip
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(doc, &top); err != nil || len(top) != 1 {
		return Record{}, verdictSkip
	}
	if value, ok := top[KeyEvent]; ok {
		script, ok := eventScript(value)
		if !ok {
			return Record{Kind: KindParseError, Text: KeyEvent}, verdictMalformed
		}
		return Record{Kind: KindEvent, Text: script}, verdictDispatch
	}
	if value, ok := top[KeyAppErrors]; ok {
		msg, ok := jsonString(value)
		if !ok {
			return Record{Kind: KindParseError, Text: KeyAppErrors}, verdictMalformed
		}
		return Record{Kind: KindError, Text: msg}, verdictDispatch
	}
	return Record{}, verdictSkip
}

// eventScript accepts exactly {"script": <string>}.
func eventScript(value json.RawMessage) (string, bool) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || value[0] != '{' {
		return "", false
	}
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(value, &inner); err != nil || len(inner) != 1 {
		return "", false
	}
	script, ok := inner[KeyScript]
	if !ok {
		return "", false
	}
	return jsonString(script)
}

func jsonString(value json.RawMessage) (string, bool) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || value[0] != '"' {
		return "", false
	}
	var out string
	if err := json.Unmarshal(value, &out); err != nil {
		return "", false
	}
	return out, true
}

func dispatch(h Handler, rec Record) {
	switch rec.Kind {
	case KindEvent:
		h.OnEvent(rec.Text)
	case KindError:
		h.OnError(rec.Text)
	}
}

func skipSpace(buf []byte, off int) int {
	for off < len(buf) {
		switch buf[off] {
		case ' ', '\t', '\n', '\r':
			off++
		default:
			return off
		}
	}
	return off
}

func isNumberStart(doc []byte) bool {
	if len(doc) == 0 {
		return false
	}
	c := doc[0]
	return c == '-' || (c >= '0' && c <= '9')
}
