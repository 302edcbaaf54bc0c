package protocol

// Top-level record keys on the wire.
const (
	KeyEvent     = "event"
	KeyAppErrors = "app errors"
	KeyScript    = "script"
)

// RecordKind classifies one dispatched document.
type RecordKind string

const (
	KindEvent      RecordKind = KeyEvent
	KindError      RecordKind = KeyAppErrors
	KindParseError RecordKind = "parse error"
)

// EventRecord is one recorded interaction. The script line is opaque here.
type EventRecord struct {
	Script string `json:"script"`
}

type eventPacket struct {
	Event EventRecord `json:"event"`
}

// ErrorRecord carries one error message reported by the application.
type ErrorRecord struct {
	Message string
}

type errorPacket struct {
	AppErrors string `json:"app errors"`
}

// Record is one dispatched item in stream order.
// For KindParseError, Text holds the record kind that failed its shape check.
type Record struct {
	Kind RecordKind
	Text string
}

// Handler receives dispatched records in stream order.
type Handler interface {
	OnEvent(scriptLine string)
	OnError(errMsg string)
	OnParseError(kind string)
}

// HandlerFuncs adapts plain functions to Handler. Nil funcs are skipped.
type HandlerFuncs struct {
	Event      func(scriptLine string)
	Error      func(errMsg string)
	ParseError func(kind string)
}

func (h HandlerFuncs) OnEvent(scriptLine string) {
	if h.Event != nil {
		h.Event(scriptLine)
	}
}

func (h HandlerFuncs) OnError(errMsg string) {
	if h.Error != nil {
		h.Error(errMsg)
	}
}

func (h HandlerFuncs) OnParseError(kind string) {
	if h.ParseError != nil {
		h.ParseError(kind)
	}
}

// Collector is a Handler that accumulates records in dispatch order.
type Collector struct {
	Records []Record
}

func (c *Collector) OnEvent(scriptLine string) {
	c.Records = append(c.Records, Record{Kind: KindEvent, Text: scriptLine})
}

func (c *Collector) OnError(errMsg string) {
	c.Records = append(c.Records, Record{Kind: KindError, Text: errMsg})
}

func (c *Collector) OnParseError(kind string) {
	c.Records = append(c.Records, Record{Kind: KindParseError, Text: kind})
}
