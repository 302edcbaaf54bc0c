package protocol

import (
	"encoding/json"
	"io"
)

// EncodeEvent builds {"event":{"script":"..."}} for one script line.
func EncodeEvent(scriptLine string) []byte {
	return mustMarshal(eventPacket{Event: EventRecord{Script: scriptLine}})
}

// EncodeError builds {"app errors":"..."} for one error message.
func EncodeError(errMsg string) []byte {
	return mustMarshal(errorPacket{AppErrors: errMsg})
}

// WritePacket writes packet to w followed by a newline separator.
func WritePacket(w io.Writer, packet []byte) error {
	buf := make([]byte, 0, len(packet)+1)
	buf = append(buf, packet...)
	buf = append(buf, '\n')
	_, err := w.Write(buf)
	return err
}

// Packets hold only strings, which always marshal.
func mustMarshal(v any) []byte {
	out, err := json.Marshal(v)
	if err != nil {
		panic("protocol: marshal packet: " + err.Error())
	}
	return out
}
