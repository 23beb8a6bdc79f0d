// Package smsxml decodes SMS backup XML exports into raw messages for the
// extraction engine. The engine itself never sees the document format.
package smsxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/niyonkuru/momo-tracker/internal/engine"
)

// export mirrors the backup file layout: a <smses> root with one <sms>
// element per message. Depending on the exporting app the body is either a
// body="..." attribute or a nested <body> element; both occur in real
// exports, so both are accepted (the attribute wins).
type export struct {
	XMLName  xml.Name  `xml:"smses"`
	Count    string    `xml:"count,attr"`
	Messages []message `xml:"sms"`
}

type message struct {
	BodyAttr string `xml:"body,attr"`
	BodyElem string `xml:"body"`
	Date     string `xml:"date,attr"` // milliseconds since epoch
}

// Decode reads an SMS export and returns its messages in document order.
// A document that does not parse is a systemic failure: the error is
// returned and no partial message list is produced. A malformed per-message
// date attribute is not: the message is kept with no timestamp hint.
func Decode(r io.Reader) ([]engine.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("smsxml.Decode: reading export: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory export.
func DecodeBytes(data []byte) ([]engine.RawMessage, error) {
	var doc export
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("smsxml.DecodeBytes: unmarshal export: %w", err)
	}

	msgs := make([]engine.RawMessage, 0, len(doc.Messages))
	for _, m := range doc.Messages {
		body := m.BodyAttr
		if body == "" {
			body = m.BodyElem
		}

		var sentAt time.Time
		if ms, err := strconv.ParseInt(m.Date, 10, 64); err == nil && ms > 0 {
			sentAt = time.UnixMilli(ms).UTC()
		}

		msgs = append(msgs, engine.RawMessage{Body: body, SentAt: sentAt})
	}
	return msgs, nil
}
