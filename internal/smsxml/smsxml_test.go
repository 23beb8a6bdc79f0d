package smsxml

import (
	"strings"
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<smses count="3">
  <sms protocol="0" address="M-Money" date="1704103200000" body="You have received 5,000 RWF from John Doe. Transaction ID: 123456." />
  <sms protocol="0" address="M-Money" date="not-a-number" body="Your OTP is 4821" />
  <sms protocol="0" address="M-Money" date="1704189600000"><body>Your payment of 1,500 RWF to Jane Smith has been completed.</body></sms>
</smses>`

	msgs, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("Decode() messages = %d, want 3", len(msgs))
	}

	if !strings.HasPrefix(msgs[0].Body, "You have received") {
		t.Errorf("first body = %q", msgs[0].Body)
	}
	want := time.UnixMilli(1704103200000).UTC()
	if !msgs[0].SentAt.Equal(want) {
		t.Errorf("first SentAt = %v, want %v", msgs[0].SentAt, want)
	}

	// Malformed date attribute: keep the message, drop the hint.
	if !msgs[1].SentAt.IsZero() {
		t.Errorf("second SentAt = %v, want zero", msgs[1].SentAt)
	}

	// Body carried as a nested element instead of an attribute.
	if !strings.HasPrefix(msgs[2].Body, "Your payment of 1,500 RWF") {
		t.Errorf("third body = %q", msgs[2].Body)
	}
}

func TestDecodeCorruptDocument(t *testing.T) {
	_, err := Decode(strings.NewReader("<smses><sms body='x'"))
	if err == nil {
		t.Fatal("Decode() error = nil, want systemic failure for corrupt export")
	}
}

func TestDecodeEmptyExport(t *testing.T) {
	msgs, err := Decode(strings.NewReader(`<smses count="0"></smses>`))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Decode() messages = %d, want 0", len(msgs))
	}
}
