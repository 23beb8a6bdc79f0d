package engine

import "time"

// Record is the canonical transaction produced for one classified message.
// Amount and Fee are whole RWF (fractional input truncated). Balance is nil
// when the body carried no balance. Raw retains the source text for audit.
type Record struct {
	ID           string
	Kind         Kind
	Amount       int64
	OccurredAt   time.Time
	Counterparty string
	Fee          int64
	Balance      *int64
	Raw          string
}

// UnknownCounterparty is the sentinel stored when no counterparty could be
// extracted. Extraction absence is never an error.
const UnknownCounterparty = "Unknown"

// normalizer coerces raw captures into a Record. It never fails: every
// malformed field has a documented fallback, reported back as a note so the
// pipeline can log and count it.
type normalizer struct {
	clock func() time.Time
}

const (
	noteZeroAmount    = "amount unparsable, normalized to zero"
	noteClockFallback = "no parsable date, used processing time"
)

func (n *normalizer) record(msg RawMessage, m Match) (Record, []string) {
	var notes []string

	amount, ok := parseAmount(m.Amount)
	if !ok {
		amount = 0
		notes = append(notes, noteZeroAmount)
	}

	occurredAt, ok := parseDate(m.Date)
	if !ok {
		if !msg.SentAt.IsZero() {
			occurredAt = msg.SentAt
		} else {
			occurredAt = n.clock()
			notes = append(notes, noteClockFallback)
		}
	}

	counterparty := m.Counterparty
	if counterparty == "" {
		counterparty = UnknownCounterparty
	}

	// Fee defaults to zero, balance to absent; both silently.
	fee, _ := parseAmount(m.Fee)

	var balance *int64
	if b, ok := parseAmount(m.Balance); ok && m.Balance != "" {
		balance = &b
	}

	id := m.Reference
	if id == "" {
		id = fallbackID(msg.Body)
	}

	return Record{
		ID:           id,
		Kind:         m.Kind,
		Amount:       amount,
		OccurredAt:   occurredAt,
		Counterparty: counterparty,
		Fee:          fee,
		Balance:      balance,
		Raw:          msg.Body,
	}, notes
}
