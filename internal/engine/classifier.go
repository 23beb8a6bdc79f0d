package engine

import "time"

// RawMessage is one SMS body handed to the engine, plus the timestamp the
// export carried for it (zero when absent). The engine never mutates it.
type RawMessage struct {
	Body   string
	SentAt time.Time
}

// Match holds the raw captures for one classified message. All fields are
// unparsed text; the normalizer owns type coercion.
type Match struct {
	Kind         Kind
	Amount       string
	Date         string // empty when no date-like region was found
	Counterparty string // empty when the rule has no sub-pattern or it missed
	Fee          string
	Balance      string
	Reference    string
}

// Classifier tries recognizer rules against message bodies in a fixed
// priority order. It is read-only after construction and safe for
// concurrent use.
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the first rule+alternative match for body, or ok=false
// when no rule matches. An unmatched body is a normal outcome, not an
// error: the caller routes it to diagnostics.
func (c *Classifier) Classify(body string) (Match, bool) {
	for _, rule := range c.rules {
		for _, p := range rule.Patterns {
			groups := p.FindStringSubmatch(body)
			if groups == nil {
				continue
			}

			amountGroup := rule.AmountGroup
			if amountGroup == 0 {
				amountGroup = 1
			}

			m := Match{Kind: rule.Kind}
			if amountGroup < len(groups) {
				m.Amount = groups[amountGroup]
			}
			if rule.Counterparty != nil {
				if cp := rule.Counterparty.FindStringSubmatch(body); cp != nil {
					m.Counterparty = cp[1]
				}
			}

			m.Date = rawDate(body)
			m.Fee = rawFee(body)
			m.Balance = rawBalance(body)
			m.Reference = rawReference(body)
			return m, true
		}
	}
	return Match{}, false
}
