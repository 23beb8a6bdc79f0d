package engine

import "regexp"

// amt is the capture group shared by every default pattern: a whole number
// with optional thousands separators and an optional fractional part,
// e.g. "5,000" or "1500.75".
const amt = `(\d+(?:,\d{3})*(?:\.\d+)?)`

// Rule recognizes one transaction kind. Patterns are alternatives tried in
// order; the first one that matches anywhere in the body wins. Group 1 of
// the matched pattern (or AmountGroup when set) is the raw amount.
// Counterparty, when non-nil, is applied to the whole body and its group 1
// yields the counterparty name.
type Rule struct {
	Kind         Kind
	Patterns     []*regexp.Regexp
	AmountGroup  int // capture group holding the amount; 0 means group 1
	Counterparty *regexp.Regexp
}

func pat(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

// DefaultRules returns the MTN MoMo recognizer table. Order is part of the
// contract: specific payment rules (cash power, airtime, bundles) must come
// before the generic "payment of X RWF to" rule, whose pattern is a textual
// superset of theirs. Reordering changes classification results.
func DefaultRules() []Rule {
	return []Rule{
		{
			Kind: KindUtilityPayment,
			Patterns: pat(
				`payment of `+amt+` RWF to (?:MTN )?Cash ?Power`,
				`EUCL payment of `+amt+` RWF`,
				`Cash Power payment of `+amt+` RWF`,
			),
			Counterparty: regexp.MustCompile(`(?i)((?:MTN )?Cash ?Power|EUCL)`),
		},
		{
			Kind: KindAirtimePurchase,
			Patterns: pat(
				`payment of `+amt+` RWF to Airtime`,
				`Airtime payment of `+amt+` RWF`,
			),
			Counterparty: regexp.MustCompile(`(?i)(Airtime)`),
		},
		{
			Kind: KindBundlePurchase,
			Patterns: pat(
				`bundle of .+? for `+amt+` RWF`,
				`(?:internet|voice) bundle .*?for `+amt+` RWF`,
				`purchased .*?(?:internet|voice) bundle .*?`+amt+` RWF`,
			),
		},
		{
			Kind: KindBankDeposit,
			Patterns: pat(
				`bank deposit of `+amt+` RWF`,
				`deposited `+amt+` RWF to (?:your )?bank`,
			),
		},
		{
			Kind: KindBankTransfer,
			Patterns: pat(
				`bank transfer of `+amt+` RWF`,
				`transferred `+amt+` RWF to (?:your )?bank`,
			),
		},
		{
			Kind: KindWithdrawal,
			Patterns: pat(
				`agent:.*?withdrawn `+amt+` RWF`,
				`withdrawn `+amt+` RWF .*?agent`,
				`withdrawn `+amt+` RWF`,
			),
			Counterparty: regexp.MustCompile(`(?i)agent:?\s*([^.(]+?)\s*\(`),
		},
		{
			Kind: KindThirdParty,
			Patterns: pat(
				`third party transaction of `+amt+` RWF`,
				`initiated by .+?\. Amount: `+amt+` RWF`,
				amt+` RWF .*?by .+? on your MOMO account`,
			),
			Counterparty: regexp.MustCompile(`(?i)by ([^.]+?)(?: on your momo account|\. Amount)`),
		},
		{
			Kind: KindIncomingTransfer,
			Patterns: pat(
				`you have received `+amt+` RWF from`,
				`received `+amt+` RWF from`,
			),
			Counterparty: regexp.MustCompile(`(?i)from\s+([^.(]+?)\s*(?:[.(]|$)`),
		},
		{
			Kind: KindMobileTransfer,
			Patterns: pat(
				amt+` RWF transferred to`,
				`transfer of `+amt+` RWF to \d{9,12}`,
				`sent `+amt+` RWF to \d{9,12}`,
			),
			// Stops before "completed" so bare phone-number transfers
			// ("to 250788123456 completed") capture only the number.
			Counterparty: regexp.MustCompile(`(?i)to\s+([^.(]+?)\s*(?:[.(]|\bcompleted\b|$)`),
		},
		{
			// Generic rule: keep last among the payment rules.
			Kind: KindOutgoingPayment,
			Patterns: pat(
				`payment of ` + amt + ` RWF to`,
			),
			Counterparty: regexp.MustCompile(`(?i)to (.+?)(?: \d+)? (?:has been )?completed`),
		},
	}
}
