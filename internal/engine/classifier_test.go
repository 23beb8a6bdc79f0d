package engine

import "testing"

func TestClassifyKinds(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		name string
		body string
		want Kind
	}{
		{
			name: "incoming transfer",
			body: "You have received 5,000 RWF from John Doe. Transaction ID: 123456. Date: 2024-01-01 10:00:00.",
			want: KindIncomingTransfer,
		},
		{
			name: "generic outgoing payment",
			body: "Your payment of 1,500 RWF to Jane Smith has been completed.",
			want: KindOutgoingPayment,
		},
		{
			name: "cash power payment",
			body: "Your payment of 2,000 RWF to MTN Cash Power with token 3642-5656-1247-9157 has been completed at 2024-03-01 14:00:11. Fee was 0 RWF. Your new balance: 10,000 RWF.",
			want: KindUtilityPayment,
		},
		{
			name: "airtime payment",
			body: "*162*TxId:73214484437*S*Your payment of 1,000 RWF to Airtime has been completed. Fee: 20 RWF. Date: 2024-01-02 09:15:22.",
			want: KindAirtimePurchase,
		},
		{
			name: "internet bundle",
			body: "Yello! You have purchased an internet bundle of 1GB for 2,500 RWF valid for 7 days",
			want: KindBundlePurchase,
		},
		{
			name: "bank deposit",
			body: "A bank deposit of 40,000 RWF has been added to your mobile money account at 2024-05-11 18:43:49. Your NEW BALANCE :40,400 RWF.",
			want: KindBankDeposit,
		},
		{
			name: "bank transfer",
			body: "Bank transfer of 15,000 RWF completed. TxId: 998877. Date: 2024-02-02 08:00:00.",
			want: KindBankTransfer,
		},
		{
			name: "agent withdrawal",
			body: "You Jane Doe have via agent: Agent Sophia (250790777777), withdrawn 20,000 RWF from your mobile money account on 2024-04-02 13:45:06. Your new balance: 5,000 RWF. Fee paid: 200 RWF.",
			want: KindWithdrawal,
		},
		{
			name: "mobile transfer",
			body: "10,000 RWF transferred to Samuel Carter (250791666666) from 36521838 at 2024-01-08 16:31:46. Fee was: 100 RWF. New balance: 28,300 RWF.",
			want: KindMobileTransfer,
		},
		{
			name: "third party transaction",
			body: "A transaction of 2,000 RWF by Black Coffee on your MOMO account was successfully completed at 2024-06-10 21:23:51. Financial Transaction Id: 51732411227.",
			want: KindThirdParty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := c.Classify(tt.body)
			if !ok {
				t.Fatalf("Classify(%q) did not match, want kind %s", tt.body, tt.want)
			}
			if m.Kind != tt.want {
				t.Errorf("Classify() kind = %s, want %s", m.Kind, tt.want)
			}
		})
	}
}

func TestClassifyUnrecognized(t *testing.T) {
	c := NewClassifier(DefaultRules())

	for _, body := range []string{
		"Your OTP is 4821",
		"Welcome to MTN Mobile Money. Dial *182# to get started.",
		"",
	} {
		if _, ok := c.Classify(body); ok {
			t.Errorf("Classify(%q) matched, want unrecognized", body)
		}
	}
}

// A cash power body is also a textual match for the generic payment rule;
// the specific rule must win because it is ordered first.
func TestClassifyRuleOrder(t *testing.T) {
	body := "Your payment of 2,000 RWF to MTN Cash Power has been completed at 2024-03-01 14:00:11."

	m, ok := NewClassifier(DefaultRules()).Classify(body)
	if !ok {
		t.Fatal("Classify() did not match")
	}
	if m.Kind != KindUtilityPayment {
		t.Errorf("Classify() kind = %s, want %s (specific rule must precede generic)", m.Kind, KindUtilityPayment)
	}

	// Reversing the table must flip the outcome: order is part of the
	// classifier contract, not an implementation detail.
	rules := DefaultRules()
	for i, j := 0, len(rules)-1; i < j; i, j = i+1, j-1 {
		rules[i], rules[j] = rules[j], rules[i]
	}
	m, ok = NewClassifier(rules).Classify(body)
	if !ok {
		t.Fatal("Classify() with reversed table did not match")
	}
	if m.Kind != KindOutgoingPayment {
		t.Errorf("Classify() with reversed table kind = %s, want %s", m.Kind, KindOutgoingPayment)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(DefaultRules())
	body := "You have received 5,000 RWF from John Doe. Transaction ID: 123456. Date: 2024-01-01 10:00:00."

	first, ok := c.Classify(body)
	if !ok {
		t.Fatal("Classify() did not match")
	}
	for i := 0; i < 10; i++ {
		again, ok := c.Classify(body)
		if !ok || again != first {
			t.Fatalf("Classify() run %d = %+v, want %+v", i, again, first)
		}
	}
}

func TestClassifyCaptures(t *testing.T) {
	c := NewClassifier(DefaultRules())

	m, ok := c.Classify("You have received 5,000 RWF from John Doe. Transaction ID: 123456. Date: 2024-01-01 10:00:00.")
	if !ok {
		t.Fatal("Classify() did not match")
	}
	if m.Amount != "5,000" {
		t.Errorf("Amount = %q, want %q", m.Amount, "5,000")
	}
	if m.Counterparty != "John Doe" {
		t.Errorf("Counterparty = %q, want %q", m.Counterparty, "John Doe")
	}
	if m.Reference != "123456" {
		t.Errorf("Reference = %q, want %q", m.Reference, "123456")
	}
	if m.Date != "2024-01-01 10:00:00" {
		t.Errorf("Date = %q, want %q", m.Date, "2024-01-01 10:00:00")
	}

	m, ok = c.Classify("Your payment of 1,500 RWF to Jane Smith has been completed.")
	if !ok {
		t.Fatal("Classify() did not match")
	}
	if m.Counterparty != "Jane Smith" {
		t.Errorf("Counterparty = %q, want %q", m.Counterparty, "Jane Smith")
	}
	if m.Reference != "" {
		t.Errorf("Reference = %q, want empty", m.Reference)
	}
}

// Transfers to a bare phone number carry no parenthesized suffix; the
// counterparty capture must stop at the number, not run into the rest of
// the sentence.
func TestClassifyMobileTransferCounterparty(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "bare phone number",
			body: "Transfer of 5,000 RWF to 250788123456 completed. TxId: 445566.",
			want: "250788123456",
		},
		{
			name: "name with phone suffix",
			body: "10,000 RWF transferred to Samuel Carter (250791666666) from 36521838 at 2024-01-08 16:31:46.",
			want: "Samuel Carter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := c.Classify(tt.body)
			if !ok {
				t.Fatalf("Classify(%q) did not match", tt.body)
			}
			if m.Kind != KindMobileTransfer {
				t.Errorf("Kind = %s, want %s", m.Kind, KindMobileTransfer)
			}
			if m.Counterparty != tt.want {
				t.Errorf("Counterparty = %q, want %q", m.Counterparty, tt.want)
			}
		})
	}
}
