package engine

// Kind is the transaction category assigned by the classifier.
// It is an open enum: callers may register rules for kinds that are not
// listed here, which is why Kind is a string type rather than an int.
type Kind string

const (
	KindIncomingTransfer Kind = "incoming_transfer"
	KindOutgoingPayment  Kind = "outgoing_payment"
	KindBankDeposit      Kind = "bank_deposit"
	KindBankTransfer     Kind = "bank_transfer"
	KindMobileTransfer   Kind = "mobile_transfer"
	KindWithdrawal       Kind = "withdrawal"
	KindAirtimePurchase  Kind = "airtime_purchase"
	KindUtilityPayment   Kind = "utility_payment"
	KindBundlePurchase   Kind = "bundle_purchase"
	KindThirdParty       Kind = "third_party_transaction"
	KindUnknown          Kind = "unknown"
)

func (k Kind) String() string {
	return string(k)
}
