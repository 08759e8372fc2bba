package currencies

import "github.com/sig-0/ratewatch/storage/types"

var (
	USD types.Currency = "USD"
	GBP types.Currency = "GBP"
	EUR types.Currency = "EUR"
	NGN types.Currency = "NGN"
	GHS types.Currency = "GHS"
	KES types.Currency = "KES"
	UGX types.Currency = "UGX"
	INR types.Currency = "INR"
	PHP types.Currency = "PHP"
	BDT types.Currency = "BDT"
)

// Popular are the payout currencies reported against USD after every scrape
var Popular = []types.Currency{NGN, GHS, KES, UGX, INR, PHP, BDT}
