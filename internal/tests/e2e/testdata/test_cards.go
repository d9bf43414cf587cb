// Package testdata holds the cards the e2e suite submits. The gateway only
// checks the Luhn digit and expiry; outcomes come from the scripted processor.
package testdata

type TestCard struct {
	PAN   string
	CVV   string
	Month int
	Year  int
}

var (
	ValidCard = TestCard{PAN: "4111111111111111", CVV: "123", Month: 12, Year: 2030}

	// Mastercard with grouping spaces and a two-digit year.
	SpacedCard = TestCard{PAN: "5555 5555 5555 4444", CVV: "789", Month: 9, Year: 30}

	BadChecksumCard = TestCard{PAN: "4111111111111112", CVV: "123", Month: 12, Year: 2030}

	ExpiredCard = TestCard{PAN: "5105105105105100", CVV: "321", Month: 3, Year: 2020}
)
