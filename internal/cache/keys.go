package cache

import "strings"

// Key identifies one cached collaborator response. Keys are built only
// through the constructors below.
type Key string

const (
	KeyTransactions Key = "transactions"
	KeyCategories   Key = "categories"
	KeyCryptoPrices Key = "crypto-prices"

	fxRatePrefix      = "fx-rate:"
	cryptoChartPrefix = "crypto-chart:"
	inflationPrefix   = "inflation:"
)

func FXRateKey(currency string) Key {
	return Key(fxRatePrefix + strings.ToUpper(strings.TrimSpace(currency)))
}

func CryptoChartKey(id string) Key {
	return Key(cryptoChartPrefix + strings.ToLower(strings.TrimSpace(id)))
}

func InflationKey(country string) Key {
	return Key(inflationPrefix + strings.ToUpper(strings.TrimSpace(country)))
}

// Family returns the key without its parameter, e.g. "fx-rate".
func (k Key) Family() string {
	family, _, _ := strings.Cut(string(k), ":")
	return family
}

// ParseKey validates a key received from another instance.
func ParseKey(s string) (Key, bool) {
	k := Key(s)
	switch {
	case k == KeyTransactions, k == KeyCategories, k == KeyCryptoPrices:
		return k, true
	case strings.HasPrefix(s, fxRatePrefix) && len(s) > len(fxRatePrefix),
		strings.HasPrefix(s, cryptoChartPrefix) && len(s) > len(cryptoChartPrefix),
		strings.HasPrefix(s, inflationPrefix) && len(s) > len(inflationPrefix):
		return k, true
	}
	return "", false
}
