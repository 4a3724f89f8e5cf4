package storage

import (
	"math/big"
	"strings"
)

// AtomicDecimals is the number of winston digits in one AR.
const AtomicDecimals = 12

var atomicPerUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(AtomicDecimals), nil)

// ToDisplayUnit converts an atomic amount to a decimal string in the
// network's native token, with trailing zeros trimmed. Balance and fee both
// go through here so they are always shown in the same unit.
func ToDisplayUnit(atomic *big.Int) string {
	if atomic == nil {
		return "0"
	}
	s := new(big.Rat).SetFrac(atomic, atomicPerUnit).FloatString(AtomicDecimals)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
