package common

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/citizenwallet/govdash/pkg/governance"
)

const tokenDecimals = 18

// ParseBigInt parses a non-negative decimal or 0x prefixed hex integer
func ParseBigInt(field, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)

	var (
		i  *big.Int
		ok bool
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		i, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		i, ok = new(big.Int).SetString(s, 10)
	}

	if !ok || i.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s must be a non-negative integer", governance.ErrInvalidInput, field)
	}

	return i, nil
}

// ParseTokenAmount converts a decimal token amount such as "1.5" to base units
func ParseTokenAmount(field, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > tokenDecimals || strings.ContainsAny(whole+frac, "+-") {
		return nil, fmt.Errorf("%w: %s is not a valid amount", governance.ErrInvalidInput, field)
	}

	digits := whole + frac + strings.Repeat("0", tokenDecimals-len(frac))

	i, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a valid amount", governance.ErrInvalidInput, field)
	}

	return i, nil
}

// FormatTokenAmount is the inverse of ParseTokenAmount
func FormatTokenAmount(i *big.Int) string {
	if i == nil {
		return "0"
	}

	s := i.String()
	if len(s) <= tokenDecimals {
		s = strings.Repeat("0", tokenDecimals-len(s)+1) + s
	}

	whole, frac := s[:len(s)-tokenDecimals], strings.TrimRight(s[len(s)-tokenDecimals:], "0")
	if frac == "" {
		return whole
	}

	return whole + "." + frac
}
