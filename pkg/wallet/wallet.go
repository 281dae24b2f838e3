// Package wallet validates withdrawal destinations and converts ledger
// points into on-chain token units.
package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/lastforend/airdrop-ledger/pkg/config"
)

// ValidateAddress checks that addr is a well-formed EVM address.
func ValidateAddress(addr string) error {
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("invalid wallet address: %s", addr)
	}
	return nil
}

// NormalizeAddress returns the EIP-55 checksummed form of addr.
func NormalizeAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}

// Converter maps ledger points to token base units. One point is one
// whole token.
type Converter struct {
	cfg *config.TokenConfig
}

// NewConverter creates a converter for the configured token
func NewConverter(cfg *config.TokenConfig) *Converter {
	return &Converter{cfg: cfg}
}

// ToTokenUnits converts a point amount to base units as a decimal string.
func (c *Converter) ToTokenUnits(points int64) string {
	return decimal.NewFromInt(points).Shift(c.cfg.Decimals).String()
}

// FromTokenUnits converts base units back to points, truncating any
// fractional remainder.
func (c *Converter) FromTokenUnits(units string) (int64, error) {
	d, err := decimal.NewFromString(units)
	if err != nil {
		return 0, fmt.Errorf("invalid token amount %q: %w", units, err)
	}
	return d.Shift(-c.cfg.Decimals).IntPart(), nil
}

// Symbol returns the configured token symbol.
func (c *Converter) Symbol() string {
	return c.cfg.Symbol
}
