package model

import (
	"fmt"
	"strings"
)

type AssetClass string

const (
	AssetClassStock  AssetClass = "stock"
	AssetClassCrypto AssetClass = "crypto"
)

func (c AssetClass) Valid() bool {
	return c == AssetClassStock || c == AssetClassCrypto
}

func ParseAssetClass(s string) (AssetClass, error) {
	c := AssetClass(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown asset class %q", s)
	}
	return c, nil
}

// AssetKey identifies a position. No two holdings of a portfolio share a key.
type AssetKey struct {
	Class  AssetClass
	Symbol string
}

func NewAssetKey(class AssetClass, symbol string) AssetKey {
	return AssetKey{Class: class, Symbol: NormalizeSymbol(symbol)}
}

func (k AssetKey) String() string {
	return string(k.Class) + ":" + k.Symbol
}

func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
