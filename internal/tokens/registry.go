package tokens

import "github.com/ethereum/go-ethereum/common"

// WETHAddress is the canonical mainnet wrapped-ether contract. Native ETH is
// substituted with it everywhere a router needs a token address.
var WETHAddress = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

// Entry is a known mainnet token. Decimals are fixed per contract, so
// carrying them here saves a node round-trip on every symbol reference.
type Entry struct {
	Address  common.Address
	Decimals uint8
}

// Registry maps upper-case token symbols to mainnet entries. It is immutable
// after construction and passed explicitly into the resolver so tests can
// substitute their own table.
type Registry map[string]Entry

// DefaultRegistry returns the built-in mainnet symbol table.
func DefaultRegistry() Registry {
	return Registry{
		"WETH": {Address: WETHAddress, Decimals: 18},
		"USDC": {Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Decimals: 6},
		"USDT": {Address: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), Decimals: 6},
		"DAI":  {Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Decimals: 18},
		"WBTC": {Address: common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"), Decimals: 8},
		"LINK": {Address: common.HexToAddress("0x514910771AF9Ca656af840dff83E8264EcF986CA"), Decimals: 18},
		"UNI":  {Address: common.HexToAddress("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"), Decimals: 18},
		"AAVE": {Address: common.HexToAddress("0x7Fc66500c84A76Ad7e9c93437bFc5Ac33E2DDaE9"), Decimals: 18},
		"MKR":  {Address: common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2"), Decimals: 18},
	}
}
