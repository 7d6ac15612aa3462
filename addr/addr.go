// Package addr validates and decodes chain-native address representations
// and rewrites native coins to their wrapped-token contracts for providers
// that only quote token-to-token pairs. All functions are pure; no I/O.
package addr

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
	solana "github.com/gagliardetto/solana-go"

	"github.com/lumenwallet/swapper/swap"
)

// bech32HRPs maps bech32 account chains to their required prefix.
var bech32HRPs = map[swap.Chain]string{
	swap.Thorchain: "thor",
	swap.Cosmos:    "cosmos",
}

// utxoBech32HRPs maps UTXO chains that also accept segwit-style addresses.
var utxoBech32HRPs = map[swap.Chain]string{
	swap.Bitcoin:  "bc",
	swap.Litecoin: "ltc",
}

// utxoBase58Versions pins the accepted base58check version bytes (P2PKH,
// P2SH) per chain; without this a well-formed address for one UTXO chain
// validates on all of them.
var utxoBase58Versions = map[swap.Chain][]byte{
	swap.Bitcoin:     {0x00, 0x05},
	swap.BitcoinCash: {0x00, 0x05},
	swap.Litecoin:    {0x30, 0x32},
	swap.Dogecoin:    {0x1e, 0x16},
}

const tronAddressVersion = 0x41

var nearAccountRe = regexp.MustCompile(`^([a-z0-9]+([-_][a-z0-9]+)*\.)*[a-z0-9]+([-_][a-z0-9]+)*$`)

// Validate checks that address is a well-formed address for the chain,
// including checksum verification where the encoding carries one. Returns an
// error wrapping swap.ErrInvalidAddress on failure.
func Validate(chain swap.Chain, address string) error {
	if address == "" {
		return fmt.Errorf("%w: empty address", swap.ErrInvalidAddress)
	}

	switch chain.Family() {
	case swap.FamilyEVM:
		_, err := DecodeEVM(address)
		return err

	case swap.FamilySolana:
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return fmt.Errorf("%w: %q: %v", swap.ErrInvalidAddress, address, err)
		}
		return nil

	case swap.FamilyBitcoin:
		return validateUTXO(chain, address)

	case swap.FamilyBech32:
		hrp, _, _, err := bech32.DecodeGeneric(address)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", swap.ErrInvalidAddress, address, err)
		}
		if want := bech32HRPs[chain]; hrp != want {
			return fmt.Errorf("%w: %q: prefix %q, want %q", swap.ErrInvalidAddress, address, hrp, want)
		}
		return nil

	case swap.FamilySui:
		raw := strings.TrimPrefix(address, "0x")
		if len(raw) != 64 || !strings.HasPrefix(address, "0x") {
			return fmt.Errorf("%w: %q", swap.ErrInvalidAddress, address)
		}
		if _, err := hex.DecodeString(raw); err != nil {
			return fmt.Errorf("%w: %q: %v", swap.ErrInvalidAddress, address, err)
		}
		return nil

	case swap.FamilyTon:
		// user-friendly form: 36 bytes base64url, 48 chars
		if len(address) != 48 {
			return fmt.Errorf("%w: %q", swap.ErrInvalidAddress, address)
		}
		if _, err := base64.URLEncoding.DecodeString(address); err != nil {
			return fmt.Errorf("%w: %q: %v", swap.ErrInvalidAddress, address, err)
		}
		return nil

	case swap.FamilyTron:
		decoded, version, err := base58.CheckDecode(address)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", swap.ErrInvalidAddress, address, err)
		}
		if version != tronAddressVersion || len(decoded) != 20 {
			return fmt.Errorf("%w: %q", swap.ErrInvalidAddress, address)
		}
		return nil

	case swap.FamilyNear:
		if len(address) < 2 || len(address) > 64 || !nearAccountRe.MatchString(address) {
			return fmt.Errorf("%w: %q", swap.ErrInvalidAddress, address)
		}
		return nil
	}

	return fmt.Errorf("%w: %s", swap.ErrNotSupportedChain, chain)
}

// DecodeEVM parses a 0x-prefixed address and, when the input is mixed-case,
// verifies the EIP-55 checksum.
func DecodeEVM(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("%w: %q", swap.ErrInvalidAddress, address)
	}
	decoded := common.HexToAddress(address)

	hexPart := strings.TrimPrefix(address, "0x")
	lower := strings.ToLower(hexPart)
	upper := strings.ToUpper(hexPart)
	if hexPart != lower && hexPart != upper {
		// mixed case carries an EIP-55 checksum
		if decoded.Hex() != "0x"+hexPart {
			return common.Address{}, fmt.Errorf("%w: %q: bad checksum", swap.ErrInvalidAddress, address)
		}
	}
	return decoded, nil
}

func validateUTXO(chain swap.Chain, address string) error {
	if hrp, ok := utxoBech32HRPs[chain]; ok {
		if strings.HasPrefix(strings.ToLower(address), hrp+"1") {
			got, _, _, err := bech32.DecodeGeneric(strings.ToLower(address))
			if err != nil {
				return fmt.Errorf("%w: %q: %v", swap.ErrInvalidAddress, address, err)
			}
			if got != hrp {
				return fmt.Errorf("%w: %q", swap.ErrInvalidAddress, address)
			}
			return nil
		}
	}
	decoded, version, err := base58.CheckDecode(address)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", swap.ErrInvalidAddress, address, err)
	}
	if len(decoded) != 20 {
		return fmt.Errorf("%w: %q", swap.ErrInvalidAddress, address)
	}
	for _, want := range utxoBase58Versions[chain] {
		if version == want {
			return nil
		}
	}
	return fmt.Errorf("%w: %q: version byte %#x not valid for %s", swap.ErrInvalidAddress, address, version, chain)
}
