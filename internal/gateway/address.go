package gateway

import (
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pixelslots/crypto-backend/internal/errs"
)

var (
	tronAddressRegex   = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
	solanaAddressRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	lightningRegex     = regexp.MustCompile(`^ln(bc|tb)[0-9a-z]+$`)
)

// evmNetworks settle against hex account addresses regardless of the chain.
var evmNetworks = map[string]bool{
	"ethereum": true,
	"arbitrum": true,
	"optimism": true,
	"bsc":      true,
	"polygon":  true,
}

// ValidateAddress checks that address is well-formed for the given network.
// It is shape validation only, not proof the address exists on chain.
func ValidateAddress(network, address string) error {
	if address == "" {
		return errs.NewValidation("address must not be empty")
	}

	switch {
	case network == "bitcoin":
		if _, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams); err != nil {
			return errs.NewValidation("invalid bitcoin address %q", address)
		}
	case network == "lightning":
		if !lightningRegex.MatchString(strings.ToLower(address)) {
			return errs.NewValidation("invalid lightning invoice")
		}
	case evmNetworks[network]:
		if !common.IsHexAddress(address) {
			return errs.NewValidation("invalid %s address %q", network, address)
		}
	case network == "tron":
		if !tronAddressRegex.MatchString(address) {
			return errs.NewValidation("invalid tron address %q", address)
		}
	case network == "solana":
		if !solanaAddressRegex.MatchString(address) {
			return errs.NewValidation("invalid solana address %q", address)
		}
	default:
		return errs.NewValidation("unrecognized network %q", network)
	}

	return nil
}
