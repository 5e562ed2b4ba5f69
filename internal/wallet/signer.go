package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs EVM transactions for a signing wallet.
type Signer struct {
	wallet *Wallet
	ks     KeystoreBackend
}

// NewSigner creates a signer for the given wallet.
func NewSigner(w *Wallet, ks KeystoreBackend) *Signer {
	return &Signer{wallet: w, ks: ks}
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return common.HexToAddress(s.wallet.Address)
}

func (s *Signer) key() (*ecdsa.PrivateKey, error) {
	if !s.wallet.CanSign() {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", s.wallet.Name)
	}
	hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return privKey, nil
}

// SignTx signs an EVM transaction for chainID.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	privKey, err := s.key()
	if err != nil {
		return nil, err
	}
	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}
