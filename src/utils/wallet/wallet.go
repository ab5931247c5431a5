package wallet

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strconv"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/patrickmn/go-cache"
	"github.com/tyler-smith/go-bip39"
)

var (
	ErrInvalidMnemonic   = errors.New("invalid mnemonic")
	ErrInvalidProtocolID = errors.New("invalid protocol id")
)

// Wallet is an ephemeral secp256k1 key pair derived for one cycle
type Wallet struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

// Deriver derives wallets from one master mnemonic.
// Derivation is deterministic, so derived wallets are cached for the
// lifetime of the Deriver.
type Deriver struct {
	master *hdkeychain.ExtendedKey
	cache  *cache.Cache
}

func NewDeriver(mnemonic string) (self *Deriver, err error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		err = ErrInvalidMnemonic
		return
	}

	seed := bip39.NewSeed(mnemonic, "")
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return
	}

	self = &Deriver{
		master: master,
		cache:  cache.New(cache.NoExpiration, 0),
	}
	return
}

// Airnode returns the wallet at m/44'/60'/0'/0/0, the node's identity
func (self *Deriver) Airnode() (wallet *Wallet, err error) {
	if cached, ok := self.cache.Get("airnode"); ok {
		return cached.(*Wallet), nil
	}

	wallet, err = self.deriveWallet([]uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 60,
		hdkeychain.HardenedKeyStart,
		0,
		0,
	})
	if err != nil {
		return
	}

	self.cache.SetDefault("airnode", wallet)
	return
}

// SponsorWallet returns the wallet at
// m/44'/60'/0'/<protocolId>/<a>/<b>/<c>/<d>/<e>/<f> where a..f are six
// 31-bit groups of the sponsor address. The path has to stay byte-identical
// to the reference derivation, the same sponsor must always map to the
// same wallet.
func (self *Deriver) SponsorWallet(protocolID string, sponsor common.Address) (wallet *Wallet, err error) {
	key := protocolID + "/" + sponsor.Hex()
	if cached, ok := self.cache.Get(key); ok {
		return cached.(*Wallet), nil
	}

	protocol, err := strconv.ParseUint(protocolID, 10, 31)
	if err != nil {
		err = ErrInvalidProtocolID
		return
	}

	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 60,
		hdkeychain.HardenedKeyStart,
		uint32(protocol),
	}
	path = append(path, SponsorPathSegments(sponsor)...)

	wallet, err = self.deriveWallet(path)
	if err != nil {
		return
	}

	self.cache.SetDefault(key, wallet)
	return
}

func (self *Deriver) deriveWallet(path []uint32) (wallet *Wallet, err error) {
	key := self.master
	for _, child := range path {
		key, err = key.Derive(child)
		if err != nil {
			return
		}
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return
	}

	// Rebuilt through go-ethereum so the key carries the curve its signer expects
	ecdsaKey, err := crypto.ToECDSA(privKey.Serialize())
	if err != nil {
		return
	}
	wallet = &Wallet{
		PrivateKey: ecdsaKey,
		Address:    crypto.PubkeyToAddress(ecdsaKey.PublicKey),
	}
	return
}

// SponsorPathSegments splits the 20-byte sponsor address into six unsigned
// 31-bit groups, least significant group first
func SponsorPathSegments(sponsor common.Address) (segments []uint32) {
	mask := big.NewInt((1 << 31) - 1)
	value := new(big.Int).SetBytes(sponsor.Bytes())

	segments = make([]uint32, 6)
	for i := 0; i < 6; i++ {
		group := new(big.Int).And(new(big.Int).Rsh(value, uint(31*i)), mask)
		segments[i] = uint32(group.Uint64())
	}
	return
}

// AirnodeAddressFromXpub derives the 0/0 child of the extended public key
// announced as airnodeXpub. The xpub is expected to sit at m/44'/60'/0'.
func AirnodeAddressFromXpub(xpub string) (address common.Address, err error) {
	key, err := hdkeychain.NewKeyFromString(xpub)
	if err != nil {
		return
	}

	for _, child := range []uint32{0, 0} {
		key, err = key.Derive(child)
		if err != nil {
			return
		}
	}

	pubKey, err := key.ECPubKey()
	if err != nil {
		return
	}

	address = crypto.PubkeyToAddress(*pubKey.ToECDSA())
	return
}
