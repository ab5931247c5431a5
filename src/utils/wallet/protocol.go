package wallet

// Protocol ids select the branch of the derivation tree a sponsor wallet
// lives on. Each has to match the on-chain expectation for its mode,
// so they are deliberately not unified.
const (
	// Request-Response Protocol (Airnode)
	ProtocolIDRrp = "1"

	// Publish-Subscribe Protocol
	ProtocolIDPsp = "2"

	// Previous PSP convention, kept for wallets funded under it
	ProtocolIDPspLegacy = "3"

	// Keeper sponsor convention used by RRP beacon keeper jobs
	ProtocolIDRrpKeeper = "12345"
)
