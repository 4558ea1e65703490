// Package chain implements the network registry (C1) and the RPC client
// facade (C2) of the gateway: resolving network names/chain ids to a
// client, a native-token descriptor, and policy flags, and abstracting a
// chain's read surface behind a single interface.
package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SiblingVariant classifies a network's relationship to the sibling family.
type SiblingVariant string

const (
	VariantNone       SiblingVariant = "none"
	VariantMainnet    SiblingVariant = "mainnet"
	VariantTestnet    SiblingVariant = "testnet"
	VariantAltMainnet SiblingVariant = "alt-mainnet"
)

// NativeToken describes a network's native coin.
type NativeToken struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// NetworkDescriptor is an immutable, process-lifetime record of one network.
type NetworkDescriptor struct {
	ShortName       string
	ChainID         int64
	DisplayName     string
	NativeToken     NativeToken
	DefaultRPCURL   string
	ExplorerURL     string
	IsSiblingFamily bool
	SiblingVariant  SiblingVariant
}

// TxRef is either a bare hash (shallow block) or an inlined transaction
// (full-transaction block fetch).
type TxRef struct {
	Hash *common.Hash
	Tx   *TransactionRecord
}

// BlockSample is the ephemeral per-block record used by analytics,
// the historian, and the gas engine.
type BlockSample struct {
	Number         uint64
	Timestamp      uint64
	GasUsed        uint64
	GasLimit       uint64
	BaseFeePerGas  *big.Int // nil if the network predates EIP-1559
	TxCount        int
	Txs            []TxRef
}

// TransactionRecord is the ephemeral per-transaction record.
type TransactionRecord struct {
	Hash             common.Hash
	From             common.Address
	To               *common.Address // nil => contract deployment
	Value            *big.Int
	Gas              uint64
	GasPriceOrFeeCap *big.Int
	Input            []byte
	Nonce            uint64
	BlockNumber      uint64
	BlockTimestamp   *uint64
	Status           *uint64
}

// IsContractDeployment reports whether this transaction deploys a contract.
func (t *TransactionRecord) IsContractDeployment() bool { return t.To == nil }

// Selector returns the 4-byte function selector of the call data, or nil
// if the input is shorter than four bytes (including empty input, a plain
// value transfer).
func (t *TransactionRecord) Selector() []byte {
	if len(t.Input) < 4 {
		return nil
	}
	return t.Input[:4]
}

// ReceiptStatus enumerates a transaction's settlement outcome.
type ReceiptStatus string

const (
	StatusSuccess  ReceiptStatus = "success"
	StatusReverted ReceiptStatus = "reverted"
)

// Log is a minimal event-log record, enough for classification purposes.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Receipt is the ephemeral per-transaction settlement record.
type Receipt struct {
	GasUsed         uint64
	BlockNumber     uint64
	Status          ReceiptStatus
	Logs            []Log
	ContractAddress *common.Address
}

// Call describes an eth_call / eth_estimateGas invocation.
type Call struct {
	From  *common.Address
	To    *common.Address
	Value *big.Int
	Data  []byte
}
