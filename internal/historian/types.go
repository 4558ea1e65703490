// Package historian implements the address & tx historian (C6): a bounded
// backward block-window scan used to reconstruct per-address transfer
// history and per-transaction semantic labels, since there is no indexer
// (spec §4.6, and "scanner lower bound" in the glossary).
package historian

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Label is a transaction's semantic classification.
type Label string

const (
	LabelNativeTransfer    Label = "Native Token Transfer"
	LabelERC20Transfer     Label = "ERC20 Transfer"
	LabelTokenApproval     Label = "Token Approval"
	LabelERC721Transfer    Label = "ERC721 Transfer"
	LabelERC1155Transfer   Label = "ERC1155 Transfer"
	LabelContractDeploy    Label = "Contract Deployment"
	LabelContractInteract  Label = "Contract Interaction"
)

// GasEfficiency buckets a transaction's gas-used/gas-limit ratio.
type GasEfficiency string

const (
	EfficiencyExcellent GasEfficiency = "Excellent"
	EfficiencyGood      GasEfficiency = "Good"
	EfficiencyFair      GasEfficiency = "Fair"
	EfficiencyPoor      GasEfficiency = "Poor"
)

// ClassifiedTx is one scanned transaction with its derived semantics.
type ClassifiedTx struct {
	Hash          common.Hash
	From          common.Address
	To            *common.Address
	Value         *big.Int
	BlockNumber   uint64
	BlockTime     time.Time
	Label         Label
	GasUsed       uint64
	GasLimit      uint64
	Efficiency    GasEfficiency
	Confirmations uint64
	Age           string
}

// AddressMetrics is the aggregate view of an address over the scanned
// window — always a lower bound on the lifetime figure (spec §3, §4.6).
type AddressMetrics struct {
	Address       common.Address
	TxCount       int
	Sent          int
	Received      int
	TotalSent     *big.Int
	TotalReceived *big.Int
	FirstSeen     *time.Time
	LastSeen      *time.Time
	AccountAge    *time.Duration

	// Window metadata so callers cannot mistake this for an authoritative
	// lifetime figure (spec §4.6).
	ScannedFromBlock uint64
	ScannedToBlock   uint64
	ScanCap          int
}
