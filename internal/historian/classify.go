package historian

import (
	"bytes"
	"fmt"
	"time"

	"iotagateway/internal/chain"
)

// Well-known 4-byte selectors the classifier recognizes (spec §4.6 table).
// Mirrors the teacher's habit of keeping these as small unexported package
// constants close to their one use site.
var (
	selERC20Transfer    = []byte{0xa9, 0x05, 0x9c, 0xbb}
	selERC20Approve     = []byte{0x09, 0x5e, 0xa7, 0xb3}
	selERC721TransferFr = []byte{0x23, 0xb8, 0x72, 0xdd}
	selERC1155SafeTrans = []byte{0xf2, 0x42, 0x43, 0x2a}
)

// ClassifyTx labels a transaction by its selector, exhaustively — every
// transaction receives exactly one label (spec §8 "the tx-classifier is
// exhaustive").
func ClassifyTx(tx *chain.TransactionRecord) Label {
	selector := tx.Selector()

	if tx.IsContractDeployment() {
		if len(tx.Input) > 0 {
			return LabelContractDeploy
		}
		return LabelNativeTransfer
	}

	if len(selector) == 0 {
		return LabelNativeTransfer
	}

	switch {
	case bytes.Equal(selector, selERC20Transfer):
		return LabelERC20Transfer
	case bytes.Equal(selector, selERC20Approve):
		return LabelTokenApproval
	case bytes.Equal(selector, selERC721TransferFr):
		return LabelERC721Transfer
	case bytes.Equal(selector, selERC1155SafeTrans):
		return LabelERC1155Transfer
	default:
		return LabelContractInteract
	}
}

// BucketAge buckets a duration into seconds/minutes/hours/days, the
// coarsest unit that keeps the magnitude readable (spec §4.6 "Age is
// bucketed seconds/minutes/hours/days").
func BucketAge(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%d seconds", secs)
	case secs < 3600:
		return fmt.Sprintf("%d minutes", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%d hours", secs/3600)
	default:
		return fmt.Sprintf("%d days", secs/86400)
	}
}

// ClassifyGasEfficiency buckets a gasUsed/gasLimit ratio (spec §4.6).
func ClassifyGasEfficiency(used, limit uint64) GasEfficiency {
	if limit == 0 {
		return EfficiencyPoor
	}
	ratio := float64(used) / float64(limit)
	switch {
	case ratio < 0.60:
		return EfficiencyExcellent
	case ratio < 0.80:
		return EfficiencyGood
	case ratio < 0.95:
		return EfficiencyFair
	default:
		return EfficiencyPoor
	}
}
