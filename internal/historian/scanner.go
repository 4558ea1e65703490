package historian

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"iotagateway/internal/chain"
	"iotagateway/internal/logger"
)

const (
	// maxScanBlocks bounds the backward scan (spec §4.6).
	maxScanBlocks = 50

	// scanBatchSize is the concurrency cap for the block and receipt
	// fetches (spec §5).
	scanBatchSize = 5

	// maxTxPerBlock truncates oversampled blocks — a scanner lower bound,
	// not a true history (spec §4.6).
	maxTxPerBlock = 10
)

// Scanner performs the bounded backward block scan.
type Scanner struct {
	registry *chain.Registry
	log      logger.Logger
}

// NewScanner builds a Scanner.
func NewScanner(registry *chain.Registry, log logger.Logger) *Scanner {
	return &Scanner{registry: registry, log: log}
}

// window is the result of one bounded scan: the classified transactions it
// found, plus the block range actually covered.
type window struct {
	txs       []*ClassifiedTx
	fromBlock uint64
	toBlock   uint64
	latest    uint64
}

// scan resolves net's client from the registry and delegates to scanClient.
func (s *Scanner) scan(ctx context.Context, net *chain.NetworkDescriptor) (*window, error) {
	client, err := s.registry.Client(ctx, net)
	if err != nil {
		return nil, err
	}
	return scanClient(ctx, client)
}

// scanClient fetches up to maxScanBlocks most recent blocks in batches of
// scanBatchSize, with full transactions when the RPC supports it, truncating
// each block to its first maxTxPerBlock transactions, then fills in gas-used
// and efficiency per transaction from its receipt (also batched). Taking the
// client directly, rather than a registry lookup, keeps it testable without
// a live dial.
func scanClient(ctx context.Context, client chain.Client) (*window, error) {
	latest, err := client.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	numbers := make([]uint64, 0, maxScanBlocks)
	for i := 0; i < maxScanBlocks && int64(latest)-int64(i) >= 0; i++ {
		numbers = append(numbers, latest-uint64(i))
	}
	if len(numbers) == 0 {
		return &window{latest: latest}, nil
	}

	samples := make([]*chain.BlockSample, len(numbers))
	for start := 0; start < len(numbers); start += scanBatchSize {
		end := start + scanBatchSize
		if end > len(numbers) {
			end = len(numbers)
		}
		batch := numbers[start:end]

		eg, egctx := errgroup.WithContext(ctx)
		batchOut := make([]*chain.BlockSample, len(batch))
		for i, n := range batch {
			i, n := i, n
			eg.Go(func() error {
				b, err := client.BlockByNumber(egctx, n, true)
				if err != nil {
					return nil // tolerated: batch contributes what it obtained
				}
				batchOut[i] = b
				return nil
			})
		}
		_ = eg.Wait()
		for i, b := range batchOut {
			samples[start+i] = b
		}
	}

	w := &window{latest: latest}
	minBlock, maxBlock := uint64(0), uint64(0)
	first := true
	classified := make([]*ClassifiedTx, 0)

	for _, b := range samples {
		if b == nil {
			continue
		}
		if first || b.Number < minBlock {
			minBlock = b.Number
		}
		if first || b.Number > maxBlock {
			maxBlock = b.Number
		}
		first = false

		txs := b.Txs
		if len(txs) > maxTxPerBlock {
			txs = txs[:maxTxPerBlock]
		}
		for _, ref := range txs {
			if ref.Tx == nil {
				continue
			}
			classified = append(classified, toClassified(ref.Tx, latest, time.Unix(int64(b.Timestamp), 0)))
		}
	}

	fillReceipts(ctx, client, classified)

	w.txs = classified
	w.fromBlock = minBlock
	w.toBlock = maxBlock
	return w, nil
}

// fillReceipts fetches each classified transaction's receipt, batched, to
// derive its actual gas-used and efficiency bucket. A receipt fetch failure
// leaves the transaction's gas fields at their zero value rather than
// aborting the whole scan.
func fillReceipts(ctx context.Context, client chain.Client, txs []*ClassifiedTx) {
	for start := 0; start < len(txs); start += scanBatchSize {
		end := start + scanBatchSize
		if end > len(txs) {
			end = len(txs)
		}
		batch := txs[start:end]

		eg, egctx := errgroup.WithContext(ctx)
		for _, tx := range batch {
			tx := tx
			eg.Go(func() error {
				receipt, err := client.GetReceipt(egctx, tx.Hash)
				if err != nil || receipt == nil {
					return nil
				}
				tx.GasUsed = receipt.GasUsed
				tx.Efficiency = ClassifyGasEfficiency(tx.GasUsed, tx.GasLimit)
				return nil
			})
		}
		_ = eg.Wait()
	}
}

// nowFunc is indirected for deterministic age-bucket testing.
var nowFunc = time.Now

func toClassified(tx *chain.TransactionRecord, latestBlock uint64, blockTime time.Time) *ClassifiedTx {
	confirmations := uint64(0)
	if latestBlock >= tx.BlockNumber {
		confirmations = latestBlock - tx.BlockNumber
	}
	return &ClassifiedTx{
		Hash:          tx.Hash,
		From:          tx.From,
		To:            tx.To,
		Value:         tx.Value,
		BlockNumber:   tx.BlockNumber,
		BlockTime:     blockTime,
		Label:         ClassifyTx(tx),
		GasLimit:      tx.Gas,
		Confirmations: confirmations,
		Age:           BucketAge(nowFunc().Sub(blockTime)),
	}
}

// Recent returns the classified transaction history within the scan window,
// newest first.
func (s *Scanner) Recent(ctx context.Context, net *chain.NetworkDescriptor) ([]*ClassifiedTx, error) {
	w, err := s.scan(ctx, net)
	if err != nil {
		return nil, err
	}
	return w.txs, nil
}

// AddressMetrics aggregates sent/received counts and totals for addr over
// the scanned window. Because this is a scanner lower bound, the returned
// record always carries the sampled-window metadata (spec §4.6).
func (s *Scanner) AddressMetrics(ctx context.Context, net *chain.NetworkDescriptor, addr common.Address) (*AddressMetrics, error) {
	w, err := s.scan(ctx, net)
	if err != nil {
		return nil, err
	}
	return aggregateAddressMetrics(w, addr), nil
}

func aggregateAddressMetrics(w *window, addr common.Address) *AddressMetrics {
	m := &AddressMetrics{
		Address:          addr,
		TotalSent:        new(big.Int),
		TotalReceived:    new(big.Int),
		ScannedFromBlock: w.fromBlock,
		ScannedToBlock:   w.toBlock,
		ScanCap:          maxScanBlocks,
	}

	for _, tx := range w.txs {
		matchSent := tx.From == addr
		matchReceived := tx.To != nil && *tx.To == addr
		if !matchSent && !matchReceived {
			continue
		}
		m.TxCount++
		if matchSent {
			m.Sent++
			if tx.Value != nil {
				m.TotalSent.Add(m.TotalSent, tx.Value)
			}
		}
		if matchReceived {
			m.Received++
			if tx.Value != nil {
				m.TotalReceived.Add(m.TotalReceived, tx.Value)
			}
		}
		blockTime := tx.BlockTime
		if m.FirstSeen == nil || blockTime.Before(*m.FirstSeen) {
			t := blockTime
			m.FirstSeen = &t
		}
		if m.LastSeen == nil || blockTime.After(*m.LastSeen) {
			t := blockTime
			m.LastSeen = &t
		}
	}

	if m.FirstSeen != nil && m.LastSeen != nil {
		age := m.LastSeen.Sub(*m.FirstSeen)
		m.AccountAge = &age
	}

	return m
}
