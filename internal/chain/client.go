package chain

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"iotagateway/internal/apperrors"
	"iotagateway/internal/config"
)

// Client is the read surface a chain exposes to the rest of the gateway
// (spec §4.2). All operations are read-only; a single write operation
// (raw transaction submission) is isolated into a signer package outside
// this specification's scope.
type Client interface {
	BlockNumber(ctx context.Context) (uint64, error)
	LatestBlock(ctx context.Context, fullTxs bool) (*BlockSample, error)
	BlockByNumber(ctx context.Context, number uint64, fullTxs bool) (*BlockSample, error)
	GetTx(ctx context.Context, hash common.Hash) (*TransactionRecord, error)
	GetReceipt(ctx context.Context, hash common.Hash) (*Receipt, error)
	GetBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	GetBytecode(ctx context.Context, addr common.Address) ([]byte, error)
	GetGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call Call) (uint64, error)
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// rpcClient implements Client over a go-ethereum JSON-RPC connection. It
// never retries: transient errors surface untransformed as UpstreamError,
// and the caller (or the transport layer, per spec §5) decides whether to
// retry.
type rpcClient struct {
	raw *gethrpc.Client
}

// Dial opens a JSON-RPC connection. When TLS options are configured it dials
// through DialOptions, but no certificate, key or CA file is loaded or passed
// to the connection: it uses the default transport settings either way.
func Dial(ctx context.Context, url string, tls config.TLSOptions) (Client, error) {
	var raw *gethrpc.Client
	var err error
	if tls.Enabled() {
		raw, err = gethrpc.DialOptions(ctx, url)
	} else {
		raw, err = gethrpc.DialContext(ctx, url)
	}
	if err != nil {
		return nil, apperrors.NewUpstream("dial", err)
	}
	return &rpcClient{raw: raw}, nil
}

func (c *rpcClient) BlockNumber(ctx context.Context) (uint64, error) {
	var result hexutil.Uint64
	if err := c.raw.CallContext(ctx, &result, "eth_blockNumber"); err != nil {
		return 0, apperrors.NewUpstream("eth_blockNumber", err)
	}
	return uint64(result), nil
}

func (c *rpcClient) LatestBlock(ctx context.Context, fullTxs bool) (*BlockSample, error) {
	return c.blockByTag(ctx, "latest", fullTxs)
}

func (c *rpcClient) BlockByNumber(ctx context.Context, number uint64, fullTxs bool) (*BlockSample, error) {
	return c.blockByTag(ctx, hexutil.EncodeUint64(number), fullTxs)
}

// rawBlock mirrors the subset of eth_getBlockByNumber's JSON shape the
// gateway actually consumes.
type rawBlock struct {
	Number        hexutil.Uint64    `json:"number"`
	Timestamp     hexutil.Uint64    `json:"timestamp"`
	GasUsed       hexutil.Uint64    `json:"gasUsed"`
	GasLimit      hexutil.Uint64    `json:"gasLimit"`
	BaseFeePerGas *hexutil.Big      `json:"baseFeePerGas"`
	Transactions  []rawTxOrHash     `json:"transactions"`
}

// rawTxOrHash decodes either a bare hash string or an inlined transaction
// object, depending on whether the block was fetched with fullTxs.
type rawTxOrHash struct {
	hash *common.Hash
	tx   *rawTx
}

// UnmarshalJSON accepts either a bare hash string ("0x...") or an inlined
// transaction object, matching eth_getBlockByNumber's fullTxs-dependent shape.
func (r *rawTxOrHash) UnmarshalJSON(data []byte) error {
	var asHash common.Hash
	if err := json.Unmarshal(data, &asHash); err == nil {
		r.hash = &asHash
		return nil
	}
	var t rawTx
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	r.tx = &t
	return nil
}

func (c *rpcClient) blockByTag(ctx context.Context, tag string, fullTxs bool) (*BlockSample, error) {
	var rb rawBlock
	if err := c.raw.CallContext(ctx, &rb, "eth_getBlockByNumber", tag, fullTxs); err != nil {
		return nil, apperrors.NewUpstream("eth_getBlockByNumber", err)
	}
	if rb.Number == 0 && rb.Timestamp == 0 && len(rb.Transactions) == 0 {
		return nil, apperrors.NewNotFound("block", tag)
	}

	sample := &BlockSample{
		Number:    uint64(rb.Number),
		Timestamp: uint64(rb.Timestamp),
		GasUsed:   uint64(rb.GasUsed),
		GasLimit:  uint64(rb.GasLimit),
		TxCount:   len(rb.Transactions),
	}
	if rb.BaseFeePerGas != nil {
		sample.BaseFeePerGas = rb.BaseFeePerGas.ToInt()
	}
	if fullTxs {
		sample.Txs = make([]TxRef, 0, len(rb.Transactions))
		for _, t := range rb.Transactions {
			if t.tx == nil {
				continue
			}
			sample.Txs = append(sample.Txs, TxRef{Tx: t.tx.toRecord(sample.Number, sample.Timestamp)})
		}
	}
	return sample, nil
}

type rawTx struct {
	Hash     common.Hash     `json:"hash"`
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to"`
	Value    *hexutil.Big    `json:"value"`
	Gas      hexutil.Uint64  `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Input    hexutil.Bytes   `json:"input"`
	Nonce    hexutil.Uint64  `json:"nonce"`
}

func (t *rawTx) toRecord(blockNumber, blockTimestamp uint64) *TransactionRecord {
	value := big.NewInt(0)
	if t.Value != nil {
		value = t.Value.ToInt()
	}
	gasPrice := big.NewInt(0)
	if t.GasPrice != nil {
		gasPrice = t.GasPrice.ToInt()
	}
	ts := blockTimestamp
	return &TransactionRecord{
		Hash:             t.Hash,
		From:             t.From,
		To:               t.To,
		Value:            value,
		Gas:              uint64(t.Gas),
		GasPriceOrFeeCap: gasPrice,
		Input:            t.Input,
		Nonce:            uint64(t.Nonce),
		BlockNumber:      blockNumber,
		BlockTimestamp:   &ts,
	}
}

func (c *rpcClient) GetTx(ctx context.Context, hash common.Hash) (*TransactionRecord, error) {
	var raw struct {
		rawTx
		BlockNumber hexutil.Uint64 `json:"blockNumber"`
	}
	if err := c.raw.CallContext(ctx, &raw, "eth_getTransactionByHash", hash); err != nil {
		return nil, apperrors.NewUpstream("eth_getTransactionByHash", err)
	}
	if raw.Hash == (common.Hash{}) {
		return nil, apperrors.NewNotFound("transaction", hash.Hex())
	}
	return raw.toRecord(uint64(raw.BlockNumber), 0), nil
}

func (c *rpcClient) GetReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var raw struct {
		GasUsed         hexutil.Uint64  `json:"gasUsed"`
		BlockNumber     hexutil.Uint64  `json:"blockNumber"`
		Status          *hexutil.Uint64 `json:"status"`
		ContractAddress *common.Address `json:"contractAddress"`
		Logs            []struct {
			Address common.Address `json:"address"`
			Topics  []common.Hash  `json:"topics"`
			Data    hexutil.Bytes  `json:"data"`
		} `json:"logs"`
	}
	if err := c.raw.CallContext(ctx, &raw, "eth_getTransactionReceipt", hash); err != nil {
		return nil, apperrors.NewUpstream("eth_getTransactionReceipt", err)
	}
	if raw.BlockNumber == 0 && raw.GasUsed == 0 {
		return nil, apperrors.NewNotFound("receipt", hash.Hex())
	}

	status := StatusSuccess
	if raw.Status != nil && *raw.Status == 0 {
		status = StatusReverted
	}

	logs := make([]Log, 0, len(raw.Logs))
	for _, l := range raw.Logs {
		logs = append(logs, Log{Address: l.Address, Topics: l.Topics, Data: l.Data})
	}

	return &Receipt{
		GasUsed:         uint64(raw.GasUsed),
		BlockNumber:     uint64(raw.BlockNumber),
		Status:          status,
		Logs:            logs,
		ContractAddress: raw.ContractAddress,
	}, nil
}

func (c *rpcClient) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	var result hexutil.Big
	if err := c.raw.CallContext(ctx, &result, "eth_getBalance", addr, "latest"); err != nil {
		return nil, apperrors.NewUpstream("eth_getBalance", err)
	}
	return result.ToInt(), nil
}

func (c *rpcClient) GetBytecode(ctx context.Context, addr common.Address) ([]byte, error) {
	var result hexutil.Bytes
	if err := c.raw.CallContext(ctx, &result, "eth_getCode", addr, "latest"); err != nil {
		return nil, apperrors.NewUpstream("eth_getCode", err)
	}
	return result, nil
}

func (c *rpcClient) GetGasPrice(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := c.raw.CallContext(ctx, &result, "eth_gasPrice"); err != nil {
		return nil, apperrors.NewUpstream("eth_gasPrice", err)
	}
	return result.ToInt(), nil
}

func callArg(call Call) map[string]interface{} {
	arg := map[string]interface{}{}
	if call.From != nil {
		arg["from"] = call.From
	}
	if call.To != nil {
		arg["to"] = call.To
	}
	if call.Value != nil {
		arg["value"] = (*hexutil.Big)(call.Value)
	}
	if len(call.Data) > 0 {
		arg["data"] = hexutil.Bytes(call.Data)
	}
	return arg
}

func (c *rpcClient) EstimateGas(ctx context.Context, call Call) (uint64, error) {
	var result hexutil.Uint64
	if err := c.raw.CallContext(ctx, &result, "eth_estimateGas", callArg(call)); err != nil {
		return 0, apperrors.NewUpstream("eth_estimateGas", err)
	}
	return uint64(result), nil
}

func (c *rpcClient) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	var result hexutil.Bytes
	call := Call{To: &to, Data: data}
	if err := c.raw.CallContext(ctx, &result, "eth_call", callArg(call), "latest"); err != nil {
		return nil, apperrors.NewUpstream("eth_call", err)
	}
	return result, nil
}
