package dispatch

// registerTools registers the closed tool set (spec §4.8, §6.3), verbatim by
// name, schema, and description.
func (d *Dispatcher) registerTools(tools ToolServer) {
	tools.RegisterTool("get_iota_network_info",
		"Registry entry, latest block number and native token snapshot for a network.",
		Schema{Optional: []Field{{Name: "network", Type: FieldString}}},
		wrap(Schema{}, d.handleNetworkInfo))

	tools.RegisterTool("get_iota_balance",
		"Native-token balance of an address, raw and formatted.",
		Schema{Required: []Field{{Name: "address", Type: FieldString}}, Optional: []Field{{Name: "network", Type: FieldString}}},
		wrap(Schema{Required: []Field{{Name: "address", Type: FieldString}}}, d.handleBalance))

	tools.RegisterTool("transfer_iota",
		"Submit a native-token transfer. Delegated to the signer module; not implemented by this gateway.",
		Schema{Optional: []Field{{Name: "network", Type: FieldString}}},
		wrap(Schema{}, d.handleTransferDelegated))

	tools.RegisterTool("get_iota_staking_info",
		"Staking inventory snapshot for a network (placeholder provider).",
		Schema{Optional: []Field{{Name: "network", Type: FieldString}}},
		wrap(Schema{}, d.handleStaking))

	tools.RegisterTool("verify_iota_network_status",
		"Liveness check: latest block, its age, and an estimated finality depth.",
		Schema{Optional: []Field{{Name: "network", Type: FieldString}}},
		wrap(Schema{}, d.handleVerifyStatus))

	tools.RegisterTool("get_iota_gas_prices",
		"Four-tier gas quote plus a congestion-derived recommendation.",
		Schema{Optional: []Field{{Name: "network", Type: FieldString}}},
		wrap(Schema{}, d.handleGasPrices))

	tools.RegisterTool("estimate_iota_transaction_cost",
		"Total transaction cost for a gas limit at an explicit or tiered gas price.",
		Schema{
			Required: []Field{{Name: "gasLimit", Type: FieldString}},
			Optional: []Field{{Name: "gasPrice", Type: FieldString}, {Name: "speed", Type: FieldString}, {Name: "network", Type: FieldString}},
		},
		wrap(Schema{Required: []Field{{Name: "gasLimit", Type: FieldString}}}, d.handleEstimateCost))

	tools.RegisterTool("deploy_iota_smart_contract",
		"Deploy a contract. Delegated to the signer module; not implemented by this gateway.",
		Schema{Optional: []Field{{Name: "network", Type: FieldString}}},
		wrap(Schema{}, d.handleDeployDelegated))

	tools.RegisterTool("analyze_iota_smart_contract",
		"Match the declared ABI against the closed standard set and scan the bytecode for security-relevant opcodes.",
		Schema{
			Required: []Field{{Name: "contractAddress", Type: FieldString}, {Name: "abi", Type: FieldJSONArray}},
			Optional: []Field{{Name: "network", Type: FieldString}},
		},
		wrap(Schema{Required: []Field{{Name: "contractAddress", Type: FieldString}, {Name: "abi", Type: FieldJSONArray}}}, d.handleAnalyzeContract))

	tools.RegisterTool("get_cross_chain_token_price",
		"Constant-product pool quote for a symbol on one network.",
		Schema{Required: []Field{{Name: "token", Type: FieldString}, {Name: "network", Type: FieldString}}},
		wrap(Schema{Required: []Field{{Name: "token", Type: FieldString}, {Name: "network", Type: FieldString}}}, d.handleCrossChainPrice))

	tools.RegisterTool("find_arbitrage_opportunities",
		"Directed profitable routes for a symbol across networks, sorted by profit.",
		Schema{
			Required: []Field{{Name: "token", Type: FieldString}},
			Optional: []Field{{Name: "networks", Type: FieldStringArray}, {Name: "minProfitPercent", Type: FieldNumber}},
		},
		wrap(Schema{Required: []Field{{Name: "token", Type: FieldString}}}, d.handleFindArbitrage))

	tools.RegisterTool("list_arbitrage_tokens",
		"Pool-registry summary: which symbols are quotable, and on how many networks.",
		Schema{},
		wrap(Schema{}, d.handleListArbitrageTokens))
}
