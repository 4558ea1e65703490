package token

// selector4 is a 4-byte function selector, keccak256(signature)[:4].
type selector4 [4]byte

func sel(hex0, hex1, hex2, hex3 byte) selector4 { return selector4{hex0, hex1, hex2, hex3} }

// Well-known selectors for the standard view/mutator functions the closed
// standard set (spec §4.3) is built from. Values are the canonical 4-byte
// selectors published for each signature.
var (
	selTotalSupply        = sel(0x18, 0x16, 0x0d, 0xdd)
	selBalanceOf          = sel(0x70, 0xa0, 0x82, 0x31)
	selTransfer           = sel(0xa9, 0x05, 0x9c, 0xbb)
	selTransferFrom       = sel(0x23, 0xb8, 0x72, 0xdd)
	selApprove            = sel(0x09, 0x5e, 0xa7, 0xb3)
	selAllowance          = sel(0xdd, 0x62, 0xed, 0x3e)
	selName               = sel(0x06, 0xfd, 0xde, 0x03)
	selSymbol             = sel(0x95, 0xd8, 0x9b, 0x41)
	selDecimals           = sel(0x31, 0x3c, 0xe5, 0x67)
	selOwnerOf            = sel(0x63, 0x52, 0x21, 0x1e)
	selSafeTransferFrom3  = sel(0x42, 0x84, 0x2e, 0x0e)
	selSetApprovalForAll  = sel(0xa2, 0x2c, 0xb4, 0x65)
	selGetApproved        = sel(0x08, 0x18, 0x12, 0xfc)
	selIsApprovedForAll   = sel(0xe9, 0x85, 0xe9, 0xc5)
	selSafeTransferFrom5  = sel(0xf2, 0x42, 0x43, 0x2a)
	selSafeBatchTransfer  = sel(0x2e, 0xb2, 0xc2, 0xd6)
	selBalanceOfBatch1155 = sel(0x00, 0xfd, 0xd5, 0x8e)
	selBalanceOfBatch     = sel(0x4e, 0x12, 0x73, 0xf4)
	selOwner              = sel(0x8d, 0xa5, 0xcb, 0x5b)
	selTransferOwnership  = sel(0xf2, 0xfd, 0xe3, 0x8b)
	selRenounceOwnership  = sel(0x71, 0x50, 0x18, 0xa6)
	selPaused             = sel(0x5c, 0x97, 0x5a, 0xbb)
	selPause              = sel(0x84, 0x56, 0xcb, 0x59)
	selUnpause            = sel(0x3f, 0x4b, 0xa8, 0x3a)
	selPermit             = sel(0xd5, 0x05, 0xac, 0xcf)
	selNonces             = sel(0x7e, 0xce, 0xbe, 0x00)
	selDomainSeparator    = sel(0x36, 0x44, 0xe5, 0x15)
	selAsset              = sel(0x38, 0xd5, 0x2e, 0x0f)
	selTotalAssets        = sel(0x01, 0xe1, 0xd1, 0x14)
	selConvertToShares    = sel(0xc6, 0xe6, 0xf5, 0x92)
	selConvertToAssets    = sel(0x07, 0xa2, 0xd1, 0x3a)
	selDeposit            = sel(0x6e, 0x55, 0x3f, 0x65)
	selMint               = sel(0x94, 0xbf, 0x80, 0x4d)
	selWithdraw            = sel(0xb4, 0x60, 0xaf, 0x94)
	selRedeem             = sel(0xba, 0x08, 0x76, 0x52)
)

// erc20TransferSelector and the three aliases below name the selectors
// behind the tx-classification labels (spec §4.6). The historian package
// declares its own copies of these values and does not read these.
var erc20TransferSelector = selTransfer
var erc20ApproveSelector = selApprove
var erc721TransferFromSelector = selTransferFrom
var erc1155SafeTransferFromSelector = selSafeTransferFrom5

// standardRequirements is the closed signature set each recognized standard
// must fully satisfy to be reported as implemented.
var standardRequirements = map[StandardID][]selector4{
	StandardERC20: {
		selTotalSupply, selBalanceOf, selTransfer, selTransferFrom, selApprove, selAllowance,
	},
	StandardERC721: {
		selBalanceOf, selOwnerOf, selSafeTransferFrom3, selTransferFrom, selApprove,
		selSetApprovalForAll, selGetApproved, selIsApprovedForAll,
	},
	StandardERC1155: {
		selSafeTransferFrom5, selSafeBatchTransfer, selBalanceOfBatch1155, selBalanceOfBatch,
		selSetApprovalForAll, selIsApprovedForAll,
	},
	StandardERC4626: {
		selAsset, selTotalAssets, selConvertToShares, selConvertToAssets, selDeposit, selMint, selWithdraw, selRedeem,
	},
	StandardEIP2612: {
		selPermit, selNonces, selDomainSeparator,
	},
	StandardOwnable: {
		selOwner, selTransferOwnership, selRenounceOwnership,
	},
	StandardPausable: {
		selPaused, selPause, selUnpause,
	},
}
