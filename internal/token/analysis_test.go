package token

import "testing"

import (
	. "github.com/onsi/gomega"
)

const erc20ABI = `[
	{"type":"function","name":"totalSupply","inputs":[],"outputs":[{"type":"uint256"}]},
	{"type":"function","name":"balanceOf","inputs":[{"type":"address"}],"outputs":[{"type":"uint256"}]},
	{"type":"function","name":"transfer","inputs":[{"type":"address"},{"type":"uint256"}],"outputs":[{"type":"bool"}]},
	{"type":"function","name":"transferFrom","inputs":[{"type":"address"},{"type":"address"},{"type":"uint256"}],"outputs":[{"type":"bool"}]},
	{"type":"function","name":"approve","inputs":[{"type":"address"},{"type":"uint256"}],"outputs":[{"type":"bool"}]},
	{"type":"function","name":"allowance","inputs":[{"type":"address"},{"type":"address"}],"outputs":[{"type":"uint256"}]}
]`

func TestStandardRequirementsERC20SelectorsMatchKnownValues(t *testing.T) {
	g := NewWithT(t)
	g.Expect(standardRequirements[StandardERC20]).To(ContainElement(selTransfer))
	g.Expect(selTransfer).To(Equal(sel(0xa9, 0x05, 0x9c, 0xbb)))
}

func TestAllPresentRequiresEverySelector(t *testing.T) {
	g := NewWithT(t)
	present := map[selector4]bool{selTransfer: true, selApprove: true}
	g.Expect(allPresent(present, []selector4{selTransfer, selApprove})).To(BeTrue())
	g.Expect(allPresent(present, []selector4{selTransfer, selBalanceOf})).To(BeFalse())
}

func TestScanSecurityDetectsSelfDestructOpcode(t *testing.T) {
	g := NewWithT(t)
	code := []byte{0x60, 0x00, opSelfDestruct}
	flags := scanSecurity(code)
	g.Expect(flags.SelfDestruct).To(BeTrue())
	g.Expect(flags.ExternalCalls).To(BeFalse())
}

func TestScanSecurityDetectsRawSendStipend(t *testing.T) {
	g := NewWithT(t)
	code := append([]byte{opPush2}, append(stipendConstant, opCall)...)
	flags := scanSecurity(code)
	g.Expect(flags.RawSendTransfer).To(BeTrue())
	g.Expect(flags.ExternalCalls).To(BeTrue())
}
