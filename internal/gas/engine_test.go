package gas

import (
	"math/big"
	"testing"

	. "github.com/onsi/gomega"
)

func TestClassifyCongestionBoundaries(t *testing.T) {
	g := NewWithT(t)
	g.Expect(classifyCongestion(30, 100)).To(Equal(CongestionLow))
	g.Expect(classifyCongestion(40, 100)).To(Equal(CongestionLow))
	g.Expect(classifyCongestion(41, 100)).To(Equal(CongestionMedium))
	g.Expect(classifyCongestion(70, 100)).To(Equal(CongestionMedium))
	g.Expect(classifyCongestion(71, 100)).To(Equal(CongestionHigh))
	g.Expect(classifyCongestion(10, 0)).To(Equal(CongestionLow))
}

func TestApplyTierMultipliersMatchFixedRatios(t *testing.T) {
	g := NewWithT(t)
	price := big.NewInt(22_500_000_000)

	g.Expect(applyTier(price, SpeedSlow).String()).To(Equal("18000000000"))
	g.Expect(applyTier(price, SpeedStandard).String()).To(Equal("22500000000"))
	g.Expect(applyTier(price, SpeedFast).String()).To(Equal("27000000000"))
	g.Expect(applyTier(price, SpeedInstant).String()).To(Equal("33750000000"))
}

func TestFormatNativeAtSixDecimals(t *testing.T) {
	g := NewWithT(t)
	// 21000 gas * 27 gwei = 5.67e14 wei; at the sibling family's declared
	// 6 decimals that is 567,000,000 whole tokens exactly.
	total := big.NewInt(21000 * 27 * 1_000_000_000)
	g.Expect(formatNative(total, 6)).To(Equal("567000000.0"))
}

func TestFormatNativeMatchesRawOverDecimalsInvariant(t *testing.T) {
	g := NewWithT(t)
	wei := big.NewInt(1_234_560_000)
	formatted := formatNative(wei, 6)
	g.Expect(formatted).To(Equal("1234.56"))
}

func TestFormatNativeTrimsTrailingZerosButKeepsOneDigit(t *testing.T) {
	g := NewWithT(t)
	g.Expect(formatNative(big.NewInt(1_000_000_000_000_000_000), 18)).To(Equal("1.0"))
	g.Expect(formatNative(big.NewInt(0), 18)).To(Equal("0.0"))
}

func TestEstimateCostRejectsZeroGasLimit(t *testing.T) {
	g := NewWithT(t)
	e := &Engine{}
	_, err := e.EstimateCost(nil, nil, 0, big.NewInt(1), SpeedStandard)
	g.Expect(err).To(HaveOccurred())
}
