package chain

import (
	"testing"

	. "github.com/onsi/gomega"

	"iotagateway/internal/apperrors"
	"iotagateway/internal/config"
	"iotagateway/internal/logger"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := &config.Config{Siblings: map[string]config.SiblingOverride{}}
	return New(cfg, logger.New("test", "critical"))
}

func TestResolveByNameIsCaseInsensitive(t *testing.T) {
	g := NewWithT(t)
	r := testRegistry(t)

	d, err := r.Resolve("S1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(d.ShortName).To(Equal("s1"))
}

func TestResolveByChainID(t *testing.T) {
	g := NewWithT(t)
	r := testRegistry(t)

	d, err := r.Resolve("8822")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(d.ShortName).To(Equal("s1"))
}

func TestResolveUnknownNetworkIsValidationError(t *testing.T) {
	g := NewWithT(t)
	r := testRegistry(t)

	_, err := r.Resolve("nowhere")
	g.Expect(err).To(HaveOccurred())
	var verr *apperrors.ValidationError
	g.Expect(err).To(BeAssignableToTypeOf(verr))
}

func TestSiblingClassificationIsTotalOverClosedSet(t *testing.T) {
	g := NewWithT(t)
	r := testRegistry(t)

	for _, name := range []string{"s1", "s2", "s3"} {
		g.Expect(r.IsSibling(name)).To(BeTrue(), name)
	}
	for _, name := range []string{"ethlike", "poly", "arb"} {
		g.Expect(r.IsSibling(name)).To(BeFalse(), name)
	}
	g.Expect(r.IsSibling("nowhere")).To(BeFalse())
}

func TestSiblingNativeTokenDecimalsAreSix(t *testing.T) {
	g := NewWithT(t)
	r := testRegistry(t)

	for _, name := range []string{"s1", "s2", "s3"} {
		d, err := r.Resolve(name)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(d.NativeToken.Decimals).To(Equal(uint8(6)))
	}
}

func TestResolveOrDefaultFallsBackToPrimarySibling(t *testing.T) {
	g := NewWithT(t)
	r := testRegistry(t)

	d, err := r.ResolveOrDefault("")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(d.ShortName).To(Equal("s1"))
}

func TestListReturnsAllRegisteredNetworks(t *testing.T) {
	g := NewWithT(t)
	r := testRegistry(t)

	g.Expect(r.List()).To(HaveLen(6))
}

func TestDescriptorRoundTripsThroughFieldEquality(t *testing.T) {
	g := NewWithT(t)
	r := testRegistry(t)

	d, err := r.Resolve("s1")
	g.Expect(err).NotTo(HaveOccurred())

	cp := *d
	g.Expect(cp).To(Equal(*d))
}
