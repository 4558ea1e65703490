package arbitrage

// Well-known 4-byte selectors for a canonical constant-product pair
// contract (Uniswap V2-style): getReserves(), token0(), token1().
var (
	selGetReserves = []byte{0x09, 0x02, 0xf1, 0xac}
	selToken0      = []byte{0x0d, 0xfe, 0x16, 0x81}
	selToken1      = []byte{0xd2, 0x12, 0x20, 0xa7}
)
