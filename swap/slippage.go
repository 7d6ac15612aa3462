package swap

import "math/big"

var bps10000 = big.NewInt(10000)

// ApplyBps deducts bps basis points from value with floor division:
// value * (10000 - bps) / 10000. bps above 10000 yields zero.
func ApplyBps(value *big.Int, bps uint32) *big.Int {
	if bps >= 10000 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(value, big.NewInt(int64(10000-bps)))
	return out.Quo(out, bps10000)
}

// MinimumOutput computes the minimum acceptable output for an expected
// output under the given slippage tolerance. The expected value must already
// be fee-adjusted: referral fees are deducted before slippage is applied.
func MinimumOutput(output *big.Int, slippageBps uint32) *big.Int {
	return ApplyBps(output, slippageBps)
}

// DeductFee removes a referral fee from an amount. A nil fee or zero bps is
// the identity.
func DeductFee(value *big.Int, fee *ReferralFee) *big.Int {
	if fee == nil || fee.Bps == 0 {
		return new(big.Int).Set(value)
	}
	return ApplyBps(value, fee.Bps)
}
