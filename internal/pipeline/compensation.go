package pipeline

// Reimbursement tiers in the smallest currency unit.
const (
	TierNone = 0
	TierLow  = 3000
	TierMid  = 6000
	TierMax  = 9000
)

// Reimbursement maps elapsed minutes to a compensation tier. A missing
// value resolves to the maximum tier: when we cannot tell how long the
// customer waited, the doubt is settled in their favor. Lower bounds are
// inclusive, so 35, 40 and 50 each land in the higher tier. Negative
// minutes fall through to the zero tier.
func Reimbursement(minutes *float64) int {
	if minutes == nil {
		return TierMax
	}
	m := *minutes
	switch {
	case m >= 50:
		return TierMax
	case m >= 40:
		return TierMid
	case m >= 35:
		return TierLow
	default:
		return TierNone
	}
}
