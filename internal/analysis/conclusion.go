package analysis

import (
	"fmt"

	"promolift/domain/promo"
	"promolift/domain/stats"
	"promolift/internal/errors"
)

// Conclude turns the test and effect size into a recommendation. A group is
// preferred only when the test is significant; the lift is relative to
// group B, the same direction as segment percent differences.
func Conclude(groupA, groupB promo.GroupLabel, test stats.TestResult, effect stats.EffectSize) stats.Conclusion {
	c := stats.Conclusion{
		Significant: test.Undefined == nil && test.Significant,
		Difference:  effect.Difference,
	}

	if effect.MeanB == 0 {
		c.LiftPercent = stats.NotComputed(errors.CodeDegenerateInput, "group B mean is zero")
	} else {
		c.LiftPercent = stats.Defined((effect.MeanA/effect.MeanB - 1) * 100)
	}

	switch {
	case test.Undefined != nil:
		c.Recommendation = "No recommendation: " + test.Undefined.Reason + "."
	case !c.Significant:
		c.Recommendation = fmt.Sprintf(
			"No significant difference between promotion %s and promotion %s (p = %.4g); neither is preferred.",
			groupA, groupB, test.PValue)
	default:
		c.Preferred = groupA
		loser := groupB
		if effect.Difference < 0 {
			c.Preferred, loser = groupB, groupA
		}
		magnitude := "an undetermined"
		if effect.Undefined == nil {
			magnitude = fmt.Sprintf("a %s (d = %.2f)", effect.Magnitude, effect.D)
		}
		c.Recommendation = fmt.Sprintf(
			"Promotion %s should be preferred over promotion %s: the difference is significant (p = %.4g) with %s effect.",
			c.Preferred, loser, test.PValue, magnitude)
	}
	return c
}
