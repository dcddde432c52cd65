package promo

import "math"

// AgeBucket is a store-age interval label
type AgeBucket string

const (
	Age0To5   AgeBucket = "0-5 years"
	Age6To10  AgeBucket = "6-10 years"
	Age11To15 AgeBucket = "11-15 years"
	Age16Plus AgeBucket = "16+ years"
)

// AgeBuckets lists every bucket in interval order
var AgeBuckets = []AgeBucket{Age0To5, Age6To10, Age11To15, Age16Plus}

// BucketForAge maps a store age onto [0,5], (5,10], (10,15], (15,inf).
// Negative and NaN ages have no bucket.
func BucketForAge(age float64) (AgeBucket, bool) {
	switch {
	case math.IsNaN(age) || age < 0:
		return "", false
	case age <= 5:
		return Age0To5, true
	case age <= 10:
		return Age6To10, true
	case age <= 15:
		return Age11To15, true
	default:
		return Age16Plus, true
	}
}

func ageBucketRank(b AgeBucket) int {
	for i, bucket := range AgeBuckets {
		if bucket == b {
			return i
		}
	}
	return len(AgeBuckets)
}
