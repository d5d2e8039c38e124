package pdp

import "time"

// SetTimeNowForTest overrides the package clock seam for tests that
// live outside the pdp package (and therefore can't reach the
// unexported timeNow directly). It returns a restore func.
func SetTimeNowForTest(f func() time.Time) (restore func()) {
	orig := timeNow
	timeNow = f
	return func() { timeNow = orig }
}
