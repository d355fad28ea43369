package countdown

import (
	"fmt"
	"time"
)

const msPerDay = int64(24 * time.Hour / time.Millisecond)

// DaysUntil returns the millisecond distance from now to target divided by
// one day and rounded up. Past targets yield zero or negative counts.
// Unix milliseconds do not saturate the way time.Duration does past ~292 years.
func DaysUntil(now, target time.Time) int {
	ms := target.UnixMilli() - now.UnixMilli()
	if ms > 0 {
		return int((ms + msPerDay - 1) / msPerDay)
	}
	// Integer division truncates toward zero, which is the ceiling here.
	return int(ms / msPerDay)
}

// dateLayout renders dates as "Fri Mar 15 2024".
const dateLayout = "Mon Jan 02 2006"

func formatDays(days int) string {
	return fmt.Sprintf("It's in %d days.", days)
}

func formatAssumed(date time.Time, days int) string {
	return fmt.Sprintf("Assuming you meant %s, it's in %d days.", date.Format(dateLayout), days)
}
