package tasks_test

import "time"

func timeZero() time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}
