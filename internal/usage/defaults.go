package usage

import "time"

const usagePeriod = 7 * 24 * time.Hour

func defaultUsage() Usage {
	return Usage{
		Plan:     "Starter",
		Limit:    25,
		Used:     0,
		ResetsAt: time.Now().UTC().Add(usagePeriod),
	}
}
