package helpers

import (
	"time"

	"golang.org/x/time/rate"
)

// OnceAMinute throttles operator warnings that would otherwise repeat on every request.
var OnceAMinute = onceAMinute()

func onceAMinute() *rate.Sometimes {
	return &rate.Sometimes{
		Interval: time.Minute,
	}
}
