package clock

import "time"

// Clock abstracts time so phase resolution and the broadcast job can be
// tested deterministically.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
