package clock

import "time"

// Clock abstracts time so services stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns T
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
