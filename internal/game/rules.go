package game

// Rules carries the per-session constants. Defaults match the shipped
// game; tests shrink them to keep scenarios short.
type Rules struct {
	Capacity         int // max seated participants
	CountdownSeconds int // matchmaking countdown length
	ClockSeconds     int // game clock length
}

func DefaultRules() Rules {
	return Rules{
		Capacity:         6,
		CountdownSeconds: 30,
		ClockSeconds:     180,
	}
}
