package models

// Countdown is the handle of a running start countdown owned by one lobby.
// Handles are compared by identity: a tick carrying a handle that is no longer
// the lobby's current one must do nothing.
type Countdown struct {
	Remaining int
	stop      func()
}

func NewCountdown(seconds int) *Countdown {
	return &Countdown{Remaining: seconds}
}

// Bind attaches the function that stops the underlying ticker.
func (c *Countdown) Bind(stop func()) {
	c.stop = stop
}

// Stop halts future ticks. Safe to call more than once.
func (c *Countdown) Stop() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}
