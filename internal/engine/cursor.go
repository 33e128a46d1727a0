package engine

// cursor tracks the position of the next output frame as an input frame
// index plus a phase in 1/l frame units. Output j sits at input time
// j*m/l.
type cursor struct {
	l, m  int
	phase int   // in [0, l)
	base  int64 // absolute input frame index
}

func newCursor(l, m int) cursor {
	return cursor{l: l, m: m}
}

// available counts outputs whose base frame plus ahead frames of lookahead
// lies before end.
func (c *cursor) available(end int64, ahead int) int {
	span := end - int64(ahead) - c.base
	if span <= 0 {
		return 0
	}
	num := span*int64(c.l) - int64(c.phase)
	return int((num + int64(c.m) - 1) / int64(c.m))
}

// at returns the base offset from c.base and the phase of the j-th next
// output.
func (c *cursor) at(j int) (offset int64, phase int) {
	t := int64(c.phase) + int64(j)*int64(c.m)
	return t / int64(c.l), int(t % int64(c.l))
}

// advance moves past n outputs.
func (c *cursor) advance(n int) {
	off, ph := c.at(n)
	c.base += off
	c.phase = ph
}

func (c *cursor) reset() {
	c.phase = 0
	c.base = 0
}
