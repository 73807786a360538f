package narrator

// Pool is a list of interchangeable lines. A drawn line moves to the back
// and draws only pick from the front, so the last two lines spoken from a
// pool are never repeated immediately.
type Pool struct {
	lines []string
}

func NewPool(lines []string) *Pool {
	return &Pool{lines: append([]string(nil), lines...)}
}

func (p *Pool) Len() int { return len(p.lines) }

// Draw picks a line using r, a value in [0, 1). Pools of two or fewer lines
// always give the head.
func (p *Pool) Draw(r func() float64) string {
	n := len(p.lines)
	if n == 0 {
		return ""
	}
	i := 0
	if n > 2 {
		i = int(r() * float64(n-2))
		i = min(max(i, 0), n-3)
	}
	line := p.lines[i]
	copy(p.lines[i:], p.lines[i+1:])
	p.lines[n-1] = line
	return line
}
