package decoder

// Context carries the prefixes (lock, rep, segment override) to the instruction that follows them.
// lock xchg [bx], ax -> [11110000] [1000011|w] [mod|reg|r/m]
// A Context serves a single stream of instructions. The zero value is ready to use.
type Context struct {
	pending Flags
	// RegisterNone means no override, ds
	segment RegisterIndex
}

func NewContext() *Context {
	return &Context{segment: RegisterDS}
}

// Pending reports whether a prefix is still waiting for its instruction.
func (c *Context) Pending() bool {
	return c.pending != 0
}

// Segment is the segment register the memory operands of the next instruction use.
func (c *Context) Segment() RegisterIndex {
	if c.segment == RegisterNone {
		return RegisterDS
	}
	return c.segment
}

func (c *Context) Reset() {
	c.pending = 0
	c.segment = RegisterDS
}

// apply attaches the pending prefixes to the instruction.
func (c *Context) apply(inst *Instruction) {
	inst.Flags |= c.pending

	segment := c.Segment()
	for idx, operand := range inst.Operands {
		if ea, ok := operand.(EffectiveAddress); ok {
			ea.Segment = segment
			inst.Operands[idx] = ea
		}
	}
}

// update remembers a prefix, any other instruction consumes the pending state.
func (c *Context) update(inst Instruction) {
	switch inst.Op {
	case OpLock:
		c.pending |= FlagLock
	case OpRep:
		c.pending |= FlagRep | inst.Flags&FlagRepNZ
	case OpSegment:
		sr, ok := inst.Operands[0].(RegisterAccess)
		if !ok {
			panic("AssertionError: the segment override has to name a segment register")
		}
		c.pending |= FlagSegment
		c.segment = sr.Index
	default:
		c.Reset()
	}
}
