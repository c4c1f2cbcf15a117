package decoder

var processorControl = []Format{
	inst(OpClc, b("11111000")),
	inst(OpCmc, b("11110101")),
	inst(OpStc, b("11111001")),
	inst(OpCld, b("11111100")),
	inst(OpStd, b("11111101")),
	inst(OpCli, b("11111010")),
	inst(OpSti, b("11111011")),
	inst(OpHlt, b("11110100")),
	inst(OpWait, b("10011011")),
	// ESC: Escape (to external device)
	// [11011|xxx] [mod|yyy|r/m] [disp-lo?] [disp-hi?]
	// the external opcode is xxxyyy
	inst(OpEsc, b("11011"), Field{Usage: UsageEscape, Bits: 3, Shift: 3}, modField,
		Field{Usage: UsageEscape, Bits: 3}, rmField, impD(1)),
}

var prefixes = []Format{
	// [11110000]
	inst(OpLock, b("11110000")),
	// Segment override
	// [001|sr|110]
	inst(OpSegment, b("001"), srField, b("110"), impD(1)),
}
