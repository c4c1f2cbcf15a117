package decoder

// Conditional jumps and loops
// [opcode] [IP-INC8]
// The displacement is relative to the end of the instruction.
func jump(op Operation, opcode string) Format {
	return inst(op, b(opcode), disp, relJMP)
}

var controlTransfer = []Format{
	// CALL: Direct within segment
	// [11101000] [IP-INC-LO] [IP-INC-HI]
	inst(OpCall, b("11101000"), disp, dispW, relJMP),
	// CALL: Indirect within segment
	// [11111111] [mod|010|r/m] [disp-lo?] [disp-hi?]
	inst(OpCall, b("11111111"), modField, b("010"), rmField, impW(1)),
	// CALL: Direct intersegment
	// [10011010] [offset-lo] [offset-hi] [seg-lo] [seg-hi]
	inst(OpCall, b("10011010"), disp, dispW, data, dataIfW, impW(1), far),
	// CALL: Indirect intersegment
	// [11111111] [mod|011|r/m] [disp-lo?] [disp-hi?]
	inst(OpCall, b("11111111"), modField, b("011"), rmField, impW(1), far),

	// JMP: Direct within segment
	// [11101001] [IP-INC-LO] [IP-INC-HI]
	inst(OpJmp, b("11101001"), disp, dispW, relJMP),
	// JMP: Direct within segment-short
	// [11101011] [IP-INC8]
	inst(OpJmp, b("11101011"), disp, relJMP),
	// JMP: Indirect within segment
	// [11111111] [mod|100|r/m] [disp-lo?] [disp-hi?]
	inst(OpJmp, b("11111111"), modField, b("100"), rmField, impW(1)),
	// JMP: Direct intersegment
	// [11101010] [offset-lo] [offset-hi] [seg-lo] [seg-hi]
	inst(OpJmp, b("11101010"), disp, dispW, data, dataIfW, impW(1), far),
	// JMP: Indirect intersegment
	// [11111111] [mod|101|r/m] [disp-lo?] [disp-hi?]
	inst(OpJmp, b("11111111"), modField, b("101"), rmField, impW(1), far),

	// RET: Within segment
	// [11000011]
	inst(OpRet, b("11000011")),
	// RET: Within segment adding immediate to SP
	// [11000010] [data-lo] [data-hi]
	inst(OpRet, b("11000010"), data, dataIfW, impW(1)),
	// RET: Intersegment
	// [11001011]
	inst(OpRetf, b("11001011")),
	// RET: Intersegment adding immediate to SP
	// [11001010] [data-lo] [data-hi]
	inst(OpRetf, b("11001010"), data, dataIfW, impW(1)),

	jump(OpJe, "01110100"),
	jump(OpJl, "01111100"),
	jump(OpJle, "01111110"),
	jump(OpJb, "01110010"),
	jump(OpJbe, "01110110"),
	jump(OpJp, "01111010"),
	jump(OpJo, "01110000"),
	jump(OpJs, "01111000"),
	jump(OpJne, "01110101"),
	jump(OpJnl, "01111101"),
	jump(OpJg, "01111111"),
	jump(OpJnb, "01110011"),
	jump(OpJa, "01110111"),
	jump(OpJnp, "01111011"),
	jump(OpJno, "01110001"),
	jump(OpJns, "01111001"),

	jump(OpLoop, "11100010"),
	jump(OpLoopz, "11100001"),
	jump(OpLoopnz, "11100000"),
	jump(OpJcxz, "11100011"),
}
