package decoder

var dataTransfer = []Format{
	// MOV: Register/memory to/from register
	// [100010|d|w] [mod|reg|r/m] [disp-lo?] [disp-hi?]
	inst(OpMov, b("100010"), dBit, wBit, modField, regField, rmField),
	// MOV: Immediate to register/memory
	// [1100011|w] [mod|000|r/m] [disp-lo?] [disp-hi?] [data-lo] [data-hi?]
	inst(OpMov, b("1100011"), wBit, modField, b("000"), rmField, data, dataIfW, impD(0)),
	// MOV: Immediate to register
	// [1011|w|reg] [data-lo] [data-hi?]
	inst(OpMov, b("1011"), wBit, regField, data, dataIfW, impD(1)),
	// MOV: Memory to accumulator
	// [1010000|w] [addr-lo] [addr-hi]
	inst(OpMov, b("1010000"), wBit, disp, dispW, impReg(0), impMod(0b00), impRM(0b110), impD(1)),
	// MOV: Accumulator to memory
	// [1010001|w] [addr-lo] [addr-hi]
	inst(OpMov, b("1010001"), wBit, disp, dispW, impReg(0), impMod(0b00), impRM(0b110), impD(0)),
	// MOV: Register/memory to/from segment register
	// [100011|d|0] [mod|0|sr|r/m] [disp-lo?] [disp-hi?]
	inst(OpMov, b("100011"), dBit, b("0"), modField, b("0"), srField, rmField, impW(1)),

	// PUSH: Register/memory
	// [11111111] [mod|110|r/m] [disp-lo?] [disp-hi?]
	inst(OpPush, b("11111111"), modField, b("110"), rmField, impW(1)),
	// PUSH: Register
	// [01010|reg]
	inst(OpPush, b("01010"), regField, impW(1)),
	// PUSH: Segment register
	// [000|sr|110]
	inst(OpPush, b("000"), srField, b("110"), impW(1)),

	// POP: Register/memory
	// [10001111] [mod|000|r/m] [disp-lo?] [disp-hi?]
	inst(OpPop, b("10001111"), modField, b("000"), rmField, impW(1)),
	// POP: Register
	// [01011|reg]
	inst(OpPop, b("01011"), regField, impW(1)),
	// POP: Segment register
	// [000|sr|111]
	inst(OpPop, b("000"), srField, b("111"), impW(1)),

	// XCHG: Register/memory with register
	// [1000011|w] [mod|reg|r/m] [disp-lo?] [disp-hi?]
	inst(OpXchg, b("1000011"), wBit, modField, regField, rmField, impD(1)),
	// xchg ax, ax
	// [10010000]
	inst(OpNop, b("10010000")),
	// XCHG: Register with accumulator
	// [10010|reg]
	inst(OpXchg, b("10010"), regField, impMod(0b11), impW(1), impRM(0)),

	// IN: Fixed port
	// [1110010|w] [data-8]
	inst(OpIn, b("1110010"), wBit, data, impReg(0), impD(1)),
	// IN: Variable port (dx)
	// [1110110|w]
	inst(OpIn, b("1110110"), wBit, impReg(0), impD(1), impMod(0b11), impRM(0b010), rmAlwaysW),
	// OUT: Fixed port
	// [1110011|w] [data-8]
	inst(OpOut, b("1110011"), wBit, data, impReg(0), impD(0)),
	// OUT: Variable port (dx)
	// [1110111|w]
	inst(OpOut, b("1110111"), wBit, impReg(0), impD(0), impMod(0b11), impRM(0b010), rmAlwaysW),

	// [11010111]
	inst(OpXlat, b("11010111")),
	// LEA: Load EA to register
	// [10001101] [mod|reg|r/m] [disp-lo?] [disp-hi?]
	inst(OpLea, b("10001101"), modField, regField, rmField, impD(1), impW(1)),
	// LDS: Load pointer to DS
	// [11000101] [mod|reg|r/m] [disp-lo?] [disp-hi?]
	inst(OpLds, b("11000101"), modField, regField, rmField, impD(1), impW(1)),
	// LES: Load pointer to ES
	// [11000100] [mod|reg|r/m] [disp-lo?] [disp-hi?]
	inst(OpLes, b("11000100"), modField, regField, rmField, impD(1), impW(1)),
	inst(OpLahf, b("10011111")),
	inst(OpSahf, b("10011110")),
	inst(OpPushf, b("10011100")),
	inst(OpPopf, b("10011101")),
}
