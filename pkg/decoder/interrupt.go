package decoder

var interrupts = []Format{
	// INT: Type specified
	// [11001101] [data-8]
	inst(OpInt, b("11001101"), data),
	// INT: Type 3
	// [11001100]
	inst(OpInt3, b("11001100")),
	// INTO: Interrupt on overflow
	// [11001110]
	inst(OpInto, b("11001110")),
	// IRET: Interrupt return
	// [11001111]
	inst(OpIret, b("11001111")),
}
