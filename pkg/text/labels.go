package text

import (
	"fmt"
	"io"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/decoder"
)

// Conditional jumps that nasm also knows under another name
var alternativeNames = map[decoder.Operation]string{
	decoder.OpJe:     "jz",
	decoder.OpJne:    "jnz",
	decoder.OpJl:     "jnge",
	decoder.OpJnl:    "jge",
	decoder.OpJle:    "jng",
	decoder.OpJg:     "jnle",
	decoder.OpJb:     "jnae",
	decoder.OpJnb:    "jae",
	decoder.OpJbe:    "jna",
	decoder.OpJa:     "jnbe",
	decoder.OpJp:     "jpe",
	decoder.OpJnp:    "jpo",
	decoder.OpLoopz:  "loope",
	decoder.OpLoopnz: "loopne",
}

func createLabelName(address uint32) string {
	return fmt.Sprintf("label__%d", address)
}

// WriteLabeled lists the instructions with the relative jumps pointing to labels.
// A jump to an address that isn't the start of a listed instruction keeps the $+n form.
func WriteLabeled(w io.Writer, instructions []decoder.Instruction) error {
	// the label goes in front of the prefixes of the instruction
	starts := make(map[uint32]bool)
	prefixed := false
	for _, inst := range instructions {
		if !prefixed {
			starts[inst.Address] = true
		}
		prefixed = inst.IsPrefix()
	}

	labels := make(map[uint32]string)
	for _, inst := range instructions {
		if target, ok := jumpTarget(inst); ok && starts[target] {
			labels[target] = createLabelName(target)
		}
	}

	prefixed = false
	for _, inst := range instructions {
		if label, ok := labels[inst.Address]; ok && !prefixed {
			if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
				return err
			}
		}
		prefixed = inst.IsPrefix()
		if inst.IsPrefix() {
			continue
		}

		line := Format(inst)
		if target, ok := jumpTarget(inst); ok {
			if label, ok := labels[target]; ok {
				line = fmt.Sprintf("%s %s", inst.Op, label)
			}
			if name, ok := alternativeNames[inst.Op]; ok {
				line = fmt.Sprintf("%s ; %s", line, name)
			}
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

func jumpTarget(inst decoder.Instruction) (uint32, bool) {
	rel, ok := inst.Operands[0].(decoder.RelativeImmediate)
	if !ok {
		return 0, false
	}

	return uint32(int64(inst.Address) + int64(rel.Value)), true
}
