// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package specializer

import "fmt"

// SpecValue is one caller-supplied specialization constant, already
// encoded as the 1 or 2 little-endian words a SPIR-V literal of that
// scalar's width occupies (2 words for 64-bit scalars).
type SpecValue struct {
	Words []uint32
}

// Specialize binds specs (in declaration order) and the implicit
// thread-group-size constant into spirv's spec constants, freezes every
// spec constant into a plain constant, strips debug-printf
// instrumentation unless debugPrintf is set, and reorders push-constant
// pointer types to appease driver SPIR-V reflection. The implicit threads
// constant is addressed as spec id len(specs), matching the declaration
// order the kernel builder appends it in.
func Specialize(spirv []byte, threads uint32, specs []SpecValue, debugPrintf bool) ([]byte, error) {
	m, err := parseModule(spirv)
	if err != nil {
		return nil, err
	}

	specIDs := map[uint32]uint32{}
	for _, in := range m.instructions {
		if in.opcode != opDecorate || len(in.operands) < 3 {
			continue
		}
		if in.operands[1] == decorationSpecID {
			specIDs[in.operands[0]] = in.operands[2]
		}
	}

	threadsWords := []uint32{threads}
	for i := range m.instructions {
		in := &m.instructions[i]
		if in.opcode != opSpecConstant {
			continue
		}
		resultID := in.operands[1]
		specID, ok := specIDs[resultID]
		if !ok {
			continue
		}
		var words []uint32
		switch {
		case int(specID) < len(specs):
			words = specs[specID].Words
		case int(specID) == len(specs):
			words = threadsWords
		default:
			return nil, fmt.Errorf("specializer: spec id %d has no bound value", specID)
		}
		if len(words) != len(in.operands)-2 {
			return nil, fmt.Errorf("specializer: spec id %d expects %d literal words, got %d", specID, len(in.operands)-2, len(words))
		}
		copy(in.operands[2:], words)
	}

	if !debugPrintf {
		stripDebugPrintf(m)
	}
	if err := freezeSpecConstants(m); err != nil {
		return nil, err
	}
	reorderPushConstantPointers(m)

	return m.assemble(), nil
}

// stripDebugPrintf removes the NonSemantic.DebugPrintf extended
// instruction set import, its enabling extension, every OpExtInst call
// into it, and, when such an import was present, all OpLine/OpNoLine
// debug markers.
func stripDebugPrintf(m *module) {
	extInstSets := map[uint32]bool{}

	kept := m.instructions[:0:0]
	for _, in := range m.instructions {
		switch in.opcode {
		case opExtension:
			if literalString(in.operands) == "SPV_KHR_non_semantic_info" {
				continue
			}
		case opExtInstImport:
			name := literalString(in.operands[1:])
			if len(name) >= len("NonSemantic.DebugPrintf") && name[:len("NonSemantic.DebugPrintf")] == "NonSemantic.DebugPrintf" {
				extInstSets[in.operands[0]] = true
				continue
			}
		}
		kept = append(kept, in)
	}
	m.instructions = kept

	if len(extInstSets) == 0 {
		return
	}

	kept = m.instructions[:0:0]
	for _, in := range m.instructions {
		if in.opcode == opLine || in.opcode == opNoLine {
			continue
		}
		if in.opcode == opExtInst && len(in.operands) >= 3 && extInstSets[in.operands[2]] {
			continue
		}
		kept = append(kept, in)
	}
	m.instructions = kept
}

// freezeSpecConstants turns every OpSpecConstant* instruction into its
// plain, non-specializable counterpart, evaluating OpSpecConstantOp
// instructions against the now-bound constant values, and drops the
// SpecId decorations that no longer apply.
func freezeSpecConstants(m *module) error {
	scalars := map[uint32]scalarDesc{}
	values := map[uint32]numValue{}
	boolValues := map[uint32]bool{}

	for i := range m.instructions {
		in := &m.instructions[i]
		switch in.opcode {
		case opTypeInt:
			width := int(in.operands[1])
			kind := kindUint
			if in.operands[2] == 1 {
				kind = kindSint
			}
			scalars[in.operands[0]] = scalarDesc{kind: kind, width: width}

		case opTypeFloat:
			scalars[in.operands[0]] = scalarDesc{kind: kindFloat, width: int(in.operands[1])}

		case opConstantTrue, opConstantFalse, opSpecConstantTrue, opSpecConstantFalse:
			value := in.opcode == opConstantTrue || in.opcode == opSpecConstantTrue
			resultID := in.operands[1]
			boolValues[resultID] = value
			if in.opcode == opSpecConstantTrue || in.opcode == opSpecConstantFalse {
				op := uint16(opConstantFalse)
				if value {
					op = opConstantTrue
				}
				*in = instruction{opcode: op, operands: in.operands[:2]}
			}

		case opConstant, opSpecConstant:
			resultType := in.operands[0]
			resultID := in.operands[1]
			desc, ok := scalars[resultType]
			if !ok {
				return fmt.Errorf("specializer: constant %d has unknown scalar type", resultID)
			}
			values[resultID] = decodeNumValue(desc, in.operands[2:])
			if in.opcode == opSpecConstant {
				*in = instruction{opcode: opConstant, operands: in.operands}
			}

		case opSpecConstantComposite:
			*in = instruction{opcode: opConstantComposite, operands: in.operands}

		case opSpecConstantOp:
			resultType := in.operands[0]
			resultID := in.operands[1]
			innerOp := uint16(in.operands[2])
			operandIDs := in.operands[3:]

			desc := scalars[resultType]
			args := make([]numValue, 0, len(operandIDs))
			var boolArgs []bool
			for _, id := range operandIDs {
				if v, ok := values[id]; ok {
					args = append(args, v)
				} else if b, ok := boolValues[id]; ok {
					boolArgs = append(boolArgs, b)
				} else {
					return fmt.Errorf("specializer: SpecConstantOp operand %d is not a known constant", id)
				}
			}

			result, err := foldSpecConstantOp(innerOp, desc, args, boolArgs)
			if err != nil {
				return err
			}
			if result.isBool {
				boolValues[resultID] = result.bval
				op := uint16(opConstantFalse)
				if result.bval {
					op = opConstantTrue
				}
				*in = instruction{opcode: op, operands: []uint32{resultType, resultID}}
				continue
			}
			values[resultID] = result.nval
			*in = instruction{opcode: opConstant, operands: append([]uint32{resultType, resultID}, encodeNumValue(result.nval)...)}
		}
	}

	filtered := m.instructions[:0:0]
	for _, in := range m.instructions {
		if in.opcode == opDecorate && len(in.operands) == 3 && in.operands[1] == decorationSpecID {
			continue
		}
		filtered = append(filtered, in)
	}
	m.instructions = filtered
	return nil
}

// reorderPushConstantPointers moves every non-struct PushConstant
// TypePointer instruction to the end of the types/constants/globals
// section, matching the reference runtime's workaround for drivers that
// expect every PushConstant pointer to point at a struct during
// reflection.
func reorderPushConstantPointers(m *module) {
	boundary := len(m.instructions)
	for i, in := range m.instructions {
		if in.opcode == opFunction {
			boundary = i
			break
		}
	}

	structIDs := map[uint32]bool{}
	for _, in := range m.instructions[:boundary] {
		if in.opcode == opTypeStruct {
			structIDs[in.operands[0]] = true
		}
	}

	var kept, moved []instruction
	for _, in := range m.instructions[:boundary] {
		if in.opcode == opTypePointer && len(in.operands) == 3 &&
			in.operands[1] == storageClassPushConstant && !structIDs[in.operands[2]] {
			moved = append(moved, in)
			continue
		}
		kept = append(kept, in)
	}
	if len(moved) == 0 {
		return
	}

	rest := m.instructions[boundary:]
	out := make([]instruction, 0, len(m.instructions))
	out = append(out, kept...)
	out = append(out, moved...)
	out = append(out, rest...)
	m.instructions = out
}
