// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package specializer

import (
	"encoding/binary"
	"fmt"
)

const magicNumber = 0x07230203

// Opcodes this package inspects or rewrites. Values are the SPIR-V 1.x
// opcode numbers; everything else passes through as an opaque instruction.
const (
	opLine          = 8
	opExtension     = 10
	opExtInstImport = 11
	opExtInst       = 12

	opTypeInt     = 21
	opTypeFloat   = 22
	opTypeStruct  = 30
	opTypePointer = 32

	opConstantTrue      = 41
	opConstantFalse     = 42
	opConstant          = 43
	opConstantComposite = 44

	opSpecConstantTrue      = 48
	opSpecConstantFalse     = 49
	opSpecConstant          = 50
	opSpecConstantComposite = 51
	opSpecConstantOp        = 52

	opFunction = 54

	opDecorate = 71

	opNoLine = 317
)

// decorationSpecID and storageClassPushConstant are the enumerant values
// this package cares about out of their respective SPIR-V enums.
const (
	decorationSpecID          = 1
	storageClassPushConstant = 9
)

// instruction is one SPIR-V instruction: the opcode plus every word that
// follows it, result type and result id included where the opcode has
// them. Re-encoding recomputes the leading word-count/opcode word from
// len(operands).
type instruction struct {
	opcode   uint16
	operands []uint32
}

func (in instruction) wordCount() uint16 { return uint16(len(in.operands) + 1) }

// module is a SPIR-V binary split into its 5-word header and instruction
// stream, mirroring rspirv's `dr::Module` at the granularity this package
// needs (no separate types_global_values/functions vectors; callers that
// care about that boundary scan for the first OpFunction themselves).
type module struct {
	header       [5]uint32
	instructions []instruction
}

func parseModule(spirv []byte) (*module, error) {
	if len(spirv)%4 != 0 || len(spirv) < 20 {
		return nil, fmt.Errorf("specializer: malformed SPIR-V module (%d bytes)", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	if words[0] != magicNumber {
		return nil, fmt.Errorf("specializer: bad SPIR-V magic %#x", words[0])
	}

	m := &module{}
	copy(m.header[:], words[:5])

	for i := 5; i < len(words); {
		head := words[i]
		wc := uint16(head >> 16)
		op := uint16(head & 0xffff)
		if wc == 0 || i+int(wc) > len(words) {
			return nil, fmt.Errorf("specializer: truncated instruction at word %d", i)
		}
		operands := append([]uint32(nil), words[i+1:i+int(wc)]...)
		m.instructions = append(m.instructions, instruction{opcode: op, operands: operands})
		i += int(wc)
	}
	return m, nil
}

func (m *module) assemble() []byte {
	wordCount := 5
	for _, in := range m.instructions {
		wordCount += int(in.wordCount())
	}
	words := make([]uint32, 0, wordCount)
	words = append(words, m.header[:]...)
	for _, in := range m.instructions {
		words = append(words, uint32(in.wordCount())<<16|uint32(in.opcode))
		words = append(words, in.operands...)
	}
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// literalString decodes a SPIR-V literal string packed across operand
// words (NUL-terminated, little-endian byte order within each word).
func literalString(operands []uint32) string {
	b := make([]byte, 0, len(operands)*4)
	for _, w := range operands {
		bs := [4]byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
		for _, c := range bs {
			if c == 0 {
				return string(b)
			}
			b = append(b, c)
		}
	}
	return string(b)
}
