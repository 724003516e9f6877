// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package specializer

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildTestModule assembles a minimal SPIR-V module declaring one u32
// spec constant (spec id 0, bound to a kernel's single scalar parameter)
// and one implicit threads spec constant (spec id 1), matching the shape
// a real kernel's declaration produces: %uint, %spec_n with SpecId 0,
// %spec_threads with SpecId 1.
func buildTestModule(t *testing.T) []byte {
	t.Helper()
	var insts []instruction

	const uintType = 100
	const specN = 101
	const specThreads = 102

	insts = append(insts,
		instruction{opcode: opDecorate, operands: []uint32{specN, decorationSpecID, 0}},
		instruction{opcode: opDecorate, operands: []uint32{specThreads, decorationSpecID, 1}},
		instruction{opcode: opTypeInt, operands: []uint32{uintType, 32, 0}},
		instruction{opcode: opSpecConstant, operands: []uint32{uintType, specN, 7}},
		instruction{opcode: opSpecConstant, operands: []uint32{uintType, specThreads, 64}},
	)

	m := &module{instructions: insts}
	m.header = [5]uint32{magicNumber, 0x10000, 0, 200, 0}
	return m.assemble()
}

func wordAt(spirv []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(spirv[i*4:])
}

func TestSpecializeBindsSpecConstantsAndThreads(t *testing.T) {
	spirv := buildTestModule(t)

	out, err := Specialize(spirv, 128, []SpecValue{{Words: []uint32{42}}}, false)
	if err != nil {
		t.Fatalf("Specialize: %v", err)
	}

	m, err := parseModule(out)
	if err != nil {
		t.Fatalf("parseModule(out): %v", err)
	}

	var sawN, sawThreads bool
	for _, in := range m.instructions {
		if in.opcode != opConstant {
			continue
		}
		switch in.operands[1] {
		case 101:
			sawN = true
			if in.operands[2] != 42 {
				t.Fatalf("spec constant n = %d, want 42", in.operands[2])
			}
		case 102:
			sawThreads = true
			if in.operands[2] != 128 {
				t.Fatalf("spec constant threads = %d, want 128", in.operands[2])
			}
		}
		if in.opcode == opSpecConstant {
			t.Fatalf("found un-frozen OpSpecConstant after Specialize")
		}
	}
	if !sawN || !sawThreads {
		t.Fatal("expected both spec constants frozen into OpConstant")
	}

	for _, in := range m.instructions {
		if in.opcode == opDecorate && len(in.operands) == 3 && in.operands[1] == decorationSpecID {
			t.Fatal("SpecId decoration should have been removed after freezing")
		}
	}
}

func TestSpecializeIsDeterministic(t *testing.T) {
	spirv := buildTestModule(t)
	specs := []SpecValue{{Words: []uint32{9}}}

	a, err := Specialize(spirv, 32, specs, false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Specialize(spirv, 32, specs, false)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("Specialize produced different output for identical input")
	}
}

func TestSpecializeRejectsBadMagic(t *testing.T) {
	bad := make([]byte, 24)
	if _, err := Specialize(bad, 1, nil, false); err == nil {
		t.Fatal("expected an error for a module with a bad magic number")
	}
}

func TestFoldSpecConstantOpIAdd(t *testing.T) {
	desc := scalarDesc{kind: kindUint, width: 32}
	a := numValue{desc: desc, u: 3, i: 3}
	b := numValue{desc: desc, u: 4, i: 4}
	result, err := foldSpecConstantOp(128, desc, []numValue{a, b}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.isBool || result.nval.u != 7 {
		t.Fatalf("IAdd(3, 4) = %+v, want 7", result)
	}
}

func TestFoldSpecConstantOpComparison(t *testing.T) {
	desc := scalarDesc{kind: kindUint, width: 32}
	a := numValue{desc: desc, u: 3}
	b := numValue{desc: desc, u: 4}
	result, err := foldSpecConstantOp(176, desc, []numValue{a, b}, nil) // ULessThan
	if err != nil {
		t.Fatal(err)
	}
	if !result.isBool || !result.bval {
		t.Fatalf("ULessThan(3, 4) = %+v, want true", result)
	}
}

func TestFoldSpecConstantOpRejectsUnimplemented(t *testing.T) {
	desc := scalarDesc{kind: kindUint, width: 32}
	a := numValue{desc: desc, u: 1}
	b := numValue{desc: desc, u: 2}
	if _, err := foldSpecConstantOp(197 /* BitwiseOr */, desc, []numValue{a, b}, nil); err == nil {
		t.Fatal("expected BitwiseOr to be rejected as unimplemented")
	}
}
