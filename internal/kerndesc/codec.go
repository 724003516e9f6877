// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kerndesc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// magic identifies the artifact container format; version lets a future
// compiler add fields without breaking older runtimes' Decode.
const (
	magic         uint32 = 0x4b524e4c // "KRNL"
	formatVersion uint32 = 1
)

// Encode serializes d into its binary artifact form: a fixed-width header,
// length-prefixed descriptor fields, and a gzip-compressed SPIR-V payload.
func Encode(d *Descriptor) ([]byte, error) {
	var spirvBytes bytes.Buffer
	spirvBytes.Grow(len(d.SPIRV) * 4)
	for _, w := range d.SPIRV {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], w)
		spirvBytes.Write(b[:])
	}

	var compressed bytes.Buffer
	gw, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("kerndesc: %w", err)
	}
	if _, err := gw.Write(spirvBytes.Bytes()); err != nil {
		return nil, fmt.Errorf("kerndesc: compressing SPIR-V payload: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("kerndesc: %w", err)
	}

	var out bytes.Buffer
	writeU32(&out, magic)
	writeU32(&out, formatVersion)
	writeString(&out, d.Name)
	writeU64(&out, uint64(d.Features))
	writeBool(&out, d.Safe)
	writeU32(&out, d.Threads)

	writeU32(&out, uint32(len(d.SpecDescs)))
	for _, s := range d.SpecDescs {
		writeString(&out, s.Name)
		out.WriteByte(byte(s.ScalarType))
	}

	writeU32(&out, uint32(len(d.SliceDescs)))
	for _, s := range d.SliceDescs {
		writeString(&out, s.Name)
		out.WriteByte(byte(s.ScalarType))
		writeBool(&out, s.Mutable)
		writeBool(&out, s.Item)
	}

	writeU32(&out, uint32(len(d.PushDescs)))
	for _, p := range d.PushDescs {
		writeString(&out, p.Name)
		out.WriteByte(byte(p.ScalarType))
	}

	writeU32(&out, uint32(spirvBytes.Len()))
	writeU32(&out, uint32(compressed.Len()))
	out.Write(compressed.Bytes())

	return out.Bytes(), nil
}

// Decode parses an artifact produced by Encode, inflating and validating
// its SPIR-V payload against the length recorded at encode time.
func Decode(data []byte) (*Descriptor, error) {
	r := bytes.NewReader(data)

	if got, err := readU32(r); err != nil || got != magic {
		return nil, fmt.Errorf("kerndesc: bad magic %#x", got)
	}
	version, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("kerndesc: %w", err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("kerndesc: unsupported artifact version %d", version)
	}

	d := &Descriptor{}
	if d.Name, err = readString(r); err != nil {
		return nil, fmt.Errorf("kerndesc: name: %w", err)
	}
	features, err := readU64(r)
	if err != nil {
		return nil, fmt.Errorf("kerndesc: features: %w", err)
	}
	d.Features = FeatureSet(features)
	if d.Safe, err = readBool(r); err != nil {
		return nil, fmt.Errorf("kerndesc: safe: %w", err)
	}
	if d.Threads, err = readU32(r); err != nil {
		return nil, fmt.Errorf("kerndesc: threads: %w", err)
	}

	specCount, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("kerndesc: spec count: %w", err)
	}
	d.SpecDescs = make([]SpecDesc, specCount)
	for i := range d.SpecDescs {
		if d.SpecDescs[i].Name, err = readString(r); err != nil {
			return nil, fmt.Errorf("kerndesc: spec_descs[%d]: %w", i, err)
		}
		tag, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("kerndesc: spec_descs[%d]: %w", i, err)
		}
		d.SpecDescs[i].ScalarType = ScalarTag(tag)
	}

	sliceCount, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("kerndesc: slice count: %w", err)
	}
	d.SliceDescs = make([]SliceDesc, sliceCount)
	for i := range d.SliceDescs {
		if d.SliceDescs[i].Name, err = readString(r); err != nil {
			return nil, fmt.Errorf("kerndesc: slice_descs[%d]: %w", i, err)
		}
		tag, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("kerndesc: slice_descs[%d]: %w", i, err)
		}
		d.SliceDescs[i].ScalarType = ScalarTag(tag)
		if d.SliceDescs[i].Mutable, err = readBool(r); err != nil {
			return nil, fmt.Errorf("kerndesc: slice_descs[%d]: %w", i, err)
		}
		if d.SliceDescs[i].Item, err = readBool(r); err != nil {
			return nil, fmt.Errorf("kerndesc: slice_descs[%d]: %w", i, err)
		}
	}

	pushCount, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("kerndesc: push count: %w", err)
	}
	d.PushDescs = make([]PushDesc, pushCount)
	for i := range d.PushDescs {
		if d.PushDescs[i].Name, err = readString(r); err != nil {
			return nil, fmt.Errorf("kerndesc: push_descs[%d]: %w", i, err)
		}
		tag, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("kerndesc: push_descs[%d]: %w", i, err)
		}
		d.PushDescs[i].ScalarType = ScalarTag(tag)
	}

	uncompressedLen, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("kerndesc: uncompressed length: %w", err)
	}
	compressedLen, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("kerndesc: compressed length: %w", err)
	}
	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("kerndesc: reading compressed payload: %w", err)
	}

	gr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("kerndesc: %q: %w", d.Name, err)
	}
	raw, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("kerndesc: %q: decompressing SPIR-V: %w", d.Name, err)
	}
	if uint32(len(raw)) != uncompressedLen {
		return nil, fmt.Errorf("kerndesc: %q: SPIR-V length mismatch: header says %d, got %d", d.Name, uncompressedLen, len(raw))
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("kerndesc: %q: SPIR-V payload is not word-aligned (%d bytes)", d.Name, len(raw))
	}

	d.SPIRV = make([]uint32, len(raw)/4)
	for i := range d.SPIRV {
		d.SPIRV[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}

	return d, nil
}

func writeU32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeU64(w *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

func writeBool(w *bytes.Buffer, v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

func writeString(w *bytes.Buffer, s string) {
	writeU32(w, uint32(len(s)))
	w.WriteString(s)
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
