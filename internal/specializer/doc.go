// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package specializer rewrites a kernel's SPIR-V module at dispatch-build
// time: it binds caller-supplied specialization-constant values (and the
// implicit thread-group-size constant) into the module, freezes every
// OpSpecConstant* instruction into its non-specializable OpConstant*
// counterpart, optionally strips NonSemantic.DebugPrintf instrumentation,
// and reorders non-struct PushConstant pointer types to the end of the
// type section to satisfy driver validation quirks.
//
// The transform operates on the raw SPIR-V binary word stream rather than
// a full semantic IR; it understands exactly the instructions the kernel
// pipeline touches (types, constants, decorations, extensions, and
// function boundaries) and leaves everything else as opaque words.
package specializer
