// Package abi lowers function signatures onto the x86-64 Windows calling convention.
//
// A Signature is built from semantic types (package types) and lowered in one
// pass by Lower. Every parameter and the return slot ends up with at most one
// rewrite:
//
//   - ByvalRewrite: the caller passes the address of a private copy; the slot
//     becomes a noalias nocapture pointer aligned like the declared type.
//   - IntegerRewrite: an aggregate of 1, 2, 4 or 8 bytes travels as an integer
//     of the same size.
//   - LongDoubleRewrite: the MSVC long double wrapper travels as a double.
//
// Signature-level decisions are taken once per pass: the struct return and
// the receiver position before the slots are rewritten, the reversed
// parameter order after. Low-level types and parameter attributes are expressed with
// github.com/llir/llvm so that the result can be emitted as an LLVM
// declaration (see Declare).
//
// Contract violations (rewriting a by-reference slot, applying the long double
// rule to another type, a convention asking for byval) panic. Nothing in this package returns an error.
package abi
