// Package protocol owns the RCX wire contract.
//
// Ownership boundary:
// - frame primitives (opcode and selector layout)
// - packet framing for the IR link
// - shared protocol errors
package protocol
