// Package relay owns the rcxctl process lifecycle.
//
// Startup order:
// - transport driver selection and open (open failure is logged, not fatal)
// - encoder over the opened channel
// - optional admin HTTP endpoint
// - listener bind, single accept, read loop
//
// Shutdown closes the listener from the signal context so a blocked accept or
// read returns, then releases the transport channel.
package relay
