// Package bus implements the L0 onboard bus packet format.
package bus

// L0 packets carry telemetry and telecommands between the subsystems
// connected to the internal bus of the prototype, typically over UART.
//
// A packet is at most 127 bytes on the wire: a 2-byte header (type, APID,
// ECF flag, total length), up to 123 payload bytes, and an optional 2-byte
// CRC-16 error control field covering everything before it. Frames are
// delimited on the receive side by a 4-byte attached sync marker located
// with SyncDetector.
//
// Producer: any subsystem on the bus
// Consumer: the flight computer (and vice versa for telecommands)
