// Package comm provides the L0 link to an I2C bridge.
package comm

// The L0 link runs between the bridge firmware, a small microcontroller
// wired to the I2C bus, and the host over a peer-to-peer channel (e.g. a
// USB serial port). It focuses on robustness: the link recovers from
// garbage, dropped bytes and peer restarts by resynchronizing.
//
// This package uses a simple sequence based synchronization mechanism.
// It provides limited transfer error detection based on sequence
// check. It doesn't do any bit verification (e.g. CRC/Checksum),
// parity bits can be enabled on the serial port for that.
//
// On top of the packets, the bridge understands two commands, see
// CodeI2CWrite and CodeI2CRead, which are forwarded as I2C transactions.
//
// Producer: bridge firmware
// Consumer: host transport (picoborg/bridge)
