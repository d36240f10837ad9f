// Package gcode provides the command ingestion pipeline of the panel controller.
package gcode

// The controller speaks a line protocol modeled on machine-tool G-code:
// a command letter, a numeric code and whitespace separated parameters,
// optionally prefixed by a line number and suffixed by a checksum.
//
//   N12 M2600 Q1 S0 V/wAAAP8A*93
//
// Bytes received from a transport are framed into lines (Framer), checked
// (Validator), admitted into a fixed-depth ring (Queue), then parsed in
// place (Parse) by the control loop. None of these steps allocate per line:
// the queue owns all line storage and the parsed Command only borrows it.
//
// Binary payloads (pixel colors) travel as base64 runs inside a parameter
// value, see Encode and Decode.
