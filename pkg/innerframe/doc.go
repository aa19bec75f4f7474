// Package innerframe layers spec.md's InnerHeader message framing
// (§4.1, §6) on top of any exact-fill byte-stream reader/writer — a
// muxchannel.Channel or a securechannel.SecureChannel alike. A Channel
// itself has no notion of message boundaries beyond the raw bytes the
// mux appended to it; this package is what turns that stream back into
// discrete messages for the endpoint runners.
package innerframe
