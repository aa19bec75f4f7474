// Package smwire implements the minimal wire-level peek and build
// operations the CM Endpoint Runner needs on SM (Service Manager)
// traffic: "is this a clock-sync request?" and "is this an image-
// content request?" (spec.md §1 Non-goals: message-schema
// interpretation is scoped to exactly these two predicates, plus the
// single outgoing-message kind the inner CM client must recognize as
// cache-worthy).
//
// The upstream SM/CM protobuf service definitions are an external
// collaborator's concern (spec.md §1) and are not reproduced here.
// Instead this package defines the field numbers of a minimal
// SMOutgoingMessages/SMIncomingMessages oneof envelope sufficient for
// the gateway's own routing decisions, and reads/writes them with
// google.golang.org/protobuf's low-level wire encoder so the bytes on
// the wire are ordinary protobuf, decodable by a full schema once one
// is generated.
package smwire
