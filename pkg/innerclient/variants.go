package innerclient

import "github.com/edge-gateway/messageproxy/pkg/smwire"

func isNodeConfigStatusCacheable(payload []byte) bool {
	return smwire.IsNodeConfigStatus(payload)
}

// CM and IAM RPC method paths (spec.md §4.5). The upstream service
// definitions themselves live outside this gateway's scope; these
// names identify the bidirectional streams this client dials.
const (
	MethodRegisterSM   = "/cm.v1.CMService/RegisterSM"
	MethodRegisterNode = "/iam.v6.IAMPublicNodeService/RegisterNode"
)

// NewCM builds the CM-variant inner client: only NodeConfigStatus
// outgoing messages survive a dropped connection to be replayed
// (spec.md §4.5; original_source/src/cmclient/cmclient.cpp retains
// only the last node config status across a reconnect).
func NewCM(cfg Config) *Client {
	cfg.Method = MethodRegisterSM
	cfg.Cacheable = isNodeConfigStatusCacheable
	return New(cfg)
}

// NewIAM builds the IAM-variant inner client: every outgoing message
// is cached and replayed after a reconnect (spec.md §4.5;
// original_source/src/iamclient/publicnodeclient.cpp replays its full
// pending queue on reconnect).
func NewIAM(cfg Config) *Client {
	cfg.Method = MethodRegisterNode
	cfg.Cacheable = CacheAll
	return New(cfg)
}
