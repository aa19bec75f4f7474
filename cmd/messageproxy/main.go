// Message-proxy gateway: relays framed byte streams from an untrusted outer
// virtual channel to trusted inner gRPC services (IAM, CM), decrypting and
// demultiplexing per logical port along the way.
//
// Usage:
//
//	# Start the gateway with default configuration
//	messageproxy run
//
//	# Start with a specific configuration file
//	messageproxy run --config /etc/messageproxy/config.yaml
//
//	# Start with only the open (unsecured) endpoints, for provisioning
//	messageproxy run --provisioning
//
//	# Show version information
//	messageproxy version
package main

func main() {
	Execute()
}
