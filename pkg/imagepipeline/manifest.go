package imagepipeline

import (
	"encoding/json"
	"os"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

const manifestFileName = "manifest.json"

// Descriptor is a content-addressed reference within a manifest.
type Descriptor struct {
	Digest string `json:"digest"`
}

// Manifest is the minimal OCI-shaped manifest this pipeline needs: a
// config descriptor, one or more layer descriptors (the first of
// which is the root-fs layer this gateway rewrites), and an optional
// aos-service descriptor (spec.md §4.9 step 2).
type Manifest struct {
	Config     Descriptor    `json:"config"`
	Layers     []Descriptor  `json:"layers"`
	AOSService *Descriptor   `json:"aosService,omitempty"`
	raw        map[string]any `json:"-"`
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.readManifest", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "imagepipeline.readManifest", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "imagepipeline.readManifest", err)
	}
	m.raw = raw

	if len(m.Layers) == 0 {
		return nil, gatewayerrors.New(gatewayerrors.KindInvalidArgument, "imagepipeline.readManifest", "manifest has no layers")
	}

	return &m, nil
}

// validate checks every referenced digest for well-formedness
// (spec.md §4.9 step 3).
func (m *Manifest) validate() error {
	if err := ValidateDigest(m.Config.Digest); err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "imagepipeline.Manifest.validate", err)
	}
	for _, layer := range m.Layers {
		if err := ValidateDigest(layer.Digest); err != nil {
			return gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "imagepipeline.Manifest.validate", err)
		}
	}
	if m.AOSService != nil {
		if err := ValidateDigest(m.AOSService.Digest); err != nil {
			return gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "imagepipeline.Manifest.validate", err)
		}
	}
	return nil
}

// rewriteRootFSDigest updates the first layer's digest in both the
// in-memory Manifest and the on-disk JSON document, preserving every
// other field verbatim (spec.md §4.9 step 4).
func (m *Manifest) rewriteRootFSDigest(path, newDigest string) error {
	m.Layers[0].Digest = newDigest

	layers, ok := m.raw["layers"].([]any)
	if !ok || len(layers) == 0 {
		return gatewayerrors.New(gatewayerrors.KindRuntime, "imagepipeline.rewriteRootFSDigest", "manifest raw document missing layers array")
	}
	first, ok := layers[0].(map[string]any)
	if !ok {
		return gatewayerrors.New(gatewayerrors.KindRuntime, "imagepipeline.rewriteRootFSDigest", "manifest raw layer[0] is not an object")
	}
	first["digest"] = newDigest

	data, err := json.MarshalIndent(m.raw, "", "  ")
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.rewriteRootFSDigest", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.rewriteRootFSDigest", err)
	}
	return nil
}
