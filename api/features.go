package api

import (
	"fmt"
	"strings"
)

// CoreFeatures is a bitset of WebAssembly core specification and proposal
// features. Its zero value has no features enabled, so it always starts at
// bit offset 1 (not 0) to avoid collision with "all features disabled".
//
// See https://github.com/WebAssembly/proposals for the list this models.
type CoreFeatures uint64

const (
	// CoreFeatureMutableGlobal allows globals to be mutable: part of the
	// WebAssembly Core specification 1.0 (20191205).
	CoreFeatureMutableGlobal CoreFeatures = 1 << iota

	// CoreFeatureSignExtensionOps enables sign-extension instructions
	// (i32.extend8_s etc). See https://github.com/WebAssembly/sign-extension-ops
	CoreFeatureSignExtensionOps

	// CoreFeatureMultiValue allows multiple result values from a function
	// or block. See https://github.com/WebAssembly/multi-value
	CoreFeatureMultiValue

	// CoreFeatureNonTrappingFloatToIntConversion enables the trunc_sat
	// family of instructions.
	// See https://github.com/WebAssembly/nontrapping-float-to-int-conversions
	CoreFeatureNonTrappingFloatToIntConversion

	// CoreFeatureBulkMemoryOperations enables memory.copy, memory.fill,
	// memory.init, data.drop, table.copy, table.init and elem.drop.
	// See https://github.com/WebAssembly/bulk-memory-operations
	CoreFeatureBulkMemoryOperations

	// CoreFeatureReferenceTypes enables funcref/externref, table.get/set,
	// table.grow/size/fill and ref.null/ref.is_null/ref.func.
	// See https://github.com/WebAssembly/reference-types
	CoreFeatureReferenceTypes

	// CoreFeatureSIMD enables the v128 value type and vector instructions.
	// The value type and locals/globals/slots of this type are supported;
	// vector arithmetic is not implemented by this engine.
	// See https://github.com/WebAssembly/simd
	CoreFeatureSIMD
)

// CoreFeaturesV1 are features included in the WebAssembly Core
// specification 1.0 (20191205).
const CoreFeaturesV1 = CoreFeatureMutableGlobal

// CoreFeaturesV2 are features included in the WebAssembly Core
// specification 2.0 (DRAFT), plus the proposals implemented by this engine.
const CoreFeaturesV2 = CoreFeaturesV1 |
	CoreFeatureSignExtensionOps |
	CoreFeatureMultiValue |
	CoreFeatureNonTrappingFloatToIntConversion |
	CoreFeatureBulkMemoryOperations |
	CoreFeatureReferenceTypes |
	CoreFeatureSIMD

var coreFeatureNames = [...]struct {
	feature CoreFeatures
	name    string
}{
	{CoreFeatureBulkMemoryOperations, "bulk-memory-operations"},
	{CoreFeatureMultiValue, "multi-value"},
	{CoreFeatureMutableGlobal, "mutable-global"},
	{CoreFeatureNonTrappingFloatToIntConversion, "nontrapping-float-to-int-conversion"},
	{CoreFeatureReferenceTypes, "reference-types"},
	{CoreFeatureSignExtensionOps, "sign-extension-ops"},
	{CoreFeatureSIMD, "simd"},
}

// SetEnabled sets the value for the given feature, returning an updated
// CoreFeatures. This does not mutate the receiver.
func (f CoreFeatures) SetEnabled(feature CoreFeatures, enabled bool) CoreFeatures {
	if enabled {
		return f | feature
	}
	return f &^ feature
}

// IsEnabled returns true if the feature (or set of features) is enabled.
// Zero is not a feature, so IsEnabled(0) is false.
func (f CoreFeatures) IsEnabled(feature CoreFeatures) bool {
	return feature != 0 && f&feature == feature
}

// String implements fmt.Stringer by returning the set of enabled,
// recognized feature names joined by "|", in a stable order.
func (f CoreFeatures) String() string {
	var names []string
	for _, e := range coreFeatureNames {
		if f.IsEnabled(e.feature) {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, "|")
}

// RequireEnabled returns an error if the given feature is not enabled.
func (f CoreFeatures) RequireEnabled(feature CoreFeatures) error {
	if !f.IsEnabled(feature) {
		for _, e := range coreFeatureNames {
			if e.feature == feature {
				return fmt.Errorf("feature %q is disabled", e.name)
			}
		}
		return fmt.Errorf("feature %#x is disabled", uint64(feature))
	}
	return nil
}
