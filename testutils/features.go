package testutils

import (
	"testing"

	"golang.org/x/exp/slices"
)

type TestFeature string

const (
	TestFeatureMethodCall     TestFeature = "method-call"
	TestFeatureNodeManagement TestFeature = "node-management"
	TestFeatureCompression    TestFeature = "compression"
)

var AllTestFeatures = []TestFeature{
	TestFeatureMethodCall,
	TestFeatureNodeManagement,
	TestFeatureCompression,
}

func SupportsFeature(feat TestFeature) bool {
	return slices.Contains(TestOpts.SupportedFeatures, feat)
}

func SkipIfUnsupportedFeature(t *testing.T, feat TestFeature) {
	if !SupportsFeature(feat) {
		t.Skipf("skipping unsupported feature (%s)", feat)
	}
}
