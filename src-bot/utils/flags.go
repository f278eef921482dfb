package utils

import "sync/atomic"

// FeatureFlags are toggled at runtime by the operator.
type FeatureFlags struct {
	apiDisabled atomic.Bool
}

func NewFeatureFlags(apiDisabled bool) *FeatureFlags {
	f := &FeatureFlags{}
	f.apiDisabled.Store(apiDisabled)
	return f
}

// Disabled reports whether outbound API calls are switched off.
func (f *FeatureFlags) Disabled() bool {
	return f.apiDisabled.Load()
}

// SetDisabled returns the previous state.
func (f *FeatureFlags) SetDisabled(disabled bool) bool {
	return f.apiDisabled.Swap(disabled)
}
