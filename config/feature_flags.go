package config

// FeatureFlags holds runtime feature toggles. They gate optional surfaces
// of the service; core record keeping is never behind a flag.
type FeatureFlags struct {
	// EnableAITopics turns the lesson topic generation action into real
	// API calls. Off, the action answers with an unavailability message.
	EnableAITopics bool

	// EnableGradingPlugin allows loading the external grading calculator
	// from GRADING_PLUGIN_PATH. Off, the built-in formula is always used.
	EnableGradingPlugin bool
}

// LoadFeatureFlags loads feature flags from environment variables.
// Format: FEATURE_<NAME>=true|false.
func LoadFeatureFlags() *FeatureFlags {
	return &FeatureFlags{
		EnableAITopics:      getEnvBool("FEATURE_AI_TOPICS", false),
		EnableGradingPlugin: getEnvBool("FEATURE_GRADING_PLUGIN", true),
	}
}
