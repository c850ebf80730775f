package gateway

// Default model identities and agent instructions.
const (
	DefaultTextModel   = "deepseek/deepseek-r1-0528:free"
	DefaultVisionModel = "gemini-1.5-flash"

	DefaultTextInstructions = "You are a fashion design expert. Provide creative outfit suggestions, " +
		"style advice, and trend analysis. Consider user preferences, body type, and occasion. " +
		"Be encouraging and helpful."

	DefaultVisionInstructions = "Analyze fashion images. Describe clothing items, styles, colors, " +
		"and patterns. Suggest matching outfits, similar styles, or improvements."

	// DefaultImagePrompt is used by front ends when an image arrives without a prompt.
	DefaultImagePrompt = "Describe the clothing in this image and suggest matching outfits."
)

// Profile is one model identity with its generation settings.
type Profile struct {
	Model string

	// Instructions, when set, are sent as a leading system message.
	Instructions string

	Temperature *float64
	MaxTokens   *int
}

// Profiles holds the text-oriented and vision-oriented model identities.
// Both are reached through the same provider.
type Profiles struct {
	Text   Profile
	Vision Profile
}

// DefaultProfiles returns the stock designer and vision profiles.
func DefaultProfiles() Profiles {
	return Profiles{
		Text: Profile{
			Model:        DefaultTextModel,
			Instructions: DefaultTextInstructions,
			Temperature:  ptr(0.85),
			MaxTokens:    ptr(1024),
		},
		Vision: Profile{
			Model:        DefaultVisionModel,
			Instructions: DefaultVisionInstructions,
			Temperature:  ptr(0.3),
			MaxTokens:    ptr(1024),
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
