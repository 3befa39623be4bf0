package advisor

// Config holds advisor generation settings.
type Config struct {
	// MaxTokens caps each response. Default: 1024.
	MaxTokens int

	// Temperature for both narrative and plan requests. Default: 0.3.
	Temperature float64

	// MaxSkills bounds how many predictions and path steps enter a prompt.
	// Default: 8.
	MaxSkills int

	// Days is the length of a generated study plan. Default: 7.
	Days int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.3,
		MaxSkills:   8,
		Days:        7,
	}
}
