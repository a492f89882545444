package compositor

import "os"

type Config struct {
	// DebugBoxes draws box outlines and labels before the text. Development
	// aid only.
	DebugBoxes bool
}

// NewConfig reads from environment variables.
func NewConfig() Config {
	return Config{
		DebugBoxes: os.Getenv("COMPOSITOR_DEBUG_BOXES") == "true",
	}
}
