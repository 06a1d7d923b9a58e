package tui

// Color constants for the sensorset TUI theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Labels, counts
	ColorSecondaryText = "#B1B8C7" // Paths, secondary details
	ColorDisabledText  = "#6D7383" // Skipped classes, notices

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Header
	ColorAccentBright = "#A78BFA" // Spinner, current class

	// State Colors
	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)
