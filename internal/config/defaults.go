package config

const (
	DefaultDisplayCommand = "phoebus"
	DefaultContextDir     = "deploy"
	DefaultTagPrefix      = "tomoscan"
	DefaultRuntimeEngine  = "auto"
	DefaultExportDir      = "."
	DefaultCompression    = "gzip"
	DefaultLogLevel       = "info"

	// OverviewScreen is the built-in screen every install carries
	OverviewScreen = "overview"
	overviewFile   = "overview.bob"
)

// DefaultOverviewMacros returns the macros the overview screen is
// launched with. Order matters: the display tool receives them exactly
// as listed here.
func DefaultOverviewMacros() []Macro {
	return []Macro{
		{Name: "P", Value: "TA1:CT_CAM:"},
		{Name: "R", Value: "cam1:"},
		{Name: "M", Value: "TA1:SMC100:"},
		{Name: "A", Value: "m1"},
		{Name: "app", Value: "display_runtime"},
	}
}

// DefaultScreens returns the built-in screen catalog.
func DefaultScreens() map[string]ScreenConfig {
	return map[string]ScreenConfig{
		OverviewScreen: {
			File:   overviewFile,
			Macros: DefaultOverviewMacros(),
		},
	}
}

// DefaultConfig returns a Config with all default values applied.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Command: DefaultDisplayCommand,
			Screens: DefaultScreens(),
		},
		Images: ImagesConfig{
			ContextDir: DefaultContextDir,
			TagPrefix:  DefaultTagPrefix,
		},
		Runtime: RuntimeConfig{
			Engine: DefaultRuntimeEngine,
		},
		Export: ExportConfig{
			Dir:         DefaultExportDir,
			Compression: DefaultCompression,
		},
		LogLevel: DefaultLogLevel,
	}
}
