package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Explain  string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Store Errors (R001-R019)
	// ============================================

	"R001": {
		Category: CategoryStore,
		Message:  "Type mismatch on set",
		Explain:  "A record store can only be patched with a record, and a scalar or sequence store cannot receive a record patch.",
		DocURL:   "https://reworm.dev/docs/errors/R001",
	},
	"R002": {
		Category: CategoryStore,
		Message:  "Unknown store identifier",
		Explain:  "No store was created with this identifier. Reads treat the value as absent.",
		DocURL:   "https://reworm.dev/docs/errors/R002",
	},
	"R003": {
		Category: CategoryStore,
		Message:  "Invalid selector",
		Explain:  "The selector could not be built from the given path.",
		DocURL:   "https://reworm.dev/docs/errors/R003",
	},

	// ============================================
	// Listener Errors (R020-R039)
	// ============================================

	"R020": {
		Category: CategoryListener,
		Message:  "Listener panicked during broadcast",
		Explain:  "The panic was recovered and delivery continued with the next listener.",
		DocURL:   "https://reworm.dev/docs/errors/R020",
	},

	// ============================================
	// Value Errors (R040-R059)
	// ============================================

	"R040": {
		Category: CategoryValue,
		Message:  "Unsupported value",
		Explain:  "Store values must be plain data: scalars, maps with string keys, slices and structs.",
		DocURL:   "https://reworm.dev/docs/errors/R040",
	},
	"R041": {
		Category: CategoryValue,
		Message:  "Invalid JSON value",
		Explain:  "The payload could not be decoded into a store value.",
		DocURL:   "https://reworm.dev/docs/errors/R041",
	},

	// ============================================
	// Diagnostics (W001-W019)
	// ============================================

	"W001": {
		Category: CategoryDiagnostic,
		Message:  "Duplicate store identifier",
		Explain:  "A store with this identifier already existed. Its initial and live values were overwritten, and subscribers received the new value if it differed.",
		DocURL:   "https://reworm.dev/docs/errors/W001",
	},

	// ============================================
	// Configuration Errors (R120-R139)
	// ============================================

	"R120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Explain:  "The configuration file could not be parsed.",
		DocURL:   "https://reworm.dev/docs/errors/R120",
	},
	"R121": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Explain:  "No reworm.json was found in the project directory.",
		DocURL:   "https://reworm.dev/docs/errors/R121",
	},
	"R122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Explain:  "A configuration value is out of range or malformed.",
		DocURL:   "https://reworm.dev/docs/errors/R122",
	},

	// ============================================
	// CLI Errors (R140-R159)
	// ============================================

	"R140": {
		Category: CategoryCLI,
		Message:  "Replay failed",
		Explain:  "The replay script could not be read or one of its steps failed.",
		DocURL:   "https://reworm.dev/docs/errors/R140",
	},
	"R141": {
		Category: CategoryCLI,
		Message:  "Configuration file already exists",
		Explain:  "reworm init does not overwrite an existing reworm.json unless --force is given.",
		DocURL:   "https://reworm.dev/docs/errors/R141",
	},
	"R142": {
		Category: CategoryCLI,
		Message:  "Unknown error code",
		Explain:  "The code passed to reworm explain is not registered.",
		DocURL:   "https://reworm.dev/docs/errors/R142",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
