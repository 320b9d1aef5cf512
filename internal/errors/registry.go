package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	"R001": {
		Category: CategoryRoute,
		Message:  "Invalid route pattern",
		Detail:   "A route pattern could not be compiled. Parameters need a name, catch-alls must come last and typed parameters must use int, uint, uuid or string.",
	},
	"R002": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No isorouter.json, isorouter.yaml or isorouter.yml was found.",
	},
	"R003": {
		Category: CategoryConfig,
		Message:  "Config parse error",
		Detail:   "The route table could not be decoded.",
	},
	"R004": {
		Category: CategoryConfig,
		Message:  "Invalid route action",
		Detail:   "A route must have a pattern, and its delay must be a valid non-negative duration.",
	},
	"R005": {
		Category: CategoryRemote,
		Message:  "Remote config fetch failed",
		Detail:   "The route table could not be read from object storage.",
	},
	"R006": {
		Category: CategoryRuntime,
		Message:  "Route resolution timed out",
		Detail:   "The handler did not report an outcome before the resolve timeout.",
	},
	"R007": {
		Category: CategoryConfig,
		Message:  "Invalid server settings",
		Detail:   "A server setting is out of range or could not be parsed.",
	},
	"R008": {
		Category: CategoryCLI,
		Message:  "Missing argument",
		Detail:   "The command needs more arguments.",
	},
}

// GetAllCodes returns every registered code in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a template. It is meant for init-time use.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
