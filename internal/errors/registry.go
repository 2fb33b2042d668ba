package errors

// Registered error codes.
const (
	CodeUnknownNodeType = "W001"
	CodeMountUnderSelf  = "W002"
	CodeNoContainer     = "W003"
	CodeNoHost          = "W004"
	CodeUnmounted       = "W005"
	CodeRenderFailed    = "W020"
	CodeInvalidConfig   = "W040"
	CodeConfigRead      = "W041"
	CodeTransport       = "W060"
	CodeInvalidDocument = "W080"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Structural Errors (W001-W019)
	// ============================================

	CodeUnknownNodeType: {
		Category:   CategoryStructural,
		Message:    "Unknown node type",
		Suggestion: "Children must be nodes, strings, numbers, reactive values or platform nodes.",
	},
	CodeMountUnderSelf: {
		Category: CategoryStructural,
		Message:  "Node mounted under itself",
	},
	CodeNoContainer: {
		Category:   CategoryStructural,
		Message:    "Context write without container",
		Suggestion: "Mark an ancestor as a container with SetContainer(true), or write from inside a component.",
	},
	CodeNoHost: {
		Category:   CategoryStructural,
		Message:    "Node has no host",
		Suggestion: "Attach the node under a root created by Host.Root or Host.Render.",
	},
	CodeUnmounted: {
		Category: CategoryStructural,
		Message:  "Node used after unmount",
	},

	// ============================================
	// Render Errors (W020-W039)
	// ============================================

	CodeRenderFailed: {
		Category: CategoryRender,
		Message:  "Component render failed",
	},

	// ============================================
	// Config Errors (W040-W059)
	// ============================================

	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeConfigRead: {
		Category: CategoryConfig,
		Message:  "Cannot read configuration file",
	},

	// ============================================
	// Transport Errors (W060-W079)
	// ============================================

	CodeTransport: {
		Category: CategoryTransport,
		Message:  "Devtools transport failure",
	},

	// ============================================
	// Document Errors (W080-W099)
	// ============================================

	CodeInvalidDocument: {
		Category:   CategoryDocument,
		Message:    "Invalid declared tree document",
		Suggestion: "Every node needs exactly one of tag or text.",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
