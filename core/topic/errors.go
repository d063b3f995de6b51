package topic

import "fmt"

// MissingPlaceholderError reports a custom template lacking a required
// placeholder.
type MissingPlaceholderError struct {
	Placeholder string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("topic structure is missing the {%s} placeholder", e.Placeholder)
}

// InvalidPlaceholderError reports an unrecognized {...} token in a custom
// template.
type InvalidPlaceholderError struct {
	Token string
}

func (e *InvalidPlaceholderError) Error() string {
	return fmt.Sprintf("topic structure contains unknown placeholder %s", e.Token)
}

// InvalidFormatError reports illegal path syntax in a prefix or template.
type InvalidFormatError struct {
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return "invalid topic structure: " + e.Reason
}
