package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	formatJSONStringConstant             = "json"
	formatCompactStringConstant          = "compact"
	formatTextStringConstant             = "text"
	unsupportedFormatTemplateConstant    = "unsupported output format: %s"
	jsonIndentConstant                   = "  "
	jsonIndentPrefixConstant             = ""
	fallbackEntryTemplateConstant        = "%s: %s"
	fallbackEntrySeparatorConstant       = "\n"
	fallbackListSeparatorConstant        = ", "
	renderEncodingErrorTemplateConstant  = "failed to encode value: %w"
	fallbackConversionErrorTemplateConst = "failed to convert value for text rendering: %w"
	emptyValuePlaceholderConstant        = "(empty)"
)

// Format enumerates supported rendering formats.
type Format string

// Exported format constants for reuse across commands.
const (
	FormatJSON    Format = Format(formatJSONStringConstant)
	FormatCompact Format = Format(formatCompactStringConstant)
	FormatText    Format = Format(formatTextStringConstant)
)

// SupportedFormats lists the accepted format names for flag usage strings.
var SupportedFormats = []string{formatJSONStringConstant, formatCompactStringConstant, formatTextStringConstant}

// ParseFormat validates a format name supplied through flags or configuration.
func ParseFormat(value string) (Format, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	switch Format(normalizedValue) {
	case FormatJSON, FormatCompact, FormatText:
		return Format(normalizedValue), nil
	}
	return Format(""), fmt.Errorf(unsupportedFormatTemplateConstant, value)
}

// TextRenderer is implemented by result types that carry their own
// human-readable summary.
type TextRenderer interface {
	RenderText() string
}

// Formatter renders values in a selected format.
type Formatter struct{}

// NewFormatter constructs a Formatter instance.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Render produces the string representation of value in the requested format.
func (formatter *Formatter) Render(value any, format Format) (string, error) {
	switch format {
	case FormatJSON:
		encodedValue, encodingError := json.MarshalIndent(value, jsonIndentPrefixConstant, jsonIndentConstant)
		if encodingError != nil {
			return "", fmt.Errorf(renderEncodingErrorTemplateConstant, encodingError)
		}
		return string(encodedValue), nil
	case FormatCompact:
		encodedValue, encodingError := json.Marshal(value)
		if encodingError != nil {
			return "", fmt.Errorf(renderEncodingErrorTemplateConstant, encodingError)
		}
		return string(encodedValue), nil
	case FormatText:
		return formatter.renderText(value)
	}
	return "", fmt.Errorf(unsupportedFormatTemplateConstant, format)
}

func (formatter *Formatter) renderText(value any) (string, error) {
	if textRenderer, providesSummary := value.(TextRenderer); providesSummary {
		return textRenderer.RenderText(), nil
	}
	return renderFallback(value)
}

// renderFallback flattens any remaining value into sorted key/value lines by
// round-tripping it through its JSON representation.
func renderFallback(value any) (string, error) {
	encodedValue, encodingError := json.Marshal(value)
	if encodingError != nil {
		return "", fmt.Errorf(fallbackConversionErrorTemplateConst, encodingError)
	}

	var genericValue any
	if decodingError := json.Unmarshal(encodedValue, &genericValue); decodingError != nil {
		return "", fmt.Errorf(fallbackConversionErrorTemplateConst, decodingError)
	}

	switch typedValue := genericValue.(type) {
	case map[string]any:
		return renderFallbackMapping(typedValue), nil
	case []any:
		return renderFallbackScalar(typedValue), nil
	default:
		return renderFallbackScalar(typedValue), nil
	}
}

func renderFallbackMapping(mapping map[string]any) string {
	if len(mapping) == 0 {
		return emptyValuePlaceholderConstant
	}

	entryKeys := make([]string, 0, len(mapping))
	for entryKey := range mapping {
		entryKeys = append(entryKeys, entryKey)
	}
	sort.Strings(entryKeys)

	entryLines := make([]string, 0, len(entryKeys))
	for _, entryKey := range entryKeys {
		entryLines = append(entryLines, fmt.Sprintf(fallbackEntryTemplateConstant, entryKey, renderFallbackScalar(mapping[entryKey])))
	}

	return strings.Join(entryLines, fallbackEntrySeparatorConstant)
}

func renderFallbackScalar(value any) string {
	switch typedValue := value.(type) {
	case nil:
		return emptyValuePlaceholderConstant
	case string:
		return typedValue
	case []any:
		elementValues := make([]string, 0, len(typedValue))
		for _, elementValue := range typedValue {
			elementValues = append(elementValues, renderFallbackScalar(elementValue))
		}
		return strings.Join(elementValues, fallbackListSeparatorConstant)
	case map[string]any:
		encodedValue, encodingError := json.Marshal(typedValue)
		if encodingError != nil {
			return fmt.Sprint(typedValue)
		}
		return string(encodedValue)
	default:
		return fmt.Sprint(typedValue)
	}
}
