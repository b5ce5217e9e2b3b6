// Package schema checks the shape of JSON records before they are decoded.
package schema

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// eventIDFormatChecker accepts UUIDs.
type eventIDFormatChecker struct{}

func (c eventIDFormatChecker) IsFormat(input interface{}) bool {
	if s, ok := input.(string); ok {
		_, err := uuid.Parse(s)
		return err == nil
	}
	return false
}

// recordNameFormatChecker accepts any name that is not blank.
type recordNameFormatChecker struct{}

func (c recordNameFormatChecker) IsFormat(input interface{}) bool {
	if s, ok := input.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

var registerOnce sync.Once

// RegisterCustomFormats registers event_id and record_name. Safe to call
// more than once.
func RegisterCustomFormats() {
	registerOnce.Do(func() {
		gojsonschema.FormatCheckers.Add("event_id", eventIDFormatChecker{})
		gojsonschema.FormatCheckers.Add("record_name", recordNameFormatChecker{})
	})
}
