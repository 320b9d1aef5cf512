package pathmatch

import (
	"fmt"
	"regexp"
	"strconv"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func knownType(paramType string) bool {
	switch paramType {
	case "string", "int", "int64", "uint", "uint64", "uuid":
		return true
	}
	return false
}

// validateParam reports whether value satisfies paramType.
func validateParam(value, paramType string) error {
	switch paramType {
	case "int", "int64":
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
	case "uint", "uint64":
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
	case "uuid":
		if !uuidRegex.MatchString(value) {
			return fmt.Errorf("invalid UUID: %s", value)
		}
	}
	return nil
}
