package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// ReservedAliasLatest always resolves to the highest version and cannot be bound.
const ReservedAliasLatest = "latest"

// ValidateAlias rejects empty, purely numeric, and reserved aliases.
// Numeric aliases would be ambiguous with version numbers in models:/ URIs.
func ValidateAlias(alias string) error {
	if strings.TrimSpace(alias) == "" {
		return fmt.Errorf("%w: alias must not be empty", ErrInvalidAlias)
	}
	if strings.EqualFold(alias, ReservedAliasLatest) {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidAlias, alias)
	}
	if _, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(alias), "v")); err == nil {
		return fmt.Errorf("%w: %q looks like a version number", ErrInvalidAlias, alias)
	}
	if len(alias) > 255 {
		return fmt.Errorf("%w: alias longer than 255 characters", ErrInvalidAlias)
	}
	return nil
}
