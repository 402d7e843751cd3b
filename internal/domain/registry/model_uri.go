package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// ModelURIScheme prefixes registry references such as models:/iris/Production.
const ModelURIScheme = "models:/"

// ModelRef is a parsed models:/ URI. Exactly one of Version, Stage, Alias or
// Latest is set.
type ModelRef struct {
	Name    string
	Version int
	Stage   Stage
	Alias   string
	Latest  bool
}

// ParseModelURI parses the four reference forms accepted by the registry:
//
//	models:/<name>/<version>
//	models:/<name>/<stage>
//	models:/<name>@<alias>
//	models:/<name>/latest
func ParseModelURI(uri string) (ModelRef, error) {
	rest, ok := strings.CutPrefix(uri, ModelURIScheme)
	if !ok {
		return ModelRef{}, fmt.Errorf("%w: %q is not a models:/ URI", ErrInvalidInput, uri)
	}

	if name, alias, found := strings.Cut(rest, "@"); found {
		if name == "" || strings.Contains(name, "/") || alias == "" {
			return ModelRef{}, fmt.Errorf("%w: malformed alias reference %q", ErrInvalidInput, uri)
		}
		return ModelRef{Name: name, Alias: alias}, nil
	}

	name, ref, found := strings.Cut(rest, "/")
	if !found || name == "" || ref == "" || strings.Contains(ref, "/") {
		return ModelRef{}, fmt.Errorf("%w: expected models:/<name>/<version|stage> or models:/<name>@<alias>, got %q", ErrInvalidInput, uri)
	}

	if strings.EqualFold(ref, ReservedAliasLatest) {
		return ModelRef{Name: name, Latest: true}, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 {
			return ModelRef{}, fmt.Errorf("%w: version must be positive in %q", ErrInvalidInput, uri)
		}
		return ModelRef{Name: name, Version: n}, nil
	}
	stage, err := ParseStage(ref)
	if err != nil {
		return ModelRef{}, err
	}
	return ModelRef{Name: name, Stage: stage}, nil
}

// String renders the reference back to its models:/ form.
func (r ModelRef) String() string {
	switch {
	case r.Alias != "":
		return ModelURIScheme + r.Name + "@" + r.Alias
	case r.Latest:
		return ModelURIScheme + r.Name + "/" + ReservedAliasLatest
	case r.Stage != "":
		return ModelURIScheme + r.Name + "/" + r.Stage.String()
	default:
		return ModelURIScheme + r.Name + "/" + strconv.Itoa(r.Version)
	}
}
