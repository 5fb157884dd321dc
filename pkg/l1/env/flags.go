package env

import (
	"os"

	"github.com/robotalks/picoborg.go/pkg/l1"
)

// Lookup overrides *val with the environment variable key when it is set,
// even to an empty value.
func Lookup(key string, val *string) {
	if s, ok := os.LookupEnv(key); ok {
		*val = s
	}
}

// RefValue is a flag.Value parsing TYPE/ID into a ControllerRef.
type RefValue struct {
	Ref *l1.ControllerRef
}

// String implements flag.Value.
func (v RefValue) String() string {
	if v.Ref == nil || !v.Ref.IsValid() {
		return ""
	}
	return v.Ref.Name()
}

// Set implements flag.Value.
func (v RefValue) Set(s string) error {
	ref, err := l1.ParseControllerRef(s)
	if err != nil {
		return err
	}
	*v.Ref = ref
	return nil
}
