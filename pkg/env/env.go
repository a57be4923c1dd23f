// Package env provides typed lookups of environment variables over the process environment or any
// other source, such as a fixed map in tests.
package env

import (
	"os"
	"strconv"
	"strings"
)

// LookupFunc looks up an environment variable the same way `os.LookupEnv` does.
type LookupFunc func(key string) (string, bool)

// OS looks up variables in the environment of the current process.
var OS LookupFunc = os.LookupEnv

// FromMap returns a LookupFunc backed by the given map.
func FromMap(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		val, ok := vars[key]
		return val, ok
	}
}

// Lookup behaves the same as the underlying lookup, but additionally trims spaces in the value.
// A variable set to an empty string is reported as not present.
func (lookup LookupFunc) Lookup(key string) (string, bool) {
	if key == "" || lookup == nil {
		return "", false
	}

	val, ok := lookup(key)
	val = strings.TrimSpace(val)

	return val, ok && val != ""
}

// Bool returns the value converted to boolean type, or the fallback if the variable is not present or invalid.
func (lookup LookupFunc) Bool(key string, fallback bool) bool {
	if strVal, ok := lookup.Lookup(key); ok {
		if val, err := strconv.ParseBool(strVal); err == nil {
			return val
		}
	}

	return fallback
}

// Int returns the value converted to integer type, or the fallback if the variable is not present or invalid.
func (lookup LookupFunc) Int(key string, fallback int) int {
	if strVal, ok := lookup.Lookup(key); ok {
		if val, err := strconv.Atoi(strVal); err == nil {
			return val
		}
	}

	return fallback
}

// String returns the value, or the fallback if the variable is not present.
func (lookup LookupFunc) String(key string, fallback string) string {
	if val, ok := lookup.Lookup(key); ok {
		return val
	}

	return fallback
}

// Has reports whether the variable is present with a non-empty value.
func (lookup LookupFunc) Has(key string) bool {
	_, ok := lookup.Lookup(key)
	return ok
}

// GetBoolEnv returns the environment value converted to boolean type, or returns the specified fallback value if the variable with the given key is not present.
func GetBoolEnv(key string, fallback bool) bool {
	return OS.Bool(key, fallback)
}

// GetIntEnv returns the environment value converted to integer type, or returns the specified fallback value if the variable with the given key is not present.
func GetIntEnv(key string, fallback int) int {
	return OS.Int(key, fallback)
}

// GetStringEnv returns an environment variable by the given key, or returns the given fallback value if the env variable is not present.
func GetStringEnv(key string, fallback string) string {
	return OS.String(key, fallback)
}

// LookupEnv behaves the same as `os.LookupEnv`, but additionally trims spaces in the value.
func LookupEnv(key string) (string, bool) {
	return OS.Lookup(key)
}

// Parse converts a list of `KEY=value` pairs, as returned by `os.Environ`, to a map.
// Entries without `=` are ignored; entries starting with `=` (Windows drive variables) are kept intact.
func Parse(environ []string) map[string]string {
	vars := make(map[string]string, len(environ))

	for _, entry := range environ {
		idx := strings.Index(entry[min(1, len(entry)):], "=")
		if idx < 0 {
			continue
		}

		idx += min(1, len(entry))
		vars[entry[:idx]] = entry[idx+1:]
	}

	return vars
}
