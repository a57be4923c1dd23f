package errors

// ConfigurationError is implemented by errors caused by an invalid build definition or an invalid
// use of the process API: duplicate tasks, unresolved dependencies, dependency cycles, invalid event
// subscriptions. They are detected before anything runs and are never retried.
type ConfigurationError interface {
	error
	ConfigurationError()
}

// IsConfigurationError returns true if any error in the tree of err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	for _, err := range UnwrapErrors(err) {
		if _, ok := err.(ConfigurationError); ok {
			return true
		}
	}

	return false
}
