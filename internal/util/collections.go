package util

import (
	"slices"
	"strings"
)

// ListContainsElement returns true if the given list contains the given element.
func ListContainsElement[S ~[]E, E comparable](list S, element E) bool {
	return slices.Contains(list, element)
}

// ListContainsFold returns true if the list contains the given string, compared case-insensitively.
func ListContainsFold(list []string, element string) bool {
	return slices.ContainsFunc(list, func(item string) bool {
		return strings.EqualFold(item, element)
	})
}
