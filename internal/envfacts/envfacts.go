// Package envfacts answers questions about the environment a build runs in: which CI service is
// running it, if any, and which platform it runs on. Criteria and build file conditions query it.
package envfacts

import (
	"runtime"
	"strings"

	"github.com/kilnworks/kiln/pkg/env"
)

// Provider identifies a CI service.
type Provider string

const (
	ProviderNone           Provider = ""
	ProviderGitHubActions  Provider = "github-actions"
	ProviderGitLabCI       Provider = "gitlab-ci"
	ProviderJenkins        Provider = "jenkins"
	ProviderAppVeyor       Provider = "appveyor"
	ProviderTeamCity       Provider = "teamcity"
	ProviderMyGet          Provider = "myget"
	ProviderAzurePipelines Provider = "azure-pipelines"
	ProviderTravisCI       Provider = "travis-ci"
	ProviderBitbucket      Provider = "bitbucket-pipelines"
	// ProviderGeneric is reported when `CI` is set but no known service is recognized.
	ProviderGeneric Provider = "generic"
)

// String implements fmt.Stringer.
func (provider Provider) String() string {
	if provider == ProviderNone {
		return "local"
	}

	return string(provider)
}

type detector struct {
	provider Provider
	detect   func(lookup env.LookupFunc) bool
}

// detectors are evaluated in order, the first match wins.
var detectors = []detector{
	{ProviderGitHubActions, func(lookup env.LookupFunc) bool { return lookup.Bool("GITHUB_ACTIONS", false) }},
	{ProviderGitLabCI, func(lookup env.LookupFunc) bool { return lookup.Has("GITLAB_CI") }},
	{ProviderAppVeyor, func(lookup env.LookupFunc) bool { return lookup.Bool("APPVEYOR", false) }},
	{ProviderTeamCity, func(lookup env.LookupFunc) bool { return lookup.Has("TEAMCITY_VERSION") }},
	{ProviderMyGet, func(lookup env.LookupFunc) bool { return strings.EqualFold(lookup.String("BuildRunner", ""), "MyGet") }},
	{ProviderAzurePipelines, func(lookup env.LookupFunc) bool { return lookup.Bool("TF_BUILD", false) }},
	{ProviderTravisCI, func(lookup env.LookupFunc) bool { return lookup.Bool("TRAVIS", false) }},
	{ProviderBitbucket, func(lookup env.LookupFunc) bool { return lookup.Has("BITBUCKET_COMMIT") }},
	{ProviderJenkins, func(lookup env.LookupFunc) bool { return lookup.Has("JENKINS_URL") }},
	{ProviderGeneric, func(lookup env.LookupFunc) bool { return lookup.Bool("CI", false) }},
}

// Facts describes the environment of the current build.
type Facts struct {
	lookup   env.LookupFunc
	provider Provider
	goos     string
	goarch   string
}

// Option customizes Facts.
type Option func(*Facts)

// WithPlatform overrides the detected operating system and architecture.
func WithPlatform(goos, goarch string) Option {
	return func(facts *Facts) {
		facts.goos = goos
		facts.goarch = goarch
	}
}

// New detects facts from the given lookup. A nil lookup uses the process environment.
func New(lookup env.LookupFunc, opts ...Option) *Facts {
	if lookup == nil {
		lookup = env.OS
	}

	facts := &Facts{
		lookup: lookup,
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
	}

	for _, opt := range opts {
		opt(facts)
	}

	for _, detector := range detectors {
		if detector.detect(lookup) {
			facts.provider = detector.provider
			break
		}
	}

	return facts
}

// Provider returns the CI service running the build, or ProviderNone for a local build.
func (facts *Facts) Provider() Provider {
	return facts.provider
}

// IsCI returns true if the build runs on a CI service.
func (facts *Facts) IsCI() bool {
	return facts.provider != ProviderNone
}

// IsLocal returns true if the build runs on a developer machine.
func (facts *Facts) IsLocal() bool {
	return !facts.IsCI()
}

// OS returns the operating system, in `runtime.GOOS` notation.
func (facts *Facts) OS() string {
	return facts.goos
}

// Arch returns the architecture, in `runtime.GOARCH` notation.
func (facts *Facts) Arch() string {
	return facts.goarch
}

// IsWindows returns true when running on Windows.
func (facts *Facts) IsWindows() bool {
	return facts.goos == "windows"
}

// Env returns the trimmed value of an environment variable.
func (facts *Facts) Env(key string) (string, bool) {
	return facts.lookup.Lookup(key)
}

// EnvBool returns an environment variable as a boolean, or fallback.
func (facts *Facts) EnvBool(key string, fallback bool) bool {
	return facts.lookup.Bool(key, fallback)
}
