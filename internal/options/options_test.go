package options_test

import (
	"path/filepath"
	"testing"

	"github.com/kilnworks/kiln/internal/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	testCases := []struct {
		name              string
		buildFile         string
		reportFile        string
		reportFormat      string
		expectedBuildFile string
		expectedErr       bool
	}{
		{name: "defaults", expectedBuildFile: filepath.Join(dir, "build.hcl")},
		{name: "relative build file", buildFile: "ci/build.hcl", expectedBuildFile: filepath.Join(dir, "ci", "build.hcl")},
		{name: "absolute build file", buildFile: filepath.Join(dir, "x.hcl"), expectedBuildFile: filepath.Join(dir, "x.hcl")},
		{name: "report format from extension", reportFile: "report.json", expectedBuildFile: filepath.Join(dir, "build.hcl")},
		{name: "invalid report format", reportFile: "report.json", reportFormat: "xml", expectedErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opts := options.NewOptions()
			opts.WorkingDir = dir
			opts.BuildFile = tc.buildFile
			opts.ReportFile = tc.reportFile
			opts.ReportFormat = tc.reportFormat

			err := opts.Normalize()
			if tc.expectedErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, dir, opts.WorkingDir)
			assert.Equal(t, tc.expectedBuildFile, opts.BuildFile)
		})
	}
}

func TestTargetOr(t *testing.T) {
	t.Parallel()

	opts := options.NewOptions()
	assert.Equal(t, options.DefaultTarget, opts.TargetOr(""))
	assert.Equal(t, "package", opts.TargetOr("package"))

	opts.Target = "test"
	assert.Equal(t, "test", opts.TargetOr("package"))
}
