// Package buildfile reads build definitions written in HCL and registers their tasks.
package buildfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/kilnworks/kiln/internal/envfacts"
	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/pkg/log"
	"github.com/mitchellh/go-homedir"
)

// DefaultFilename is the build file looked up in the working directory.
const DefaultFilename = "build.hcl"

// Parser parses build files.
type Parser struct {
	*hclparse.Parser
	logger log.Logger
	facts  *envfacts.Facts
}

// NewParser returns a parser evaluating expressions against the given facts.
func NewParser(logger log.Logger, facts *envfacts.Facts) *Parser {
	if facts == nil {
		facts = envfacts.New(nil)
	}

	return &Parser{
		Parser: hclparse.NewParser(),
		logger: logger,
		facts:  facts,
	}
}

// ParseFromFile reads and decodes the build file at path.
func (parser *Parser) ParseFromFile(path string) (*BuildFile, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.New(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(BuildFileNotFoundError{Path: path})
		}

		return nil, errors.New(err)
	}

	return parser.ParseFromBytes(content, path)
}

// ParseFromString decodes the given build file content.
func (parser *Parser) ParseFromString(content, path string) (*BuildFile, error) {
	return parser.ParseFromBytes([]byte(content), path)
}

// ParseFromBytes decodes the given build file content. Files with a .json extension are read as HCL JSON.
func (parser *Parser) ParseFromBytes(content []byte, path string) (buildFile *BuildFile, err error) {
	// The HCL parser and cty conversions panic on some invalid input.
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.New(PanicWhileParsingError{RecoveredValue: recovered, Path: path})
		}
	}()

	var (
		file  *hcl.File
		diags hcl.Diagnostics
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		file, diags = parser.ParseJSON(content, path)
	default:
		file, diags = parser.ParseHCL(content, path)
	}

	if diags.HasErrors() {
		parser.logger.Debugf("Failed to parse HCL in file %s: %v", path, diags)
		return nil, errors.New(DiagnosticsError{Err: diags})
	}

	buildFile = &BuildFile{Path: path}

	if diags := gohcl.DecodeBody(file.Body, newEvalContext(parser.facts), buildFile); diags.HasErrors() {
		parser.logger.Debugf("Failed to decode file %s: %v", path, diags)
		return nil, errors.New(DiagnosticsError{Err: diags})
	}

	return buildFile, nil
}
