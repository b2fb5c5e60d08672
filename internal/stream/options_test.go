package stream

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestParse(t *testing.T) {
	test.That(t, ParseCommand(" Crawl"), test.ShouldEqual, CommandCrawl)
	test.That(t, ParseCommand("tile"), test.ShouldEqual, Command(""))
	test.That(t, ParseConverterKind("proj4"), test.ShouldEqual, ConverterProj4)
	test.That(t, ParseConverterKind(" ellipsoid "), test.ShouldEqual, ConverterEllipsoid)
	test.That(t, ParseConverterKind("utm"), test.ShouldEqual, ConverterKind(""))
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.yaml")
	config := `
source: https://example.com/cloud
converter: proj4
ramp: Spectral
dimension: Z
max_level: 7
timeout: 5s
export:
  output: /tmp/out
`
	test.That(t, os.WriteFile(path, []byte(config), 0o644), test.ShouldBeNil)

	opts := DefaultStreamOptions()
	test.That(t, LoadConfigFile(path, opts), test.ShouldBeNil)
	test.That(t, opts.Source, test.ShouldEqual, "https://example.com/cloud")
	test.That(t, opts.Converter, test.ShouldEqual, ConverterProj4)
	test.That(t, opts.RampName, test.ShouldEqual, "Spectral")
	test.That(t, opts.MaxLevel, test.ShouldEqual, uint32(7))
	test.That(t, opts.Timeout, test.ShouldEqual, 5*time.Second)
	test.That(t, opts.ExportOptions.Output, test.ShouldEqual, "/tmp/out")
	// untouched keys keep their defaults
	test.That(t, opts.Concurrency, test.ShouldEqual, 8)
	test.That(t, opts.Visible, test.ShouldBeTrue)
	test.That(t, opts.IsRemote(), test.ShouldBeTrue)

	test.That(t, LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), opts), test.ShouldNotBeNil)
}

func TestValidate(t *testing.T) {
	opts := DefaultStreamOptions()
	test.That(t, opts.Validate(), test.ShouldNotBeNil)

	opts.Source = "/data/cloud"
	test.That(t, opts.Validate(), test.ShouldBeNil)
	test.That(t, opts.IsRemote(), test.ShouldBeFalse)

	opts.RampName = "Blues"
	test.That(t, opts.Validate(), test.ShouldNotBeNil)
	opts.DimensionName = "Z"
	test.That(t, opts.Validate(), test.ShouldBeNil)

	opts.Command = CommandExport
	test.That(t, opts.Validate(), test.ShouldNotBeNil)
	opts.ExportOptions = &ExportOptions{Output: "out"}
	test.That(t, opts.Validate(), test.ShouldBeNil)

	copied := opts.Copy()
	copied.ExportOptions.Output = "elsewhere"
	test.That(t, opts.ExportOptions.Output, test.ShouldEqual, "out")
}
