package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ecopia-map/cesium_stream/internal/stream"
	"github.com/ecopia-map/cesium_stream/tools"
	"go.viam.com/test"
)

func TestLicenseHeaderNamesThisProgram(t *testing.T) {
	data, err := os.ReadFile("main.go")
	test.That(t, err, test.ShouldBeNil)
	header := string(data[:strings.Index(string(data), "*/")])
	test.That(t, header, test.ShouldContainSubstring, "https://github.com/ecopia-map/cesium_stream")
	test.That(t, header, test.ShouldNotContainSubstring, "gocesiumtiler")
}

func TestBuildOptionsFlagsOverrideConfig(t *testing.T) {
	config := filepath.Join(t.TempDir(), "stream.yaml")
	yaml := "source: /data/mirror\nmax_level: 7\nconcurrency: 2\ntimeout: 10s\nexport:\n  output: /tmp/from-config\n"
	test.That(t, os.WriteFile(config, []byte(yaml), 0o644), test.ShouldBeNil)

	flags := tools.ParseFlagsForCommand(tools.CommandExport, []string{"-config", config, "-l", "3", "-o", "/tmp/from-flags"})
	opts, err := buildOptions(stream.CommandExport, &flags)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, opts.Command, test.ShouldEqual, stream.CommandExport)
	test.That(t, opts.Source, test.ShouldEqual, "/data/mirror")
	test.That(t, opts.MaxLevel, test.ShouldEqual, uint32(3))
	test.That(t, opts.Concurrency, test.ShouldEqual, 2)
	test.That(t, opts.Timeout, test.ShouldEqual, 10*time.Second)
	test.That(t, opts.ExportOptions.Output, test.ShouldEqual, "/tmp/from-flags")
	// untouched defaults
	test.That(t, opts.Converter, test.ShouldEqual, stream.ConverterEllipsoid)
	test.That(t, opts.CacheSize, test.ShouldEqual, 4096)
}

func TestBuildOptionsValidates(t *testing.T) {
	flags := tools.ParseFlagsForCommand(tools.CommandExport, []string{"-i", "/data/mirror"})
	_, err := buildOptions(stream.CommandExport, &flags)
	test.That(t, err, test.ShouldNotBeNil)

	flags = tools.ParseFlagsForCommand(tools.CommandCrawl, []string{"-i", "/data/mirror", "-max-level", "-1"})
	_, err = buildOptions(stream.CommandCrawl, &flags)
	test.That(t, err, test.ShouldNotBeNil)
}
