package tools

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestParseFlagsForCommand(t *testing.T) {
	flags := ParseFlagsForCommand(CommandExport, []string{"-i", "https://host/cloud", "-o", "/tmp/out", "-ramp", "Spectral", "-d", "Z", "-l", "6", "-timeout", "5s"})

	test.That(t, *flags.Source, test.ShouldEqual, "https://host/cloud")
	test.That(t, *flags.Output, test.ShouldEqual, "/tmp/out")
	test.That(t, *flags.Ramp, test.ShouldEqual, "Spectral")
	test.That(t, *flags.Dimension, test.ShouldEqual, "Z")
	test.That(t, *flags.MaxLevel, test.ShouldEqual, 6)
	test.That(t, *flags.Timeout, test.ShouldEqual, 5*time.Second)
	test.That(t, *flags.Concurrency, test.ShouldEqual, 8)
	test.That(t, *flags.Visible, test.ShouldBeTrue)

	// shorthands are reported under their long name
	test.That(t, flags.Set["source"], test.ShouldBeTrue)
	test.That(t, flags.Set["max-level"], test.ShouldBeTrue)
	test.That(t, flags.Set["dimension"], test.ShouldBeTrue)
	test.That(t, flags.Set["concurrency"], test.ShouldBeFalse)

	info := ParseFlagsForCommand(CommandInfo, []string{"-source", "/data"})
	test.That(t, *info.Output, test.ShouldEqual, "")
	test.That(t, info.Set, test.ShouldResemble, map[string]bool{"source": true})
}

func TestLogOutput(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
		EnableLogger()
		EnableLoggerTimestamp()
	}()

	DisableLoggerTimestamp()
	LogOutput("exported", 3, "tiles")
	test.That(t, buf.String(), test.ShouldEqual, "exported 3 tiles\n")

	buf.Reset()
	DisableLogger()
	LogOutput("hidden")
	test.That(t, buf.Len(), test.ShouldEqual, 0)
}

func TestCreateDirectoryIfDoesNotExist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	test.That(t, CreateDirectoryIfDoesNotExist(dir), test.ShouldBeNil)
	info, err := os.Stat(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.IsDir(), test.ShouldBeTrue)
	test.That(t, CreateDirectoryIfDoesNotExist(dir), test.ShouldBeNil)

	test.That(t, FmtJSONString(map[string]int{"a": 1}), test.ShouldEqual, `{"a":1}`)
}
