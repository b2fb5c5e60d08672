package stream

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Command string
type ConverterKind string

const (
	CommandInfo   Command = "info"
	CommandCrawl  Command = "crawl"
	CommandExport Command = "export"
)

const (
	// Pure go WGS84 ellipsoid math, no native dependency
	ConverterEllipsoid ConverterKind = "ELLIPSOID"
	// PROJ backed conversion, requires libproj at runtime
	ConverterProj4 ConverterKind = "PROJ4"
)

func ParseCommand(value string) Command {
	switch Command(strings.ToLower(strings.TrimSpace(value))) {
	case CommandInfo:
		return CommandInfo
	case CommandCrawl:
		return CommandCrawl
	case CommandExport:
		return CommandExport
	}
	return ""
}

func (k ConverterKind) String() string {
	return string(k)
}

func ParseConverterKind(value string) ConverterKind {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	if normalizedValue == "ELLIPSOID" {
		return ConverterEllipsoid
	} else if normalizedValue == "PROJ4" {
		return ConverterProj4
	}
	return ""
}

// Contains the options needed to stream a point cloud source
type StreamOptions struct {
	Source        string        `yaml:"source"`     // Source url, or local mirror folder
	Converter     ConverterKind `yaml:"converter"`  // Geographic to cartesian converter
	ZOffset       float64       `yaml:"zoffset"`    // Z Offset in meters applied to heights before conversion
	Visible       bool          `yaml:"visible"`    // Derive render buffers for decoded tiles
	RampName      string        `yaml:"ramp"`       // Colorization ramp, empty for none
	DimensionName string        `yaml:"dimension"`  // Colorization dimension, empty for none
	CacheSize     int           `yaml:"cache_size"` // Max number of cached tiles, <= 0 for unbounded
	Concurrency   int           `yaml:"concurrency"`
	MaxLevel      uint32        `yaml:"max_level"` // Deepest quadtree level crawled
	Timeout       time.Duration `yaml:"timeout"`   // Per request timeout of the http transport

	Command       Command        `yaml:"-"`
	ExportOptions *ExportOptions `yaml:"export"`
}

type ExportOptions struct {
	Output string `yaml:"output"` // Output folder
}

func DefaultStreamOptions() *StreamOptions {
	return &StreamOptions{
		Converter:   ConverterEllipsoid,
		Visible:     true,
		CacheSize:   4096,
		Concurrency: 8,
		MaxLevel:    4,
		Timeout:     30 * time.Second,
	}
}

func (opt *StreamOptions) Copy() *StreamOptions {
	newOpt := *opt
	if opt.ExportOptions != nil {
		exportOpt := *opt.ExportOptions
		newOpt.ExportOptions = &exportOpt
	}
	return &newOpt
}

// Validate checks the options needed by the selected command
func (opt *StreamOptions) Validate() error {
	if opt.Source == "" {
		return errors.New("a source url or folder is required")
	}
	if opt.Converter == "" {
		return errors.New("converter must be one of ELLIPSOID, PROJ4")
	}
	if (opt.RampName == "") != (opt.DimensionName == "") {
		return errors.New("ramp and dimension must be given together")
	}
	if opt.Concurrency <= 0 {
		return errors.Errorf("concurrency must be positive, got %d", opt.Concurrency)
	}
	if opt.Command == CommandExport && (opt.ExportOptions == nil || opt.ExportOptions.Output == "") {
		return errors.New("export requires an output folder")
	}
	return nil
}

// LoadConfigFile overlays the yaml configuration at path onto opts. Keys missing from the file
// keep their current value.
func LoadConfigFile(path string, opts *StreamOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	opts.Converter = ParseConverterKind(string(opts.Converter))
	return nil
}

// IsRemote reports whether the source must be fetched over http
func (opt *StreamOptions) IsRemote() bool {
	return strings.HasPrefix(opt.Source, "http://") || strings.HasPrefix(opt.Source, "https://")
}
