package tools

import (
	"flag"
	"time"

	"github.com/golang/glog"
)

const (
	CommandInfo   = "info"
	CommandCrawl  = "crawl"
	CommandExport = "export"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type StreamFlags struct {
	Source      *string        `json:"source"`
	Config      *string        `json:"config"`
	Converter   *string        `json:"converter"`
	ZOffset     *float64       `json:"zoffset"`
	Visible     *bool          `json:"visible"`
	Ramp        *string        `json:"ramp"`
	Dimension   *string        `json:"dimension"`
	MaxLevel    *int           `json:"max_level"`
	Concurrency *int           `json:"concurrency"`
	CacheSize   *int           `json:"cache_size"`
	Timeout     *time.Duration `json:"timeout"`
}

type FlagsForCommand struct {
	StreamFlags
	Output       *string
	Silent       *bool
	LogTimestamp *bool
	Help         *bool
	Version      *bool

	// names of the flags given on the command line, shorthands resolved to their long name
	Set map[string]bool
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of cesium_stream.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

// ParseFlagsForCommand parses the flags of the info, crawl and export subcommands. The output
// flag is only defined for export.
func ParseFlagsForCommand(command string, args []string) FlagsForCommand {
	glog.V(1).Info(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-"+command, flag.ExitOnError)
	shorthands := map[string]string{}

	source := defineStringFlagCommand(flagCommand, shorthands, "source", "i", "", "Specifies the source url or local mirror folder.")
	config := defineStringFlagCommand(flagCommand, shorthands, "config", "c", "", "Yaml configuration file. Flags given on the command line take precedence.")
	converter := defineStringFlagCommand(flagCommand, shorthands, "converter", "", "ELLIPSOID", "Geographic to cartesian converter, ELLIPSOID or PROJ4.")
	zOffset := defineFloat64FlagCommand(flagCommand, shorthands, "zoffset", "z", 0, "Vertical offset to apply to points, in meters.")
	visible := defineBoolFlagCommand(flagCommand, shorthands, "visible", "", true, "Derive cartesian positions and colors for decoded tiles.")
	ramp := defineStringFlagCommand(flagCommand, shorthands, "ramp", "r", "", "Color ramp used to colorize points, e.g. Spectral.")
	dimension := defineStringFlagCommand(flagCommand, shorthands, "dimension", "d", "", "Dimension driving the colorization, e.g. Intensity.")
	maxLevel := defineIntFlagCommand(flagCommand, shorthands, "max-level", "l", 4, "Deepest quadtree level to crawl.")
	concurrency := defineIntFlagCommand(flagCommand, shorthands, "concurrency", "n", 8, "Max number of tiles loaded at once.")
	cacheSize := defineIntFlagCommand(flagCommand, shorthands, "cache-size", "", 4096, "Max number of cached tiles, 0 for unbounded.")
	timeout := defineDurationFlagCommand(flagCommand, shorthands, "timeout", "", 30*time.Second, "Timeout of a single http request.")

	var output *string
	if command == CommandExport {
		output = defineStringFlagCommand(flagCommand, shorthands, "output", "o", "", "Specifies the output folder where to write the exported tiles.")
	} else {
		output = new(string)
	}

	silent := defineBoolFlagCommand(flagCommand, shorthands, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, shorthands, "timestamp", "t", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, shorthands, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, shorthands, "version", "v", false, "Displays the version of cesium_stream.")

	flagCommand.Parse(args)

	set := map[string]bool{}
	flagCommand.Visit(func(f *flag.Flag) {
		if long, ok := shorthands[f.Name]; ok {
			set[long] = true
		} else {
			set[f.Name] = true
		}
	})

	return FlagsForCommand{
		StreamFlags: StreamFlags{
			Source:      source,
			Config:      config,
			Converter:   converter,
			ZOffset:     zOffset,
			Visible:     visible,
			Ramp:        ramp,
			Dimension:   dimension,
			MaxLevel:    maxLevel,
			Concurrency: concurrency,
			CacheSize:   cacheSize,
			Timeout:     timeout,
		},
		Output:       output,
		Silent:       silent,
		LogTimestamp: logTimestamp,
		Help:         help,
		Version:      version,
		Set:          set,
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, shorthands map[string]string, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
		shorthands[shortHand] = name
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, shorthands map[string]string, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
		shorthands[shortHand] = name
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, shorthands map[string]string, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
		shorthands[shortHand] = name
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, shorthands map[string]string, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
		shorthands[shortHand] = name
	}
	return &output
}

func defineDurationFlagCommand(flagCommand *flag.FlagSet, shorthands map[string]string, name string, shortHand string, defaultValue time.Duration, usage string) *time.Duration {
	var output time.Duration
	flagCommand.DurationVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.DurationVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
		shorthands[shortHand] = name
	}
	return &output
}
