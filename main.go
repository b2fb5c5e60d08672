/*
 * This file is part of the Cesium Point Cloud Stream distribution (https://github.com/ecopia-map/cesium_stream).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ecopia-map/cesium_stream/internal/colorizer"
	"github.com/ecopia-map/cesium_stream/internal/stream"
	"github.com/ecopia-map/cesium_stream/pkg"
	"github.com/ecopia-map/cesium_stream/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/cesium_stream/tools"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const VERSION = "0.3.0"

const logo = `
                   _                        _
  ___ ___  ___ ___(_)_   _ _ __ ___    ___| |_ _ __ ___  __ _ _ __ ___
 / __/ _ \/ __/ __| | | | | '_ ` + "`" + ` _ \  / __| __| '__/ _ \/ _` + "`" + ` | '_ ` + "`" + ` _ \
| (_|  __/\__ \__ \ | |_| | | | | | | \__ \ |_| | |  __/ (_| | | | | | |
 \___\___||___/___/_|\__,_|_| |_| |_| |___/\__|_|  \___|\__,_|_| |_| |_|
  A quadtree point cloud streaming client written in golang
  Copyright YYYY
`

func main() {
	log.SetPrefix("[cesium_stream] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds)
	defer glog.Flush()

	flagsGlobal := tools.ParseFlagsGlobal()
	glog.V(1).Info(tools.FmtJSONString(flagsGlobal))

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		glog.Exit("Please specify a subcommand [info|crawl|export].")
	}
	cmd, args := args[0], args[1:]

	command := stream.ParseCommand(cmd)
	if command == "" {
		glog.Exitf("Unrecognized command [%q]. Command must be one of [info|crawl|export]", cmd)
	}
	mainCommand(command, args)
}

func mainCommand(command stream.Command, args []string) {
	// Retrieve command line args
	flags := tools.ParseFlagsForCommand(string(command), args)

	if *flags.Help {
		showHelp()
		return
	}

	if *flags.Version {
		printVersion()
		return
	}

	// set logging and timestamp logging
	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}

	opts, err := buildOptions(command, &flags)
	if err != nil {
		glog.Exit("Error parsing input parameters: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer timeTrack(time.Now(), string(command))
	err = pkg.NewStreamer(std_algorithm_manager.NewAlgorithmManager(opts)).RunStreamer(ctx, opts)
	if err != nil {
		glog.Exit("Error while streaming: ", err)
	}
	tools.LogOutput("Completed")
}

// Layers the options: defaults, then the yaml config file, then the flags explicitly given
func buildOptions(command stream.Command, flags *tools.FlagsForCommand) (*stream.StreamOptions, error) {
	opts := stream.DefaultStreamOptions()
	opts.Command = command

	if *flags.Config != "" {
		if err := stream.LoadConfigFile(*flags.Config, opts); err != nil {
			return nil, err
		}
	}

	streamFlags := flags.StreamFlags
	for name := range flags.Set {
		switch name {
		case "source":
			opts.Source = *streamFlags.Source
		case "converter":
			opts.Converter = stream.ParseConverterKind(*streamFlags.Converter)
		case "zoffset":
			opts.ZOffset = *streamFlags.ZOffset
		case "visible":
			opts.Visible = *streamFlags.Visible
		case "ramp":
			opts.RampName = *streamFlags.Ramp
		case "dimension":
			opts.DimensionName = *streamFlags.Dimension
		case "max-level":
			if *streamFlags.MaxLevel < 0 {
				return nil, errors.New("max-level cannot be negative")
			}
			opts.MaxLevel = uint32(*streamFlags.MaxLevel)
		case "concurrency":
			opts.Concurrency = *streamFlags.Concurrency
		case "cache-size":
			opts.CacheSize = *streamFlags.CacheSize
		case "timeout":
			opts.Timeout = *streamFlags.Timeout
		case "output":
			opts.ExportOptions = &stream.ExportOptions{Output: *flags.Output}
		}
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	glog.V(1).Info(tools.FmtJSONString(opts))
	return opts, nil
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("cesium_stream reads a quadtree point cloud source, decodes its tiles and exports them as PLY files")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: cesium_stream [info|crawl|export] [flags]")
	fmt.Println("")
	fmt.Println("Color ramps: " + strings.Join(colorizer.RampNames(), ", "))
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
