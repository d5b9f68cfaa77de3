package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Offline LTC waveform generator.
 *
 * Description:	Encodes a run of frames starting from the current (or
 *		a given) time and writes the raw 4 kHz sample stream
 *		to a file or stdout.  Handy for bench testing a
 *		receiver without a Pi wired up: feed the file through
 *		a DAC or a logic analyzer replay.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	piltc "github.com/edwar64896/piltc/src"
)

func main() {
	var frames = pflag.IntP("frames", "n", 250, "Number of frames to generate (25 per second).")
	var outputFileName = pflag.StringP("output", "o", "-", "Output file.  \"-\" writes raw samples to stdout.")
	var startTime = pflag.StringP("start", "s", "", "Start instant as RFC 3339 (e.g. 2026-08-01T10:30:00+01:00).  Defaults to now.")

	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - generate a raw LTC sample stream for bench testing.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: genltc [options]\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	var seed = time.Now()
	if *startTime != "" {
		var parsed, parseErr = time.Parse(time.RFC3339, *startTime)
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "Invalid start time %q: %s\n", *startTime, parseErr)
			os.Exit(1)
		}
		seed = parsed
	}

	var samples, genErr = piltc.GenerateWaveform(seed, *frames)
	if genErr != nil {
		fmt.Fprintf(os.Stderr, "%s\n", genErr)
		os.Exit(1)
	}

	var out = os.Stdout
	if *outputFileName != "-" {
		var f, openErr = os.Create(*outputFileName)
		if openErr != nil {
			fmt.Fprintf(os.Stderr, "Can't open %q for write: %s\n", *outputFileName, openErr)
			os.Exit(1)
		}
		defer f.Close() //nolint:errcheck

		out = f
	}

	if _, writeErr := out.Write(samples); writeErr != nil {
		fmt.Fprintf(os.Stderr, "Write failed: %s\n", writeErr)
		os.Exit(1)
	}

	if *outputFileName != "-" {
		fmt.Printf("Wrote %d samples (%d frames, %.1f seconds) to %s\n",
			len(samples), *frames, float64(*frames)/piltc.LTC_FPS, *outputFileName)
	}
}
