package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the piltc timecode generator:
 *
 *			SMPTE LTC waveform on a GPIO pin, locked to
 *			the NTP-disciplined system clock.
 *			Per-second TIMESYNC broadcast for receivers.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	piltc "github.com/edwar64896/piltc/src"
)

func main() {
	var configFileName = pflag.StringP("config-file", "c", "", "Configuration file name.  Defaults apply when omitted.")
	var broadcastAddr = pflag.StringP("broadcast-addr", "b", "", "Override the announce broadcast address.")
	var broadcastPort = pflag.IntP("broadcast-port", "p", 0, "Override the announce broadcast port.")
	var statsInterval = pflag.IntP("stats-interval", "s", -1, "Seconds between timing statistics log lines.  0 to disable.")
	var textColor = pflag.IntP("text-color", "t", 0, "Text colors.  0=disabled.  1=default.")
	var logLevel = pflag.StringP("log-level", "d", "info", "Log level: debug, info, warn or error.")
	var showVersion = pflag.BoolP("version", "V", false, "Print version and exit.")

	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - NTP locked SMPTE LTC timecode generator.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: piltc [options]\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Runs until interrupted.  Intended to sit under a supervisor that\n")
		fmt.Fprintf(os.Stderr, "restarts it on failure.\n")
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *showVersion {
		piltc.PrintVersion(true)
		os.Exit(0)
	}

	var logger = log.NewWithOptions(os.Stderr, log.Options{ //nolint:exhaustruct
		ReportTimestamp: true,
		Prefix:          "piltc",
	})

	var parsedLevel, levelErr = log.ParseLevel(*logLevel)
	if levelErr != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	logger.SetLevel(parsedLevel)

	var cfg, cfgErr = piltc.LoadConfig(*configFileName)
	if cfgErr != nil {
		logger.Fatal("configuration", "err", cfgErr)
	}

	if *broadcastAddr != "" {
		cfg.BroadcastAddr = *broadcastAddr
	}
	if *broadcastPort != 0 {
		cfg.BroadcastPort = *broadcastPort
	}
	if *statsInterval >= 0 {
		cfg.StatsInterval = *statsInterval
	}

	// Done parsing, let's start doing!

	piltc.TextColorInit(*textColor)
	piltc.Banner()

	var rt, rtErr = piltc.NewRuntime(cfg, logger)
	if rtErr != nil {
		logger.Fatal("startup", "err", rtErr)
	}

	var sigs = make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, unix.SIGTERM)

	go func() {
		var sig = <-sigs
		logger.Info("shutting down", "signal", sig)
		rt.Stop()
	}()

	if runErr := rt.Run(); runErr != nil {
		logger.Fatal("generator stopped", "err", runErr)
	}
}
