package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	Output pin control.
 *
 * Description:	Five output lines on one GPIO character device:
 *
 *		DATA		LTC waveform, toggled at 4 kHz.
 *		STABLE		high while the previous second
 *				delivered exactly 4000 edges.
 *		ENCODER_ACTIVE	high while the encoder is writing
 *				a frame.
 *		HEARTBEAT	toggles once per second once stable.
 *		SAFETY_CLOCK	toggles on every edge tick.
 *
 *		The C version used wiringPi.  Here lines are requested
 *		through the kernel character device, which is the
 *		supported interface on current kernels.  Each pin has
 *		exactly one writer so no locking is needed.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

type output_pin interface {
	set(value int)
	close() error
}

/* A requested line on the GPIO character device. */
type gpio_line struct {
	line *gpiocdev.Line
}

func (g *gpio_line) set(value int) {
	/* A failed write on an already-requested output line means the
	   chip went away; nothing useful can be done mid-loop. */
	g.line.SetValue(value) //nolint:errcheck
}

func (g *gpio_line) close() error {
	g.line.SetValue(0) //nolint:errcheck

	return g.line.Close()
}

type pin_set struct {
	data           output_pin
	stable         output_pin
	encoder_active output_pin
	heartbeat      output_pin
	safety_clock   output_pin
}

/*
 * Request all five lines as outputs, initialized low.
 */
func open_pins(cfg *Config) (pin_set, error) {
	var ps pin_set

	var request = func(name string, offset int) (output_pin, error) {
		var line, reqErr = gpiocdev.RequestLine(cfg.GPIOChip, offset,
			gpiocdev.AsOutput(0),
			gpiocdev.WithConsumer("piltc-"+name))
		if reqErr != nil {
			return nil, fmt.Errorf("requesting %s line (offset %d on %s): %w", name, offset, cfg.GPIOChip, reqErr)
		}

		return &gpio_line{line: line}, nil
	}

	var reqErr error

	if ps.data, reqErr = request("data", cfg.Pins.Data); reqErr != nil {
		return ps, reqErr
	}
	if ps.stable, reqErr = request("stable", cfg.Pins.Stable); reqErr != nil {
		ps.close_all()
		return ps, reqErr
	}
	if ps.encoder_active, reqErr = request("encoder-active", cfg.Pins.EncoderActive); reqErr != nil {
		ps.close_all()
		return ps, reqErr
	}
	if ps.heartbeat, reqErr = request("heartbeat", cfg.Pins.Heartbeat); reqErr != nil {
		ps.close_all()
		return ps, reqErr
	}
	if ps.safety_clock, reqErr = request("safety-clock", cfg.Pins.SafetyClock); reqErr != nil {
		ps.close_all()
		return ps, reqErr
	}

	return ps, nil
}

func (ps *pin_set) all_low() {
	for _, p := range ps.each() {
		if p != nil {
			p.set(0)
		}
	}
}

/* Drives every line low and releases it. */
func (ps *pin_set) close_all() {
	for _, p := range ps.each() {
		if p != nil {
			p.close() //nolint:errcheck
		}
	}
}

func (ps *pin_set) each() []output_pin {
	return []output_pin{ps.data, ps.stable, ps.encoder_active, ps.heartbeat, ps.safety_clock}
}
