// Package piltc generates a SMPTE linear timecode waveform on a GPIO pin,
// phase locked to the NTP-disciplined real-time clock, and broadcasts the
// current wall-clock time once per second so receivers can align to it.
package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	Runtime assembly: own every shared resource and run
 *		the two workers.
 *
 * Description:	The C version kept the ring buffer, encoder handle and
 *		synchronization objects in process globals.  Here they
 *		live in one Runtime value built at startup and handed
 *		to both workers.  Pins are still a process-global
 *		resource underneath, but access goes through the
 *		Runtime's pin set.
 *
 *		Startup order: pins low, socket open, buffers
 *		allocated, memory locked, then the two threads.  A
 *		failure to open the pins or the socket is fatal and
 *		the process exits cleanly; a failed memory lock is
 *		only logged as a warning.
 *
 *		Shutdown, which the C version never had: Stop closes a
 *		channel polled at the top of both loops; Run drives
 *		every pin low and releases the lines and socket after
 *		both workers return.
 *
 *---------------------------------------------------------------*/

import (
	"sync"

	"github.com/charmbracelet/log"
)

const RING_CAPACITY = 8 * LTC_SAMPLES_PER_FRAME

type Runtime struct {
	cfg  *Config
	log  *log.Logger
	pins pin_set
	ring *ringbuf_t
	ann  announce_sink

	/* Created and seeded by the timing loop at the first aligned
	   second, before the encoder worker is released. */
	enc *ltc_encoder_t

	clock clock_func

	start  chan struct{} /* closed by the timer at the first second boundary */
	primed chan struct{} /* closed by the encoder once a frame is queued */
	stop   chan struct{}

	stop_once sync.Once
	fail_once sync.Once
	fatal     error

	wg sync.WaitGroup

	announcer *announcer /* owned; ann points here in production */
}

func NewRuntime(cfg *Config, logger *log.Logger) (*Runtime, error) {
	var pins, pinErr = open_pins(cfg)
	if pinErr != nil {
		return nil, pinErr
	}

	pins.all_low()

	var ann, annErr = announce_open(cfg, logger)
	if annErr != nil {
		pins.close_all()
		return nil, annErr
	}

	return &Runtime{
		cfg:       cfg,
		log:       logger,
		pins:      pins,
		ring:      ringbuf_new(RING_CAPACITY),
		ann:       ann,
		announcer: ann,
		clock:     real_clock,
		start:     make(chan struct{}),
		primed:    make(chan struct{}),
		stop:      make(chan struct{}),
	}, nil
}

/*
 * Run both workers until a fatal error or Stop.  Returns nil on a
 * clean stop.
 */
func (rt *Runtime) Run() error {
	if mlockErr := lock_memory(); mlockErr != nil {
		rt.log.Warn("sample path not locked in memory", "err", mlockErr)
	}

	if rt.cfg.DNSSD.Enabled {
		dns_sd_announce(rt.cfg, rt.log)
	}

	rt.log.Info("starting",
		"broadcast", rt.cfg.BroadcastAddr, "port", rt.cfg.BroadcastPort,
		"encoder_cpu", rt.cfg.EncoderCPU, "timer_cpu", rt.cfg.TimerCPU)

	rt.wg.Add(2)
	go rt.encoder_worker()
	go rt.timer_worker()

	rt.wg.Wait()

	rt.pins.close_all()
	rt.announcer.close() //nolint:errcheck

	return rt.fatal
}

func (rt *Runtime) Stop() {
	rt.stop_once.Do(func() {
		close(rt.stop)
	})
}

/* Record the first fatal error and bring everything down. */
func (rt *Runtime) fail(err error) {
	rt.fail_once.Do(func() {
		rt.fatal = err
	})

	rt.Stop()
}
