package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	Real-time timing loop: one sample onto the DATA pin
 *		every 250 us, resynchronized at second boundaries.
 *
 * Description:	A busy loop sampling the real-time clock.  A periodic
 *		timer will not do here: timer wakeup jitter on the
 *		target hardware exceeds the 125 us edge budget, while
 *		a pinned busy loop stays under 10 us.
 *
 *		tv_nsec is folded to u = nsec / 2000, so u runs
 *		0 .. 499999 within each second.  u == 0 is the second
 *		boundary; u a multiple of 125 is an edge tick, 4000 of
 *		them per second.  The loop runs far faster than either
 *		event, so each value of u is observed many times; an
 *		event fires only on the transition to a new u value.
 *
 *		Second boundary bookkeeping: the first boundary seeds
 *		and releases the encoder; the first boundary closing a
 *		second with exactly 4000 edges reseeds the encoder
 *		with the freshly observed wall clock and raises
 *		STABLE; after that each good second toggles HEARTBEAT
 *		and a short second (an NTP step, a scheduling stall)
 *		drops STABLE until a good second comes around again.
 *
 *		Edge ticks drain the ring buffer one sample at a time
 *		through a one-frame scratch chunk, refilled every 160
 *		edges.  Per-edge work is the same on every edge: two
 *		pin writes (SAFETY_CLOCK and DATA), a counter, and at
 *		most one bounded 160-byte copy per frame.  No allocation, no blocking, no system
 *		call beyond the GPIO write.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

const EDGES_PER_SECOND = LTC_SAMPLE_RATE
const EDGE_INTERVAL_U = 125 /* 250 us in half-microsecond pairs */

/* Injected so the tests can drive the loop with a synthetic clock. */
type clock_func func() (sec int64, nsec int64)

func real_clock() (int64, int64) {
	var ts unix.Timespec
	unix.ClockGettime(unix.CLOCK_REALTIME, &ts) //nolint:errcheck

	return int64(ts.Sec), int64(ts.Nsec)
}

func (rt *Runtime) timer_worker() {
	defer rt.wg.Done()

	runtime.LockOSThread()

	if affErr := set_cpu_affinity(rt.cfg.TimerCPU); affErr != nil {
		rt.log.Warn("timer thread not pinned", "err", affErr)
	}

	if rt.cfg.RTPriority > 0 {
		if rtErr := set_realtime_priority(rt.cfg.RTPriority); rtErr != nil {
			rt.log.Warn("timer thread without realtime priority", "err", rtErr)
		}
	}

	if loopErr := rt.timer_loop(); loopErr != nil {
		rt.fail(fmt.Errorf("timing loop: %w", loopErr))
	}
}

func (rt *Runtime) timer_loop() error {
	var firstime = true
	var last_u int64 = -1

	var released = false
	var clock_stable = false

	var cnt_e = 0
	var framecount = 0

	var ledon = 0
	var clkPulse = 0

	/* One frame of samples, refilled from the ring every 160 edges. */
	var chunk [LTC_SAMPLES_PER_FRAME]byte
	var iOutCount = 0

	var stats stats_t

	for {
		select {
		case <-rt.stop:
			return nil
		default:
		}

		/*
		 * Grab the time from the real-time clock.
		 * This will be affected by NTP.
		 */
		var sec, nsec = rt.clock()

		if rt.cfg.StatsInterval > 0 {
			stats.observe(sec, nsec)
		}

		var u = nsec / 2000
		if u == last_u {
			continue
		}
		last_u = u

		/*
		 * Dump cycles until the first second boundary.
		 */
		if firstime {
			if u != 0 {
				continue
			}
			firstime = false
		}

		if u == 0 {
			if !released {
				/*
				 * First aligned second.  Create the encoder, seed it
				 * with this boundary's wall clock, let the encoder
				 * worker go and wait until the first frame is queued.
				 */
				var enc, encErr = ltc_encoder_new(LTC_SAMPLE_RATE, LTC_FPS, LTC_USE_DATE)
				if encErr != nil {
					return encErr
				}

				enc.set_timecode(timecode_for_second(sec))
				rt.enc = enc

				close(rt.start)

				select {
				case <-rt.primed:
				case <-rt.stop:
					return nil
				}

				released = true
			} else if cnt_e == EDGES_PER_SECOND {
				if !clock_stable {
					/*
					 * The clock has just delivered a full second at
					 * speed.  Reseed with the wall clock observed at
					 * this boundary so the waveform carries the right
					 * time of day from here on.
					 */
					rt.enc.set_timecode(timecode_for_second(sec))
					clock_stable = true
					rt.pins.stable.set(1)
				} else {
					ledon = 1 - ledon
					rt.pins.heartbeat.set(ledon)
				}
			} else {
				/* Short second.  Leave the encoder alone. */
				clock_stable = false
				rt.pins.stable.set(0)
				stats.short_seconds++
			}

			rt.ann.announce(sec)

			framecount = 0
			cnt_e = 0

			if rt.cfg.StatsInterval > 0 && stats.due(rt.cfg.StatsInterval) {
				stats.report(rt.log)
			}
		}

		/*
		 * LTC waveform edge.
		 */
		if u%EDGE_INTERVAL_U == 0 && released {
			cnt_e++
			clkPulse = 1 - clkPulse
			rt.pins.safety_clock.set(clkPulse)

			if iOutCount == 0 {
				if readErr := rt.ring.read_bulk(chunk[:]); readErr != nil {
					return readErr
				}
				framecount++
			}

			rt.pins.data.set(IfThenElse(chunk[iOutCount] != 0, 1, 0))
			iOutCount = (iOutCount + 1) % LTC_SAMPLES_PER_FRAME
		}
	}
}

/*------------------------------------------------------------------
 *
 * Timing statistics.  Counters live in the loop and are reported at
 * second-boundary context every stats_interval seconds.  The worst
 * inter-iteration gap is a direct read on how much the loop is being
 * held off the CPU.
 *
 *------------------------------------------------------------------*/

type stats_t struct {
	prev_sec      int64
	prev_nsec     int64
	have_prev     bool
	max_gap_ns    int64
	seconds       int
	short_seconds int
}

func (s *stats_t) observe(sec int64, nsec int64) {
	if s.have_prev {
		var gap = (sec-s.prev_sec)*1_000_000_000 + nsec - s.prev_nsec
		if gap > s.max_gap_ns {
			s.max_gap_ns = gap
		}
	}

	s.prev_sec = sec
	s.prev_nsec = nsec
	s.have_prev = true
}

func (s *stats_t) due(interval int) bool {
	s.seconds++

	return s.seconds >= interval
}

func (s *stats_t) report(logger *log.Logger) {
	logger.Info("timing",
		"seconds", s.seconds,
		"short_seconds", s.short_seconds,
		"max_gap_us", s.max_gap_ns/1000)

	s.seconds = 0
	s.short_seconds = 0
	s.max_gap_ns = 0
}
