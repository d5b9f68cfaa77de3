package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	Encoder worker: keep the ring buffer fed.
 *
 * Description:	Free-running on its own CPU.  Waits at the startup
 *		rendezvous until the timing loop has seen the first
 *		second boundary and seeded the encoder, then loops:
 *
 *		  encode one frame -> copy its 160 samples into the
 *		  ring buffer -> flush -> wait while four frames are
 *		  queued -> advance the timecode.
 *
 *		The back-pressure wait is a plain poll with a short
 *		sleep; consumption by the timing loop is what actually
 *		paces this thread.  Ring occupancy therefore stays
 *		between one and four frames.
 *
 *		The worker never reseeds itself.  Reseeding is the
 *		timing loop's call to make, because only it knows
 *		which wall-clock instant the waveform is aligned to.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"runtime"
)

const BACKPRESSURE_BYTES = 4 * LTC_SAMPLES_PER_FRAME
const BACKPRESSURE_POLL_MS = 10

func (rt *Runtime) encoder_worker() {
	defer rt.wg.Done()

	runtime.LockOSThread()

	if affErr := set_cpu_affinity(rt.cfg.EncoderCPU); affErr != nil {
		rt.log.Warn("encoder thread not pinned", "err", affErr)
	}

	/*
	 * Wait here until the timer gets going, then we start encoding.
	 */
	select {
	case <-rt.start:
	case <-rt.stop:
		return
	}

	if loopErr := rt.encoder_loop(); loopErr != nil {
		rt.fail(fmt.Errorf("encoder worker: %w", loopErr))
	}
}

func (rt *Runtime) encoder_loop() error {
	var primed = false

	for {
		select {
		case <-rt.stop:
			return nil
		default:
		}

		rt.pins.encoder_active.set(1)

		if encErr := rt.enc.encode_frame(); encErr != nil {
			return encErr
		}

		/*
		 * 10 bytes per frame
		 * 80 bits per frame
		 * 8 bits per byte
		 * 2 samples per bit
		 */
		if writeErr := rt.ring.write_bulk(rt.enc.buffer()); writeErr != nil {
			return writeErr
		}

		rt.enc.flush()

		rt.pins.encoder_active.set(0)

		if !primed {
			/* First frame is queued; release the timing loop. */
			close(rt.primed)
			primed = true
		}

		for rt.ring.bytes_used() >= BACKPRESSURE_BYTES {
			select {
			case <-rt.stop:
				return nil
			default:
			}

			SLEEP_MS(BACKPRESSURE_POLL_MS)
		}

		rt.enc.inc_timecode()
	}
}
