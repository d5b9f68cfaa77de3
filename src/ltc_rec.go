package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	Decode a biphase-mark LTC sample stream back into
 *		timecode values.
 *
 * Description:	The generator never receives LTC.  The decoder is
 *		here for the tests, which use it to prove the
 *		round-trip property end to end.
 *
 *		Decoding works on the same 2 samples per bit grid the
 *		encoder produces.  A bit cell with a mid-cell
 *		transition is a one.  Cell alignment is unknown, so
 *		both phases are tried and the one that turns up sync
 *		words wins.
 *
 *---------------------------------------------------------------*/

import "fmt"

/*
 * Decode every complete frame found in the sample stream.
 * Returns an error if no sync word is present at either alignment.
 */
func ltc_decode(samples []byte) ([]smpte_timecode_t, error) {
	for phase := 0; phase < 2; phase++ {
		var frames = ltc_decode_phase(samples, phase)
		if len(frames) > 0 {
			return frames, nil
		}
	}

	return nil, fmt.Errorf("no LTC sync word found in %d samples", len(samples))
}

func ltc_decode_phase(samples []byte, phase int) []smpte_timecode_t {
	var bits []int
	for i := phase; i+1 < len(samples); i += 2 {
		if samples[i] != samples[i+1] {
			bits = append(bits, 1)
		} else {
			bits = append(bits, 0)
		}
	}

	var frames []smpte_timecode_t

	for p := 64; p+16 <= len(bits); p++ {
		if !sync_word_at(bits, p) {
			continue
		}

		frames = append(frames, parse_frame(bits[p-64:p+16]))
		p += 15 /* resume after this sync word */
	}

	return frames
}

func sync_word_at(bits []int, p int) bool {
	for i, bit := range ltc_sync_word {
		if bits[p+i] != bit {
			return false
		}
	}

	return true
}

func parse_frame(bits []int) smpte_timecode_t {
	var get = func(pos int, width int) int {
		var v = 0
		for i := 0; i < width; i++ {
			v |= bits[pos+i] << i
		}
		return v
	}

	var yy = get(44, 4)*10 + get(36, 4)

	/* Bit 59, the polarity correction, sits outside every field read here. */

	return smpte_timecode_t{
		frame: get(8, 2)*10 + get(0, 4),
		secs:  get(24, 3)*10 + get(16, 4),
		mins:  get(40, 3)*10 + get(32, 4),
		hours: get(56, 2)*10 + get(48, 4),

		days:   get(12, 4)*10 + get(4, 4),
		months: get(28, 4)*10 + get(20, 4),
		years:  2000 + yy,

		timezone: tz_from_code(get(52, 4) | get(60, 4)<<4),
	}
}
