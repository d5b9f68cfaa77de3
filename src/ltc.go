package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	Encode SMPTE timecode frames into a biphase-mark
 *		LTC sample stream.
 *
 * Description:	The C version handed this job to libltc.  There
 *		is no Go equivalent, so the same operation surface is
 *		provided here: create, set_timecode, encode_frame,
 *		buffer, flush, inc_timecode.
 *
 *		One frame is 80 bits.  At 25 fps and 4000 samples per
 *		second each bit is two samples, so a frame is exactly
 *		160 samples.  Samples take only the two extreme values,
 *		0x00 and 0xFF, because the output is a logic signal
 *		rather than line-level audio.
 *
 *		Biphase mark: the level toggles at every bit boundary,
 *		and again in the middle of the bit cell for a one.
 *		The level carries over from frame to frame.
 *
 * References:	SMPTE ST 12-1, Linear Timecode.
 *		https://github.com/x42/libltc
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"sync"
	"time"
)

const LTC_FPS = 25
const LTC_SAMPLE_RATE = 4000 /* 25 fps * 80 bits * 2 samples per bit */

const LTC_FRAME_BITS = 80
const LTC_SAMPLES_PER_FRAME = LTC_FRAME_BITS * 2

/* Sample levels for logic low and high. */
const LTC_SAMPLE_LOW = 0x00
const LTC_SAMPLE_HIGH = 0xFF

/* Bits 64-79, transmitted low bit first: 0011 1111 1111 1101 */
var ltc_sync_word = [16]int{0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1}

type ltc_flags_t int

const (
	LTC_USE_DATE ltc_flags_t = 1 << iota /* Carry the calendar date in the user bits. */
)

type ltc_encoder_t struct {
	mu sync.Mutex /* set_timecode may come from the timing loop while the encoder worker owns the rest. */

	tc    smpte_timecode_t
	flags ltc_flags_t

	level byte /* Current output level, persists across frames. */
	buf   []byte
}

/*
 * Only the fixed 4000/25 operating point is supported.  Anything else
 * is rejected with an error.  The flags are not checked.
 */
func ltc_encoder_new(sampleRate int, fps int, flags ltc_flags_t) (*ltc_encoder_t, error) {
	if sampleRate != LTC_SAMPLE_RATE || fps != LTC_FPS {
		return nil, fmt.Errorf("unsupported operating point %d samples/sec at %d fps, only %d/%d is implemented",
			sampleRate, fps, LTC_SAMPLE_RATE, LTC_FPS)
	}

	return &ltc_encoder_t{
		flags: flags,
		level: LTC_SAMPLE_LOW,
		buf:   make([]byte, 0, LTC_SAMPLES_PER_FRAME*4),
	}, nil
}

func (e *ltc_encoder_t) set_timecode(tc smpte_timecode_t) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tc = tc
}

func (e *ltc_encoder_t) timecode() smpte_timecode_t {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tc
}

func (e *ltc_encoder_t) inc_timecode() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tc.inc_frame(LTC_FPS)
}

/*
 * Append one frame worth of samples to the internal buffer.
 */
func (e *ltc_encoder_t) encode_frame() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tc.frame < 0 || e.tc.frame >= LTC_FPS {
		return fmt.Errorf("frame number %d out of range for %d fps", e.tc.frame, LTC_FPS)
	}

	var bits = ltc_frame_bits(e.tc, e.flags)

	for _, bit := range bits {
		e.level = toggle_level(e.level)
		e.buf = append(e.buf, e.level)

		if bit != 0 {
			e.level = toggle_level(e.level)
		}
		e.buf = append(e.buf, e.level)
	}

	return nil
}

/* Encoded but not yet flushed samples. */
func (e *ltc_encoder_t) buffer() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.buf
}

func (e *ltc_encoder_t) flush() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf = e.buf[:0]
}

func toggle_level(level byte) byte {
	if level == LTC_SAMPLE_LOW {
		return LTC_SAMPLE_HIGH
	}

	return LTC_SAMPLE_LOW
}

/*------------------------------------------------------------------
 *
 * Name:	ltc_frame_bits
 *
 * Purpose:	Lay out the 80 bits of one LTC frame, low bit first.
 *
 * Description:	BCD time fields in the ST 12-1 positions, the sync
 *		word in bits 64-79, and with LTC_USE_DATE the eight
 *		user fields carrying BCD day/month/year and a
 *		timezone code.
 *
 *		Bit 59 is the 25 fps polarity correction bit.  It is
 *		set when needed so that every frame contains an even
 *		number of ones, which keeps the biphase level at the
 *		end of each frame equal to the level at its start.
 *
 *------------------------------------------------------------------*/

func ltc_frame_bits(tc smpte_timecode_t, flags ltc_flags_t) [LTC_FRAME_BITS]int {
	var bits [LTC_FRAME_BITS]int

	var put = func(pos int, width int, value int) {
		for i := 0; i < width; i++ {
			bits[pos+i] = (value >> i) & 1
		}
	}

	put(0, 4, tc.frame%10)  /* frame units */
	put(8, 2, tc.frame/10)  /* frame tens */
	put(16, 4, tc.secs%10)  /* seconds units */
	put(24, 3, tc.secs/10)  /* seconds tens */
	put(32, 4, tc.mins%10)  /* minutes units */
	put(40, 3, tc.mins/10)  /* minutes tens */
	put(48, 4, tc.hours%10) /* hours units */
	put(56, 2, tc.hours/10) /* hours tens */

	/* Bit 10 drop frame and bit 11 color frame stay zero at 25 fps. */

	if flags&LTC_USE_DATE != 0 {
		var yy = tc.years % 100
		var code = tz_code(tc.timezone)

		put(4, 4, tc.days%10)    /* user 1 */
		put(12, 4, tc.days/10)   /* user 2 */
		put(20, 4, tc.months%10) /* user 3 */
		put(28, 4, tc.months/10) /* user 4 */
		put(36, 4, yy%10)        /* user 5 */
		put(44, 4, yy/10)        /* user 6 */
		put(52, 4, code&0x0F)    /* user 7 */
		put(60, 4, code>>4)      /* user 8 */
	}

	for i, bit := range ltc_sync_word {
		bits[64+i] = bit
	}

	var ones = 0
	for _, bit := range bits {
		ones += bit
	}
	if ones%2 != 0 {
		bits[59] = 1 /* polarity correction */
	}

	return bits
}

/*
 * Timezone code for the user bits: the UTC offset in 15 minute units,
 * biased by 48 to keep it non-negative.  The decoder reverses this.
 */
func tz_code(tz string) int {
	if len(tz) != 5 {
		return 48 /* treat unparseable as UTC */
	}

	var sign int
	switch tz[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 48
	}

	for _, c := range tz[1:] {
		if c < '0' || c > '9' {
			return 48
		}
	}

	var hh = int(tz[1]-'0')*10 + int(tz[2]-'0')
	var mm = int(tz[3]-'0')*10 + int(tz[4]-'0')

	return sign*(hh*4+mm/15) + 48
}

func tz_from_code(code int) string {
	var offset = (code - 48) * 15 * 60

	return tz_string(offset)
}

/*------------------------------------------------------------------
 *
 * Name:	GenerateWaveform
 *
 * Purpose:	Offline entry point for the genltc utility: encode a
 *		run of frames starting from the given instant and
 *		return the raw sample stream.
 *
 *------------------------------------------------------------------*/

func GenerateWaveform(seed time.Time, frames int) ([]byte, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("frame count must be positive, got %d", frames)
	}

	var enc, encErr = ltc_encoder_new(LTC_SAMPLE_RATE, LTC_FPS, LTC_USE_DATE)
	if encErr != nil {
		return nil, encErr
	}

	enc.set_timecode(timecode_for_second(seed.Unix()))

	var out = make([]byte, 0, frames*LTC_SAMPLES_PER_FRAME)

	for i := 0; i < frames; i++ {
		if frameErr := enc.encode_frame(); frameErr != nil {
			return nil, frameErr
		}

		out = append(out, enc.buffer()...)
		enc.flush()
		enc.inc_timecode()
	}

	return out, nil
}
