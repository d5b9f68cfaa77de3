package piltc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func test_timecode_gen() *rapid.Generator[smpte_timecode_t] {
	return rapid.Custom(func(t *rapid.T) smpte_timecode_t {
		var years = rapid.IntRange(2000, 2099).Draw(t, "years")
		var months = rapid.IntRange(1, 12).Draw(t, "months")

		return smpte_timecode_t{
			years:    years,
			months:   months,
			days:     rapid.IntRange(1, days_in_month(years, months)).Draw(t, "days"),
			hours:    rapid.IntRange(0, 23).Draw(t, "hours"),
			mins:     rapid.IntRange(0, 59).Draw(t, "mins"),
			secs:     rapid.IntRange(0, 59).Draw(t, "secs"),
			frame:    rapid.IntRange(0, LTC_FPS-1).Draw(t, "frame"),
			timezone: "+0100",
		}
	})
}

func TestEncodeFrameProducesExactlyOneFrame(t *testing.T) {
	var enc, encErr = ltc_encoder_new(LTC_SAMPLE_RATE, LTC_FPS, LTC_USE_DATE)
	require.NoError(t, encErr)

	enc.set_timecode(smpte_timecode_t{years: 2026, months: 8, days: 1, hours: 12, mins: 34, secs: 56, frame: 7, timezone: "+0100"})

	require.NoError(t, enc.encode_frame())
	assert.Len(t, enc.buffer(), LTC_SAMPLES_PER_FRAME)

	require.NoError(t, enc.encode_frame())
	assert.Len(t, enc.buffer(), 2*LTC_SAMPLES_PER_FRAME)

	enc.flush()
	assert.Empty(t, enc.buffer())
}

func TestEncoderEmitsOnlyLogicLevels(t *testing.T) {
	var samples, genErr = GenerateWaveform(time.Unix(1700000000, 0), 10)
	require.NoError(t, genErr)

	for i, s := range samples {
		if s != LTC_SAMPLE_LOW && s != LTC_SAMPLE_HIGH {
			t.Fatalf("sample %d is 0x%02X, want 0x00 or 0xFF", i, s)
		}
	}
}

func TestUnsupportedOperatingPoint(t *testing.T) {
	var _, encErr = ltc_encoder_new(48000, 30, 0)
	assert.ErrorContains(t, encErr, "unsupported operating point")
}

// Every frame must carry an even number of ones so the biphase level
// repeats frame to frame.  That is the whole point of bit 59.
func TestFramePolarity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var tc = test_timecode_gen().Draw(t, "tc")

		var bits = ltc_frame_bits(tc, LTC_USE_DATE)

		var ones = 0
		for _, bit := range bits {
			ones += bit
		}
		if ones%2 != 0 {
			t.Fatalf("frame for %s has %d ones", tc, ones)
		}
	})
}

func TestFrameSyncWord(t *testing.T) {
	var bits = ltc_frame_bits(smpte_timecode_t{years: 2026, months: 1, days: 1}, LTC_USE_DATE)

	for i, want := range ltc_sync_word {
		assert.Equal(t, want, bits[64+i], "sync word bit %d", i)
	}
}

func TestFrameBitsRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var tc = test_timecode_gen().Draw(t, "tc")

		var bits = ltc_frame_bits(tc, LTC_USE_DATE)
		var got = parse_frame(bits[:])

		if got.hours != tc.hours || got.mins != tc.mins || got.secs != tc.secs || got.frame != tc.frame {
			t.Fatalf("time fields: got %s, want %s", got, tc)
		}
		if got.years != tc.years || got.months != tc.months || got.days != tc.days {
			t.Fatalf("date fields: got %s, want %s", got, tc)
		}
		if got.timezone != tc.timezone {
			t.Fatalf("timezone: got %s, want %s", got.timezone, tc.timezone)
		}
	})
}

func TestTzCodeRoundTrip(t *testing.T) {
	for _, tz := range []string{"+0000", "+0100", "+0530", "-0800", "-0330", "+1200"} {
		assert.Equal(t, tz, tz_from_code(tz_code(tz)), "offset %s", tz)
	}
}

// The decoded stream must be the exact timecode sequence the encoder
// was asked to produce, advancing one frame at a time across the
// second boundary.
func TestWaveformRoundTrip(t *testing.T) {
	var seed = time.Unix(1700000005, 0)
	const frames = 55 /* spans two second boundaries */

	var samples, genErr = GenerateWaveform(seed, frames)
	require.NoError(t, genErr)
	require.Len(t, samples, frames*LTC_SAMPLES_PER_FRAME)

	var decoded, decErr = ltc_decode(samples)
	require.NoError(t, decErr)
	require.Len(t, decoded, frames)

	var want = timecode_for_second(seed.Unix())
	for i, got := range decoded {
		assert.Equal(t, want, got, "frame %d", i)
		want.inc_frame(LTC_FPS)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	var _, decErr = ltc_decode(make([]byte, 4096))
	assert.ErrorContains(t, decErr, "no LTC sync word")
}
