package piltc

import "testing"

func TestPrintVersion(t *testing.T) {
	AssertOutputContains(t, func() { PrintVersion(false) }, "piltc - Version")
}

func TestBanner(t *testing.T) {
	AssertOutputContains(t, Banner, "Timecode Generator")
}
