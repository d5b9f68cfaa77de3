package piltc

// Console output for the interactive front ends.  Structured daemon
// logging goes through charmbracelet/log; this is for operator chatter
// like the startup banner.

import "fmt"

type dw_color_e int

const (
	DW_COLOR_INFO  dw_color_e = iota /* black */
	DW_COLOR_ERROR                   /* red */
	DW_COLOR_DEBUG                   /* dark_green */
)

var _text_color_level int

func TextColorInit(level int) {
	_text_color_level = level
}

func text_color_set(_ dw_color_e) {
	if _text_color_level == 0 {
		return
	}

	// TODO: ANSI sequences once somebody actually runs this on a color terminal.
}

func dw_printf(format string, a ...any) (int, error) {
	return fmt.Printf(format, a...)
}
