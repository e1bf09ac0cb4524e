package capture

import (
	"fmt"
	"strings"
)

// Mode is one of the four export renders of the same scene.
type Mode int

const (
	ModePose Mode = iota
	ModeDepth
	ModeNormal
	ModeCanny
)

// Modes is the fixed export order.
var Modes = []Mode{ModePose, ModeDepth, ModeNormal, ModeCanny}

func (m Mode) String() string {
	switch m {
	case ModePose:
		return "pose"
	case ModeDepth:
		return "depth"
	case ModeNormal:
		return "normal"
	case ModeCanny:
		return "canny"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a mode tag back to its Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("capture: unknown mode %q", s)
}
