package game

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iburimskiy/sunflower/internal/motion"
)

// Status is what the HUD shows besides the driver state.
type Status struct {
	Source   string
	Tracking bool
	Level    float64 // audio RMS, <0 when audio is off
}

// StatusFunc is polled once per drawn frame.
type StatusFunc func() Status

func clamp01(v float64) float64 { return math.Min(1, math.Max(0, v)) }

// formatDuration renders an uptime as MM:SS, or H:MM:SS past the first hour.
func formatDuration(d time.Duration) string {
	secs := int64(max(d, 0) / time.Second)
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// hudText renders the overlay lines.
func hudText(s motion.State, light float64, st Stats, status Status, uptime time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rotate %6.1f deg  tilt %6.1f deg  bloom %.2f\n", degrees(s.Rotation), degrees(s.Tilt), s.Bloom)
	fmt.Fprintf(&b, "light %.2f  frames %d  dropped %d  up %s\n", light, st.Frames, st.Dropped, formatDuration(uptime))

	hand := "no hand"
	if status.Tracking {
		hand = "tracking"
	}
	fmt.Fprintf(&b, "source %s: %s", status.Source, hand)
	if status.Level >= 0 {
		n := int(clamp01(status.Level*4) * 20)
		fmt.Fprintf(&b, "  drone [%s%s]", strings.Repeat("#", n), strings.Repeat(".", 20-n))
	}
	b.WriteString("\nSpace: HUD  M: mute  Esc/Q: quit")
	return b.String()
}
