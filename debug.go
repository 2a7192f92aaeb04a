package trellis

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame timing and draw counts.
// Only populated when Canvas.debug is true.
type debugStats struct {
	objectTime  time.Duration
	overlayTime time.Duration
	drawn       int
	culled      int
}

// debugLog prints frame stats to stderr.
func (c *Canvas) debugLog(stats debugStats) {
	if !c.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[trellis] objects: %v | overlay: %v | total: %v\n",
		stats.objectTime, stats.overlayTime, stats.objectTime+stats.overlayTime)
	_, _ = fmt.Fprintf(os.Stderr,
		"[trellis] drawn: %d | culled: %d\n", stats.drawn, stats.culled)
}

// debugCheckObjectCount warns on stderr when snapping has to scan an
// unusually large scene.
const debugMaxObjectCount = 2000

func (c *Canvas) debugCheckObjectCount() {
	if c.debug && len(c.objects) > debugMaxObjectCount {
		_, _ = fmt.Fprintf(os.Stderr, "[trellis] warning: %d objects on canvas (threshold %d)\n",
			len(c.objects), debugMaxObjectCount)
	}
}
