package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	slowColor   = color.New(color.FgRed)
	totalColor  = color.New(color.FgGreen, color.Bold)
)

// Render writes the report as line-oriented text. Respects the global
// color mode (color.NoColor); writes are best effort because the sink
// belongs to the host build.
func Render(w io.Writer, rep Report) {
	if w == nil {
		return
	}
	p := message.NewPrinter(language.English)

	if rep.NoData {
		fmt.Fprintln(w, "no timing data collected")
		return
	}

	headerColor.Fprintf(w, "slowest units (showing %d of %d):\n", len(rep.Slowest), rep.OutlierCount)
	for i, e := range rep.Slowest {
		fmt.Fprintf(w, "  %2d. %-44s %s\n", i+1, e.Display, slowColor.Sprintf("%8.1f ms", toMillis(e.Duration)))
	}

	headerColor.Fprintln(w, "time by bucket:")
	for _, b := range rep.Buckets {
		p.Fprintf(w, "  %-30s %6d units  %8.1f ms\n", b.Name, b.Count, toMillis(b.Total))
	}

	totalColor.Fprint(w, "totals: ")
	p.Fprintf(w, "%d units seen, %d slow, %.1f ms total, %.1f ms avg per unit\n",
		rep.TotalSeen, rep.OutlierCount, toMillis(rep.TotalTime), toMillis(rep.AvgTime))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
