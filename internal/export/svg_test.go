package export

import (
	"strings"
	"testing"

	"github.com/marodr/coiltrace/internal/analysis"
	"github.com/marodr/coiltrace/internal/coils"
)

func TestPoincareSVG(t *testing.T) {
	section := &analysis.PoincareSection{
		Points: []struct{ R, Z float64 }{{1.0, 0.1}, {1.1, -0.1}, {1.05, 0}},
	}
	svg := PoincareSVG(section, 400, 300, "#00ff00")
	if !strings.HasPrefix(svg, `<?xml`) || !strings.Contains(svg, "<svg") {
		t.Fatalf("not an SVG document: %q", svg[:40])
	}
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Fatalf("circles = %d, want 3", got)
	}
	if PoincareSVG(&analysis.PoincareSection{}, 400, 300, "#fff") != "" {
		t.Error("empty section should render nothing")
	}
}

func TestCoilsSVG(t *testing.T) {
	curves, err := coils.CircularArray(2, 1, 1.0, 0.3, 24, 2, true)
	if err != nil {
		t.Fatal(err)
	}
	cs, err := coils.NewCoilSet(curves, []float64{1e5, 1e5})
	if err != nil {
		t.Fatal(err)
	}
	svg := CoilsSVG(cs, 400, 400, "#00ccff")
	if got := strings.Count(svg, "<path"); got != cs.NumCoils() {
		t.Fatalf("paths = %d, want %d", got, cs.NumCoils())
	}
}
