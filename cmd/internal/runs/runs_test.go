package runs

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hailam/chessmagic/internal/searchlog"
)

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	PrintRuns(&buf, []searchlog.Run{{
		ID:         "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Class:      "rook",
		Bits:       12,
		Seed:       "1",
		Candidates: "sparse",
		Trials:     1234567,
		DurationMS: 2500,
		CreatedAt:  time.Now().Add(-time.Hour),
	}})
	out := buf.String()
	for _, want := range []string{"6ba7b810", "rook", "1,234,567", "2.5s", "hour ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("runs output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintSquares(&buf, []searchlog.Square{{Square: "a1", Magic: "0x0080001020400080", MaskBits: 12, Trials: 42, Distinct: 49}})
	if out := buf.String(); !strings.HasPrefix(out, "a1  0x0080001020400080 12 bits") {
		t.Errorf("squares output = %q", out)
	}
}
