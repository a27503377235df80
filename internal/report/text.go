package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/obsidianstack/sensorfusion/internal/fusion"
	"github.com/obsidianstack/sensorfusion/internal/runner"
	"github.com/obsidianstack/sensorfusion/pkg/types"
)

const (
	banner    = "--------------------------------------------------------------------------------"
	tableRule = "--------+--------+------------+------------+------"
)

// TextWriter writes one report block per cycle to w.
type TextWriter struct {
	w io.Writer
}

// NewTextWriter returns a TextWriter over w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// OpenAppend opens path for appending, creating it if needed.
func OpenAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", path, err)
	}
	return f, nil
}

// Emit renders c and writes it in a single Write call.
func (t *TextWriter) Emit(c *runner.Cycle) error {
	var b bytes.Buffer
	Render(&b, c)
	if _, err := t.w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("report: write text: %w", err)
	}
	return nil
}

// Render formats one cycle block into b.
func Render(b *bytes.Buffer, c *runner.Cycle) {
	p := c.Params

	fmt.Fprintf(b, "\n\n%s\n", banner)
	fmt.Fprintf(b, "Fused Sensor Algorithm run for sensors reporting at: %sH\n", types.ClockString(c.Time))
	fmt.Fprintf(b, "Run ID ------------- %s\n\n", c.RunID)

	b.WriteString("Sensor Parameters\n")
	fmt.Fprintf(b, "High Limit --------- %s\n", optFloat(p.High))
	fmt.Fprintf(b, "Low Limit ---------- %s\n", optFloat(p.Low))
	if p.StuckThreshold != nil {
		fmt.Fprintf(b, "Stuck Interval ----- %02d\n", *p.StuckThreshold)
	} else {
		b.WriteString("Stuck Interval ----- N/A\n")
	}
	fmt.Fprintf(b, "Q-Support ---------- %d%%\n", p.QSupport)
	fmt.Fprintf(b, "Principal Ratio ---- %d%%\n", p.PrincipalRatio)
	if c.Result != nil {
		fmt.Fprintf(b, "Components Used ---- %d\n", c.Result.Components)
	} else {
		b.WriteString("Components Used ---- N/A\n")
	}
	fmt.Fprintf(b, "Fused Sensor Value - %s\n", FusedText(c))

	b.WriteString("\nSensor Statistics:\n")
	b.WriteString(tableRule + "\n")
	b.WriteString(" Update | Status |   Value    |   Weight   | Name \n")
	b.WriteString(tableRule + "\n")
	for _, g := range types.Groups {
		for _, r := range c.Groups[g] {
			weight := ""
			if g == types.Valid {
				if w, ok := c.Result.Weight(r.Name); ok {
					weight = fmt.Sprintf("%10.4f", w)
				}
			}
			fmt.Fprintf(b, " %sH  | %-6s | %10.4f | %10s | %s\n",
				types.ClockString(r.Time), g.Label(), r.Value, weight, r.Name)
		}
	}
	b.WriteString(tableRule + "\n")
}

// FusedText returns the fused value with four decimals, or the sentinel
// text for a failed cycle.
func FusedText(c *runner.Cycle) string {
	switch {
	case c.Err == nil && c.Result != nil:
		return fmt.Sprintf("%0.4f", c.Result.Value)
	case errors.Is(c.Err, fusion.ErrNoValidData):
		return "N/A"
	case errors.Is(c.Err, fusion.ErrInsufficientContribution):
		return "N/A (Invalid Contribution Rates)"
	case errors.Is(c.Err, fusion.ErrZeroSupport):
		return "N/A (Zero Support)"
	default:
		return "N/A (" + titleReason(c.Reason()) + ")"
	}
}

func optFloat(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%0.4f", *v)
}

// titleReason turns "eigen_no_convergence" into "Eigen No Convergence".
func titleReason(reason string) string {
	words := strings.Split(reason, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
