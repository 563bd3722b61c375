package chart

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/abelbrown/chainpulse/internal/layout"
	"github.com/abelbrown/chainpulse/internal/sentiment"
)

// WriteSVG writes nodes as a standalone SVG document sized to the canvas
// in opts. Each bubble carries its tooltip text as a native <title>.
func WriteSVG(w io.Writer, nodes []layout.Node, opts Options) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(opts.Width), num(opts.Height), num(opts.Width), num(opts.Height))
	fmt.Fprintf(bw, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", opts.Background.Hex())

	if len(nodes) == 0 {
		fmt.Fprintf(bw, `  <text x="%s" y="%s" text-anchor="middle" fill="#9ca3af">%s</text>`+"\n",
			num(opts.Width/2), num(opts.Height/2), esc(EmptyMessage))
	}

	for _, n := range nodes {
		fmt.Fprintf(bw, `  <g class="bubble" transform="translate(%s, %s)">`+"\n", num(n.X), num(n.Y))
		fmt.Fprintf(bw, "    <title>%s</title>\n", esc(strings.Join(TooltipLines(n.CoinSummary), "\n")))
		fmt.Fprintf(bw, `    <circle r="%s" fill="%s" stroke="#888" stroke-width="1"/>`+"\n",
			num(n.Radius), opts.Palette.Hex(n.SentimentScore))
		fmt.Fprintf(bw, `    <text text-anchor="middle" dominant-baseline="middle" fill="white" font-weight="bold" font-size="%s">%s</text>`+"\n",
			num(math.Min(n.Radius/2.2, 14)), esc(n.Ticker))
		fmt.Fprintf(bw, `    <text text-anchor="middle" dominant-baseline="middle" dy="%s" fill="white" font-size="%s">%s</text>`+"\n",
			num(n.Radius/3.5), num(math.Min(n.Radius/3.5, 10)), esc(sentiment.Signed(n.SentimentScore, 2)))
		fmt.Fprintln(bw, "  </g>")
	}

	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}

func num(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
