package zalimport

import (
	"fmt"
	"io"
	"strings"
)

const progressBarLength = 40

// ProgressBar returns a ProgressFunc rendering a single-line progress bar
// on w, rewriting the line with each update.
func ProgressBar(w io.Writer) ProgressFunc {
	return func(progress, total int) {
		if total == 0 {
			total = 1
			progress = 1
		}

		filled := int(float64(progressBarLength)*float64(progress)/float64(total) + 0.5)
		if filled > progressBarLength {
			filled = progressBarLength
		}
		bar := strings.Repeat("#", filled) + strings.Repeat("-", progressBarLength-filled)
		fmt.Fprintf(w, "\rProgress: [%s] %d/%d", bar, progress, total)
	}
}
