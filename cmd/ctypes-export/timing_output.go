package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jordan9001/ctypes-export/internal/export"
)

func printStageTimings(out io.Writer, timings export.Timings) {
	if out == nil {
		return
	}
	var printErr error
	if timings.Has(export.StageSelect) {
		_, printErr = fmt.Fprintf(out, "selected %.1f ms\n", toMillis(timings.Duration(export.StageSelect)))
		if printErr != nil {
			panic(printErr)
		}
	}
	if timings.Has(export.StageClassify) || timings.Has(export.StageResolve) {
		planned := timings.Sum(export.StageClassify, export.StageResolve)
		_, printErr = fmt.Fprintf(out, "planned %.1f ms\n", toMillis(planned))
		if printErr != nil {
			panic(printErr)
		}
	}
	if timings.Has(export.StageEmit) {
		_, printErr = fmt.Fprintf(out, "emitted %.1f ms\n", toMillis(timings.Duration(export.StageEmit)))
		if printErr != nil {
			panic(printErr)
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
