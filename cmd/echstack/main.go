// Command echstack combines repeated echelle exposures stored as FITS files
// and applies arithmetic between exposures.
//
// Usage:
//
//	echstack combine <mean|median|biweight> --fnames <file|glob>... --opfname <out> [flags]
//	echstack operation <+|-|*|/> --fnames <file> <file|constant> --opfname <out>
//
// Examples:
//
//	echstack combine mean --fnames 'neidL2_*.fits' --opfname comb.fits --instrument NEID
//	echstack combine median --fnames a.fits b.fits --opfname comb.fits --no-align
//	echstack combine mean --fnames a.fits b.fits --opfname comb.fits --flux-ext '#1' --var-ext '#4' --wave-ext '#7'
//	echstack operation / --fnames a.fits b.fits --opfname ratio.fits
//	echstack operation - --fnames a.fits 100 --opfname sub.fits
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
