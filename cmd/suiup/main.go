package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
)

// Build information, set at build time with
//
//	-ldflags "-X main.buildVer=v1.2.3 -X main.buildCommit=$(git rev-parse HEAD) ..."
//
// Empty values fall back to what the Go toolchain embedded in the binary.
var (
	buildVer       = ""
	buildCommit    = ""
	buildTreeState = ""
	buildDate      = ""
	buildBy        = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(buildVersion(buildVer, buildCommit, buildDate, buildBy, buildTreeState)).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperr.Format(err))
		os.Exit(1)
	}
}
