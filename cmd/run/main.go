package main

import "github.com/zintix-labs/spinlab/sdk/perf"

// makefile runner
func main() {
	bindVar()
	perf.RunPProf(executeSimulator, cfg.pprofmode)
}
