// ReelCut - paper reel slitting planner
//
// Plans how to slit wide paper reels into customer widths using as few
// source reels as possible, and exports the plan as PDF, labels, Excel
// or DXF.
//
// Build:
//   go build -o reelcut ./cmd/reelcut

package main

import "github.com/piwi3910/ReelCut/internal/cli"

func main() {
	cli.Execute()
}
