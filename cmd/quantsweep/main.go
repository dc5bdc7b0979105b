// quantsweep - colour quantisation sweeps over a containerised ImageMagick
//
// quantsweep reduces one image to every colour count in a range and writes
// one output per level, then verifies and collates the results.
package main

import "github.com/jmylchreest/quantsweep/internal/cli"

func main() {
	cli.Execute()
}
