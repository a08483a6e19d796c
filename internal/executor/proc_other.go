//go:build !unix

package executor

import "os/exec"

// configureProcessGroup keeps exec's default cancellation, which kills only
// the shell process itself.
func configureProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) {}
