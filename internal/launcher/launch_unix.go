//go:build !windows

package launcher

import (
	"os/exec"
	"syscall"
)

const defaultShell = "/bin/sh"

func (l *Launcher) command(command string) *exec.Cmd {
	cmd := exec.Command(l.shell, "-c", command)
	// 新会话，脱离调用方的控制终端
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd
}
