//go:build windows

package launcher

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

const defaultShell = "cmd.exe"

func (l *Launcher) command(command string) *exec.Cmd {
	cmd := exec.Command(l.shell)
	// cmd.exe 自己解析命令行，不能让 exec 再做一次引号转义
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine:       syscall.EscapeArg(l.shell) + " /C " + command,
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
	return cmd
}
