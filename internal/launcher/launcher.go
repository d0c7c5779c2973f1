package launcher

import (
	"fmt"

	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/initmaster/USBPlugEvent/internal/sysutil"
	"go.uber.org/zap"
)

// Launcher 通过命令解释器以分离方式启动命令，不等待结束
type Launcher struct {
	shell string
	log   *zap.Logger
}

// New shell 为空时使用平台默认解释器 (/bin/sh 或 cmd.exe)
func New(shell string, log *zap.Logger) *Launcher {
	if shell == "" {
		shell = defaultShell
	}
	return &Launcher{shell: shell, log: sysutil.Or(log)}
}

// Launch 进程创建返回后立即返回，命令字符串不做任何转义
func (l *Launcher) Launch(command string) error {
	cmd := l.command(command)
	// 不继承控制台，stdio 全部指向 null 设备
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrLaunchFailed, l.shell, err)
	}

	pid := cmd.Process.Pid
	l.log.Debug("command started", zap.Int("pid", pid), zap.String("shell", l.shell))
	// 只负责回收子进程，退出码不上报
	go func() {
		_ = cmd.Wait()
		l.log.Debug("command exited", zap.Int("pid", pid))
	}()
	return nil
}

func (l *Launcher) Shell() string { return l.shell }
