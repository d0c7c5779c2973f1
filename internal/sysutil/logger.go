package sysutil

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 未初始化前为 no-op，库代码和测试可直接使用
var Log = zap.NewNop()
var LogSugar = Log.Sugar()

// InitLogger level: debug|info|warn|error, format: console|json
// CLI 传入 stderr，stdout 留给 -l / -d 的表格输出
func InitLogger(level, format string, w io.Writer) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder // 格式化时间输出

	var encoder zapcore.Encoder
	switch format {
	case "", "console":
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder // 彩色级别
		encoder = zapcore.NewConsoleEncoder(config.EncoderConfig)
	case "json":
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewJSONEncoder(config.EncoderConfig)
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	Log = zap.New(core, zap.AddCaller())
	LogSugar = Log.Sugar()
	return nil
}

// Or 返回 l，l 为 nil 时返回全局 Log
func Or(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	return Log
}
