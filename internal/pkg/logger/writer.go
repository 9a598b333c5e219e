package logger

import (
	"fmt"

	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// LogWriter 将 gorm 日志写入同一输出
type LogWriter struct {
	zapcore.WriteSyncer
}

func (l *LogWriter) Printf(format string, args ...interface{}) {
	_, _ = l.WriteSyncer.Write([]byte(fmt.Sprintf(format, args...)))
	_, _ = l.WriteSyncer.Write([]byte("\n"))
	_ = l.WriteSyncer.Sync()
}

// GetWriter 未初始化时返回 nil, 由调用方回退到 gorm 默认日志
func GetWriter() gormlogger.Writer {
	if logWriter == nil {
		return nil
	}
	return logWriter
}
