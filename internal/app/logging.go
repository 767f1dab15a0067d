package app

import (
	"io"
	"log"
	"os"

	"github.com/ecosnap/backend/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging points the standard logger at stdout, and also at a rotating
// file when cfg.File is set. The returned closer releases the file.
func SetupLogging(cfg config.LogConfig) io.Closer {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if cfg.File == "" {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}

	logFile := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	return logFile
}
