package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger sends logs to stderr in debug mode and to LogFile otherwise, so the
// live progress display is never interleaved with log lines.
func InitLogger(debug bool) (io.Closer, error) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		SetLogOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		SetLogOutput(io.Discard)
		return io.NopCloser(nil), err
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return f, nil
}

func SetLogOutput(w io.Writer) {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}
