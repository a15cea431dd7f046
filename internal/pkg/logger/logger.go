package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// Options controla o comportamento do logger na inicialização.
type Options struct {
	// Level é o nível mínimo: trace, debug, info, warn, error. Padrão "info".
	Level string
	// Pretty habilita saída legível no console em vez de JSON puro.
	Pretty bool
	// Output é o destino dos logs. Padrão os.Stdout.
	Output io.Writer
}

// ZeroLogger implementa Logger sobre o zerolog, emitindo JSON estruturado.
type ZeroLogger struct {
	zl zerolog.Logger
}

// NewLogger cria um logger JSON em stdout com o nível informado.
func NewLogger(level string) Logger {
	return New(Options{Level: level})
}

// New cria um logger a partir das opções.
func New(opts Options) *ZeroLogger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(out).
		Level(parseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()

	return &ZeroLogger{zl: zl}
}

// NewNop devolve um logger que descarta tudo. Útil em testes.
func NewNop() Logger {
	return &ZeroLogger{zl: zerolog.Nop()}
}

// With devolve um logger filho com campos fixos (e.g., request_id).
func (l *ZeroLogger) With(fields map[string]interface{}) Logger {
	return &ZeroLogger{zl: l.zl.With().Fields(fields).Logger()}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error) {
	l.zl.Error().Err(err).Msg(msg)
}

// Fatal registra a mensagem e encerra o processo com código 1.
func (l *ZeroLogger) Fatal(msg string, err error) {
	l.zl.Fatal().Err(err).Msg(msg)
}

// parseLevel converte o nome do nível; valores desconhecidos caem em info.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
