package log

import (
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init builds the process logger: JSON lines on stdout, mirrored to file when
// one is configured.
func Init(level, file string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)

	var fileErr error
	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fileErr = err
		} else {
			sinks = append(sinks, zapcore.AddSync(f))
		}
	}
	core := zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(sinks...), lvl)
	Swap(zap.New(core))
	// stdout logging stays usable even when the file sink failed
	return fileErr
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Swap replaces the process logger and returns a func restoring the previous one.
func Swap(l *zap.Logger) (restore func()) {
	mu.Lock()
	prev := base
	base = l
	mu.Unlock()
	return func() {
		mu.Lock()
		base = prev
		mu.Unlock()
	}
}

func write(level zapcore.Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := L()
	if ce := l.Check(level, action); ce != nil {
		zf := make([]zap.Field, 0, 8)
		zf = append(zf, zap.String("action", action))
		if c != nil {
			zf = append(zf,
				zap.String("ip", c.IP()),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().StatusCode()),
			)
			if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
				zf = append(zf, zap.String("req_id", rid))
			}
		}
		if err != nil {
			zf = append(zf, zap.String("err", err.Error()))
		}
		if len(fields) > 0 {
			zf = append(zf, zap.Any("fields", fields))
		}
		ce.Write(zf...)
	}
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, c, action, nil, fields)
}

// Audit records a state change an operator may need to reconstruct later.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	fields = withKind(fields, "audit")
	write(zapcore.InfoLevel, c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.WarnLevel, c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zapcore.ErrorLevel, c, action, err, fields)
}

func withKind(fields map[string]any, kind string) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["kind"] = kind
	return out
}
