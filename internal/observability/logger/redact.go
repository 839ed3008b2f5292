package logger

import (
	"strings"

	"github.com/smallbiznis/rentledger/internal/audit/masking"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redactedValue = "[redacted]"

// redactCore masks recipient addresses before entries reach the encoder.
// String fields keep the masked address; any other field type under a
// redacted key is replaced wholesale.
type redactCore struct {
	zapcore.Core
	keys map[string]struct{}
}

// NewRedactCore wraps core so fields named by keys never log raw addresses.
func NewRedactCore(core zapcore.Core, keys []string) zapcore.Core {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key = strings.ToLower(strings.TrimSpace(key)); key != "" {
			set[key] = struct{}{}
		}
	}
	if len(set) == 0 {
		return core
	}
	return &redactCore{Core: core, keys: set}
}

func (c *redactCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactCore{Core: c.Core.With(c.redact(fields)), keys: c.keys}
}

func (c *redactCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *redactCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(entry, c.redact(fields))
}

func (c *redactCore) redact(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, field := range fields {
		if _, ok := c.keys[strings.ToLower(field.Key)]; !ok {
			continue
		}
		if out == nil {
			out = append([]zapcore.Field(nil), fields...)
		}
		if field.Type == zapcore.StringType {
			out[i] = zap.String(field.Key, masking.MaskEmail(field.String))
			continue
		}
		out[i] = zap.String(field.Key, redactedValue)
	}
	if out == nil {
		return fields
	}
	return out
}
