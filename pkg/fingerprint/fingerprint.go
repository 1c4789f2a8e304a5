// Package fingerprint derives deterministic cache keys from code
// context snapshots.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/bims2021/AI-Autocode-Completion/pkg/extractor"
)

// previousLineTail bounds how many trailing previous lines enter the
// projection. Older lines are dropped so scrolling far above the
// cursor does not churn the key.
const previousLineTail = 10

// Compute canonicalizes the projected fields of a context and hashes
// them. Contexts differing only outside the projection map to the same
// key; that is what makes cache hits legal.
func Compute(ctx extractor.CodeContext) string {
	var b strings.Builder

	writeField(&b, "line", ctx.CurrentLine)

	prev := ctx.PreviousLines
	if len(prev) > previousLineTail {
		prev = prev[len(prev)-previousLineTail:]
	}
	writeField(&b, "prev", strings.Join(prev, "\n"))

	writeField(&b, "lang", ctx.Language)
	writeField(&b, "func", functionDescriptor(ctx.Function))
	writeField(&b, "class", classDescriptor(ctx.Class))
	writeField(&b, "ext", ctx.FileExtension)
	writeField(&b, "indent", ctx.IndentStyle+":"+strconv.Itoa(ctx.IndentSize))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// writeField length-prefixes each field so adjacent values can never
// collide across field boundaries.
func writeField(b *strings.Builder, name, value string) {
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(strconv.Itoa(len(value)))
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte(';')
}

func functionDescriptor(fn *extractor.FunctionInfo) string {
	if fn == nil {
		return ""
	}
	return fn.Name + "(" + strings.Join(fn.Parameters, ",") + ")" + fn.ReturnType
}

func classDescriptor(cls *extractor.ClassInfo) string {
	if cls == nil {
		return ""
	}
	return cls.Name
}
