package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)
	numberRe = regexp.MustCompile(`^(.+)-(\d{6})-(\d+)$`)
)

// DefaultInvoiceNumberTemplate renders numbers such as INV-202403-007.
const DefaultInvoiceNumberTemplate = "{PREFIX}-{YYYY}{MM}-{SEQ3}"

const DefaultPrefix = "INV"

// FormatInvoiceNumber expands template for the given prefix, period and
// sequence. Supported tokens are {PREFIX} {YYYY} {YY} {MM} {DD} {SEQ} and
// {SEQn} for a zero-padded sequence of width n.
func FormatInvoiceNumber(template, prefix string, period time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	prefix = NormalizePrefix(prefix)
	out := strings.ReplaceAll(template, "{PREFIX}", prefix)

	out = strings.ReplaceAll(out, "{YYYY}", period.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", period.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", period.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", period.Format("02"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}
	return out, nil
}

// InvoiceNumber renders the default {PREFIX}-{YYYYMM}-{NNN} number.
func InvoiceNumber(prefix string, period time.Time, seq int64) (string, error) {
	return FormatInvoiceNumber(DefaultInvoiceNumberTemplate, prefix, period, seq)
}

// ParseSequence extracts the run sequence from a default-format number that
// uses prefix. Numbers in other formats report false.
func ParseSequence(prefix, number string) (int64, bool) {
	match := numberRe.FindStringSubmatch(strings.TrimSpace(number))
	if match == nil || match[1] != NormalizePrefix(prefix) {
		return 0, false
	}
	seq, err := strconv.ParseInt(match[3], 10, 64)
	if err != nil || seq <= 0 {
		return 0, false
	}
	return seq, true
}

// MaxSequence returns the highest sequence among numbers that use prefix.
func MaxSequence(prefix string, numbers []string) int64 {
	var highest int64
	for _, n := range numbers {
		if seq, ok := ParseSequence(prefix, n); ok && seq > highest {
			highest = seq
		}
	}
	return highest
}

func NormalizePrefix(prefix string) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return DefaultPrefix
	}
	return prefix
}
