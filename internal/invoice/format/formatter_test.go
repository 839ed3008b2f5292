package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceNumberUsesPeriodAndPaddedSequence(t *testing.T) {
	period := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	got, err := InvoiceNumber("inv", period, 7)
	require.NoError(t, err)
	assert.Equal(t, "INV-202403-007", got)

	got, err = InvoiceNumber("", period, 1234)
	require.NoError(t, err)
	assert.Equal(t, "INV-202403-1234", got)
}

func TestFormatInvoiceNumberRejectsBadInput(t *testing.T) {
	period := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	_, err := FormatInvoiceNumber("", "INV", period, 1)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber(DefaultInvoiceNumberTemplate, "INV", period, 0)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("{PREFIX}-{UNKNOWN}", "INV", period, 1)
	assert.Error(t, err)
}

func TestParseSequence(t *testing.T) {
	seq, ok := ParseSequence("INV", "INV-202401-042")
	require.True(t, ok)
	assert.Equal(t, int64(42), seq)

	_, ok = ParseSequence("RENT", "INV-202401-042")
	assert.False(t, ok)

	_, ok = ParseSequence("INV", "manual-1")
	assert.False(t, ok)
}

func TestMaxSequence(t *testing.T) {
	numbers := []string{"INV-202401-001", "INV-202402-012", "RENT-202402-099", "junk"}
	assert.Equal(t, int64(12), MaxSequence("INV", numbers))
	assert.Equal(t, int64(0), MaxSequence("OTHER", numbers))
}
