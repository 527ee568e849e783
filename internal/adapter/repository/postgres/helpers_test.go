package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalNumericRoundTrip(t *testing.T) {
	values := []string{"0", "100.50", "-33.34", "0.01", "12345678.99"}

	for _, v := range values {
		d := decimal.RequireFromString(v)

		n := decimalToNumeric(d)
		require.True(t, n.Valid, "numeric for %s should be valid", v)

		back := numericToDecimal(n)
		assert.True(t, d.Equal(back), "round trip of %s produced %s", v, back)
	}
}

func TestNumericToDecimalInvalid(t *testing.T) {
	assert.True(t, numericToDecimal(pgtype.Numeric{}).IsZero())
	assert.Nil(t, numericToDecimalPtr(pgtype.Numeric{}))
}

func TestDecimalPtrToNumeric(t *testing.T) {
	assert.False(t, decimalPtrToNumeric(nil).Valid)

	d := decimal.RequireFromString("25.5")
	n := decimalPtrToNumeric(&d)
	require.True(t, n.Valid)

	ptr := numericToDecimalPtr(n)
	require.NotNil(t, ptr)
	assert.True(t, d.Equal(*ptr))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isUniqueViolation(errors.New("plain error")))
}
