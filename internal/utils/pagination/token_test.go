package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Test case 1: Standard values
	journalDate := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(journalDate, 42)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedDate, decodedSeq, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, journalDate, decodedDate, "Journal date should match after decode")
	assert.Equal(t, int64(42), decodedSeq, "Sequence should match after decode")

	// Test case 2: Zero values
	zeroToken := EncodeToken(time.Time{}, 0)
	decodedZeroDate, decodedZeroSeq, err := DecodeToken(zeroToken)
	assert.NoError(t, err, "Decoding zero values should not return an error")
	assert.Equal(t, time.Time{}, decodedZeroDate)
	assert.Equal(t, int64(0), decodedZeroSeq)
}

func TestDecodeTokenError(t *testing.T) {
	// Test invalid base64
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test invalid format (missing separator)
	invalidToken := base64.StdEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z"))
	_, _, err = DecodeToken(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Test invalid date format
	invalidDateToken := base64.StdEncoding.EncodeToString([]byte("notadate|7"))
	_, _, err = DecodeToken(invalidDateToken)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "journal date parse", "Error should mention date parsing issue")

	// Test invalid sequence
	invalidSeqToken := base64.StdEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z|x"))
	_, _, err = DecodeToken(invalidSeqToken)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sequence parse")
}

func TestAfter(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.True(t, After(day.Add(time.Hour), 1, day, 9))
	assert.False(t, After(day.Add(-time.Hour), 10, day, 9))
	assert.True(t, After(day, 10, day, 9))
	assert.False(t, After(day, 9, day, 9))
}
