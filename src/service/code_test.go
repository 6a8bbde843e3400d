package service

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestCodeEqual(t *testing.T) {
	assert.True(t, CodeEqual("1234", "1234"))
	assert.False(t, CodeEqual("1234", "1235"))
	assert.False(t, CodeEqual("123", "1234"))
	assert.False(t, CodeEqual("", ""))
}
