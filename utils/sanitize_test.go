package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTextStripsControlCharacters(t *testing.T) {
	assert.Equal(t, "A. Kumar", SanitizeText("A. Kumar\x00\x1b"))
	assert.Equal(t, "line one line two", SanitizeText("line one\nline two"))
	assert.Equal(t, "tabbed value", SanitizeText("tabbed\tvalue"))
}

func TestSanitizeTextFoldsToASCII(t *testing.T) {
	assert.Equal(t, "Jose Munoz", SanitizeText("José Muñoz"))
}

func TestSanitizeTextTrims(t *testing.T) {
	assert.Equal(t, "trimmed", SanitizeText("  trimmed  "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "toolong...", Truncate("toolongvalue", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}
