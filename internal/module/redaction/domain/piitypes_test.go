package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePIITypes(t *testing.T) {
	data := []byte("* Credit card numbers\n* Names\n\n  * Email addresses  \nPhone numbers\n\n")

	types := ParsePIITypes(data)

	assert.Equal(t, []string{
		"Credit card numbers",
		"Names",
		"Email addresses",
		"Phone numbers",
	}, types)
}

func TestParsePIITypes_Empty(t *testing.T) {
	assert.Empty(t, ParsePIITypes(nil))
	assert.Empty(t, ParsePIITypes([]byte("\n\n* \n")))
}

func TestAllTags_Count(t *testing.T) {
	assert.Len(t, AllTags(), 14)
}
