package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_Deterministic(t *testing.T) {
	inputs := []string{"", "449", "line one\nline two", "ünïcödé"}
	for _, in := range inputs {
		assert.Equal(t, Hash(in), Hash(in))
		assert.Len(t, Hash(in), 64)
	}
}

func TestHash_KnownValue(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", Hash("hello"))
}

func TestCombined_OrderAndSeparator(t *testing.T) {
	a := Segment{Name: "price", Content: "449"}
	b := Segment{Name: "title", Content: "Widget"}

	assert.Equal(t, Hash("price:449\n---\ntitle:Widget"), Combined([]Segment{a, b}))
	assert.NotEqual(t, Combined([]Segment{a, b}), Combined([]Segment{b, a}))
}
