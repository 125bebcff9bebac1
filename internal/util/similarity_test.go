package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "hello", "hello", 1},
		{"both empty", "", "", 1},
		{"one empty", "abc", "", 0},
		{"completely different", "abc", "xyz", 0},
		{"one edit", "abcd", "abce", 0.75},
		{"chinese identical", "二次函数", "二次函数", 1},
		{"chinese partial", "二次函数", "一次函数", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 0.001)
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	assert.InDelta(t, Similarity("kitten", "sitting"), Similarity("sitting", "kitten"), 0.001)
}

func TestSimilarityRange(t *testing.T) {
	pairs := [][2]string{
		{"answer", "answers"},
		{"x=2", "x=3"},
		{"短", "很长很长的答案"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}
