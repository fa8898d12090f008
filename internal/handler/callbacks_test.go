package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "watch|AAPL",
			expected: "watch|AAPL",
		},
		{
			name:     "string with whitespace",
			input:    "  more  ",
			expected: "more",
		},
		{
			name:     "telebot prefix",
			input:    "\fwatch|BTC",
			expected: "watch|BTC",
		},
		{
			name:     "string with newline",
			input:    "main\nmenu",
			expected: "mainmenu",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
		{
			name:     "string with unprintable characters",
			input:    "sign\x00out\x01",
			expected: "signout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanCallbackData(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSplitCallbackData(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		unique  string
		payload string
	}{
		{name: "with payload", input: "watch|AAPL", unique: "watch", payload: "AAPL"},
		{name: "payload with separator", input: "watch|A|B", unique: "watch", payload: "A|B"},
		{name: "no payload", input: "more", unique: "more", payload: ""},
		{name: "empty", input: "", unique: "", payload: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unique, payload := splitCallbackData(tt.input)
			assert.Equal(t, tt.unique, unique)
			assert.Equal(t, tt.payload, payload)
		})
	}
}
