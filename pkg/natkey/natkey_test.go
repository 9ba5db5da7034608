// Copyright (c) 2026 Library. All rights reserved.

package natkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zrecovery/library-sub000/pkg/natkey"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Lu Xun", "Lu Xun"},
		{"surrounding_space", "  Lu Xun \n", "Lu Xun"},
		{"interior_space_kept", "Lu  Xun", "Lu  Xun"},
		{"case_kept", "lu xun", "lu xun"},
		{"decomposed_to_composed", "Jose\u0301", "Jos\u00e9"},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, natkey.Normalize(tt.in))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, natkey.Equal(" Jose\u0301", "Jos\u00e9 "))
	assert.False(t, natkey.Equal("Series", "series"))
}
