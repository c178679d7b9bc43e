package utils

import (
	"testing"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "整数", input: "5", expected: "5.00"},
		{name: "一位小数", input: "5.9", expected: "5.90"},
		{name: "两位小数", input: "5.99", expected: "5.99"},
		{name: "零", input: "0", expected: "0.00"},
		{name: "带空白", input: " 12.30 ", expected: "12.30"},
		{name: "空字符串", input: "", wantErr: true},
		{name: "纯空白", input: "   ", wantErr: true},
		{name: "负数", input: "-1", wantErr: true},
		{name: "带加号", input: "+5", wantErr: true},
		{name: "三位小数", input: "5.123", wantErr: true},
		{name: "缺少整数部分", input: ".50", wantErr: true},
		{name: "非数字", input: "abc", wantErr: true},
		{name: "多个小数点", input: "1.2.3", wantErr: true},
		{name: "小数部分非数字", input: "1.x2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NormalizePrice(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for input %q, got %q", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}
