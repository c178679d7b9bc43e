package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeTestImage(t *testing.T, format string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	default:
		t.Fatalf("unsupported test format %s", format)
	}
	if err != nil {
		t.Fatalf("failed to encode %s test image: %v", format, err)
	}
	return buf.Bytes()
}

func TestValidateImagePayload(t *testing.T) {
	t.Run("PNG 返回 png 扩展名", func(t *testing.T) {
		ext, err := ValidateImagePayload(encodeTestImage(t, "png"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ext != "png" {
			t.Errorf("expected png, got %s", ext)
		}
	})

	t.Run("JPEG 返回 jpg 扩展名", func(t *testing.T) {
		ext, err := ValidateImagePayload(encodeTestImage(t, "jpeg"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ext != "jpg" {
			t.Errorf("expected jpg, got %s", ext)
		}
	})

	t.Run("空数据被拒绝", func(t *testing.T) {
		if _, err := ValidateImagePayload(nil); err == nil {
			t.Error("expected error for empty payload")
		}
	})

	t.Run("非图片数据被拒绝", func(t *testing.T) {
		if _, err := ValidateImagePayload([]byte("definitely not an image")); err == nil {
			t.Error("expected error for non-image payload")
		}
	})

	t.Run("伪造扩展名的文本被拒绝", func(t *testing.T) {
		// 模拟声称是图片但内容是文本的上传
		payload := []byte("GIF89a but actually truncated garbage")
		if _, err := ValidateImagePayload(payload); err == nil {
			t.Error("expected error for corrupt payload")
		}
	})
}

func TestExtensionForFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"jpeg", "jpg"},
		{"JPEG", "jpg"},
		{"png", "png"},
		{"gif", "gif"},
		{"webp", "webp"},
		{"bmp", "bmp"},
		{"tiff", "img"},
		{"", "img"},
	}
	for _, tt := range tests {
		if got := extensionForFormat(tt.format); got != tt.expected {
			t.Errorf("extensionForFormat(%q) = %q, want %q", tt.format, got, tt.expected)
		}
	}
}
