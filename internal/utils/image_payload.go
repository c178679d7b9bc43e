package utils

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	// 注册标准与扩展的图片解码器，供 image.Decode 嗅探使用
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ValidateImagePayload checks that the uploaded bytes decode as an actual
// image and returns a canonical file extension for the detected format.
// Payloads that merely claim an image content type but do not decode are
// rejected.
func ValidateImagePayload(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image payload is empty")
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("payload is not a decodable image: %w", err)
	}

	return extensionForFormat(format), nil
}

func extensionForFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg":
		return "jpg"
	case "png":
		return "png"
	case "gif":
		return "gif"
	case "webp":
		return "webp"
	case "bmp":
		return "bmp"
	default:
		return "img"
	}
}
