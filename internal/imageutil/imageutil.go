// Package imageutil — детерминированные локальные преобразования изображений
// (decode/resize/compress), без обращения к внешним сервисам.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Пресеты обработки загрузок.
const (
	WardrobeMaxWidth  = 800
	WardrobeMaxHeight = 800
	WardrobeQuality   = 85

	ModelMaxWidth  = 1080
	ModelMaxHeight = 1920
	ModelQuality   = 90

	ThumbnailWidth  = 300
	ThumbnailHeight = 300
)

// Decode разбирает JPEG или PNG и возвращает изображение и имя формата.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Resize вписывает изображение в maxW×maxH с сохранением пропорций.
// Изображение меньше лимитов не увеличивается.
func Resize(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(float64(w) * ratio)
	nh := int(float64(h) * ratio)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Thumbnail масштабирует изображение с обрезкой до точного размера w×h
// (cover: короткая сторона вписывается, излишек по центру отсекается).
func Thumbnail(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()

	ratio := max(float64(w)/float64(sw), float64(h)/float64(sh))
	scaledW := int(float64(sw) * ratio)
	scaledH := int(float64(sh) * ratio)

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)

	x0 := (scaledW - w) / 2
	y0 := (scaledH - h) / 2
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), scaled, image.Pt(x0, y0), draw.Src)
	return dst
}

// Enhance делает мягкое растяжение контраста вокруг середины диапазона.
func Enhance(img image.Image) image.Image {
	const factor = 1.08

	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)

	px := dst.Pix
	for i := 0; i < len(px); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(px[i+c])
			v = (v-128)*factor + 128
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			px[i+c] = uint8(v)
		}
	}
	return dst
}

// EncodeJPEG кодирует изображение в JPEG с заданным качеством (1–100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG кодирует изображение в PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ProcessUpload decode → fit-inside resize → JPEG. Общий путь всех загрузок.
func ProcessUpload(data []byte, maxW, maxH, quality int) ([]byte, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(Resize(img, maxW, maxH), quality)
}
