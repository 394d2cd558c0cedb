// Package bmp implements a zero-allocation BMP (Windows Bitmap) decoder.
package bmp
