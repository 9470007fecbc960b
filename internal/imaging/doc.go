// Package imaging wraps image decoding and the pixel-level primitives the
// engine needs: grayscale conversion, fixed-grid bilinear downsampling, and
// base64 payload encoding for the judge. Supported formats are JPEG, PNG,
// GIF, and WebP.
package imaging
