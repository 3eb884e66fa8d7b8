// Package fingerprint defines the 64-bit perceptual fingerprint, its Hamming
// distance, and the image decode + hash capability used by the hashing stage.
//
// Decoding goes through imaging (EXIF auto-orientation) with the standard
// gif/jpeg/png decoders plus golang.org/x/image bmp and webp registered;
// hashing is goimagehash's DCT perceptual hash. Callers depend on the
// Fingerprinter interface so tests can count or fake decodes.
package fingerprint
