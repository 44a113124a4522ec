// Package api is the HTTP client for the picture service.
//
// The service owns everything that is not editing: persistence, resampling
// of uploaded photos, palette quantization and export rendering. This
// package wraps its endpoints:
//
//   - POST /save: create a picture, returns its key
//   - PUT /save: update the picture with the given key
//   - POST /sample: multipart upload, returns the photo resampled to a grid
//   - POST /image_to_pixels: quantize a grid to a palette
//   - POST /delete: delete a picture
//   - POST /download: render a picture with a numbered grid for export
//
// Every request carries the configured CSRF token as the X-CSRFToken header.
//
// # Error Handling
//
// Transport failures wrap ErrNetwork. Non-2xx answers are returned as
// *StatusError carrying the service's "error" or "message" text. Responses
// are not retried.
package api
