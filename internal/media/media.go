// Package media uploads user images (wallet art, transaction icons, profile
// pictures) to the external media host and returns public URLs.
package media

import "context"

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}
