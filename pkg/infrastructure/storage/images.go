// Package storage derives public URLs for catalog images stored in a
// blob-storage bucket. Uploads themselves are handled by the admin
// surface and are not part of this package.
package storage

import (
	"fmt"
	"strings"
)

// ImageResolver maps bucket paths to public URLs
type ImageResolver struct {
	baseURL string
	bucket  string
}

// NewImageResolver creates a resolver for the given storage host and bucket
func NewImageResolver(baseURL, bucket string) *ImageResolver {
	return &ImageResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
	}
}

// PublicURL returns the public URL for a bucket path, or "" for no image
func (r *ImageResolver) PublicURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return fmt.Sprintf("%s/%s/%s", r.baseURL, r.bucket, strings.TrimLeft(path, "/"))
}
