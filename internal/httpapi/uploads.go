package httpapi

import (
	"io"
	"net/http"
	"strings"
)

// maxImageBytes caps uploads at 10 MiB, matching the media host's free tier.
const maxImageBytes = 10 << 20

// postImage accepts a raw image body and returns its public URL on the media
// host. Clients then attach the URL to wallets, transactions or profiles.
func (s *Server) postImage(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		writeErr(w, http.StatusServiceUnavailable, "media uploads not configured", "upload_unconfigured")
		return
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(r.Header.Get("Content-Type"), ";")[0]))
	if !strings.HasPrefix(ct, "image/") {
		writeErr(w, http.StatusUnsupportedMediaType, "image content type required", "unsupported_media_type")
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes+1))
	if err != nil {
		badRequest(w, "read body: "+err.Error())
		return
	}
	if len(data) == 0 {
		badRequest(w, "empty body")
		return
	}
	if len(data) > maxImageBytes {
		writeErr(w, http.StatusRequestEntityTooLarge, "image too large", "too_large")
		return
	}
	url, err := s.uploader.Upload(r.Context(), data, ct)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, uploadResponse{URL: url})
}
