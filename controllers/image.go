package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxImageRedirects = 5

var (
	errDisallowedURL    = errors.New("url is not allowed")
	errTooManyRedirects = errors.New("too many redirects")
)

// allowedImageURL accepts only https URLs on exactly the configured host,
// without credentials.
func allowedImageURL(raw, host string) (*url.URL, error) {
	if host == "" || raw == "" {
		return nil, errDisallowedURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errDisallowedURL
	}
	if u.Scheme != "https" || u.User != nil || !strings.EqualFold(u.Host, host) {
		return nil, errDisallowedURL
	}
	return u, nil
}

// ProxyImage fetches an image from the image host on behalf of a signed-in
// caller so that private objects can be shown in the browser.
func (h *Handler) ProxyImage(c *gin.Context) {
	target, err := allowedImageURL(c.Query("url"), h.Config.ImageHost)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or disallowed image URL"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or disallowed image URL"})
		return
	}
	resp, err := h.imageClient().Do(req)
	if err != nil {
		log.Printf("image proxy: fetch %s: %v", target.Redacted(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch image"})
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		log.Printf("image proxy: %s answered %d", target.Redacted(), resp.StatusCode)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch image"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL does not point to an image"})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, nil)
}

// imageClient wraps the shared client so that every redirect hop is held to
// the same host rules as the requested URL.
func (h *Handler) imageClient() *http.Client {
	client := *h.HTTPClient
	host := h.Config.ImageHost
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxImageRedirects {
			return errTooManyRedirects
		}
		if _, err := allowedImageURL(req.URL.String(), host); err != nil {
			return fmt.Errorf("redirect to %s: %w", req.URL.Redacted(), err)
		}
		return nil
	}
	return &client
}
