package util

import "strings"

// NormalizeVideoURL rewrites YouTube watch and share links to the embed
// form the frontend iframes expect. Anything else passes through unchanged.
func NormalizeVideoURL(videoURL string) string {
	if !strings.Contains(videoURL, "youtube.com") && !strings.Contains(videoURL, "youtu.be") {
		return videoURL
	}

	var videoID string
	if idx := strings.Index(videoURL, "v="); idx >= 0 {
		videoID = videoURL[idx+2:]
		if amp := strings.Index(videoID, "&"); amp >= 0 {
			videoID = videoID[:amp]
		}
	} else {
		parts := strings.Split(videoURL, "/")
		videoID = parts[len(parts)-1]
		if q := strings.Index(videoID, "?"); q >= 0 {
			videoID = videoID[:q]
		}
	}

	if videoID == "" {
		return videoURL
	}
	return "https://www.youtube.com/embed/" + videoID
}
