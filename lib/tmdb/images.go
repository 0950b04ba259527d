package tmdb

import "strings"

// ImageBaseURL is where the catalog serves images.
const ImageBaseURL = "https://image.tmdb.org/t/p/"

// ImageClass selects a default size for an image path.
type ImageClass string

const (
	ImagePoster   ImageClass = "poster"
	ImageBackdrop ImageClass = "backdrop"
	ImageProfile  ImageClass = "profile"
)

var classSizes = map[ImageClass]string{
	ImagePoster:   "w500",
	ImageBackdrop: "w1280",
	ImageProfile:  "w185",
}

// ImageURL builds the URL of an image at the default size for class.
// Absolute URLs are returned as is and an empty path yields fallback.
func ImageURL(path string, class ImageClass, fallback string) string {
	size, ok := classSizes[class]
	if !ok {
		size = classSizes[ImagePoster]
	}
	return ImageURLSize(path, size, fallback)
}

// ImageURLSize is ImageURL with an explicit size token such as "w342" or
// "original".
func ImageURLSize(path, size, fallback string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return fallback
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return ImageBaseURL + size + path
}
