package labapi

import "strings"

// ImageURL builds the public URL of an uploaded image from the API base URL:
// ("http://10.0.0.5:5000/api", "uploads/equipment/a.jpg") ->
// "http://10.0.0.5:5000/uploads/equipment/a.jpg". An empty path yields "".
func ImageURL(baseURL, imagePath string) string {
	if imagePath == "" {
		return ""
	}

	base := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")

	return base + "/" + strings.TrimLeft(imagePath, "/")
}
