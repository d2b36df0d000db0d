package media

type Video struct {
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	Thumbnail *string `json:"thumbnail"`
}
