package socialtypes

// FileInfo describes an uploaded object and where it can be fetched.
type FileInfo struct {
	URL      string `json:"url"`      // publicly reachable URL
	Key      string `json:"key"`      // storage identifier, passed back to DeleteFile
	Size     int64  `json:"size"`     // bytes
	MimeType string `json:"mimeType"` // MIME type
	FileName string `json:"fileName"` // original file name
}
