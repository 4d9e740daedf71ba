package models

// ResourceFileInfo identifies a resource file stored in an environment
type ResourceFileInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ResourceFileList is the envelope returned when listing resource files
type ResourceFileList struct {
	ResourceFiles []ResourceFileInfo `json:"resourceFile"`
}

// ResourceFile is a resource file together with its content
type ResourceFile struct {
	ResourceFileInfo
	Content string `json:"content"`
}
