package domain

import "strconv"

// ServiceCategory is an entry of the fixed service category enumeration
type ServiceCategory struct {
	ID   int
	Name string
}

// ServiceCategories is not fetched from the backend.
var ServiceCategories = []ServiceCategory{
	{ID: 1, Name: "Medical Consultations"},
	{ID: 2, Name: "Diagnostic Services"},
	{ID: 3, Name: "Preventive Health Services"},
	{ID: 4, Name: "Treatment Services"},
	{ID: 5, Name: "Mental Health Services"},
}

// ServiceCategoryName returns the display name for a category id, or "" if unknown
func ServiceCategoryName(id int) string {
	for _, c := range ServiceCategories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// FileType is an entry of the static file type table used by document types
type FileType struct {
	ID   int
	Name string
	Ext  string
	Mime string
}

// FileTypes lists every file type a document type may accept
var FileTypes = []FileType{
	{ID: 1, Name: "Plain Text", Ext: ".txt", Mime: "text/plain"},
	{ID: 2, Name: "JSON", Ext: ".json", Mime: "application/json"},
	{ID: 3, Name: "XML", Ext: ".xml", Mime: "application/xml"},
	{ID: 4, Name: "PDF", Ext: ".pdf", Mime: "application/pdf"},
	{ID: 5, Name: "JPEG", Ext: ".jpeg", Mime: "image/jpeg"},
	{ID: 6, Name: "JPG", Ext: ".jpg", Mime: "image/jpeg"},
	{ID: 7, Name: "PNG", Ext: ".png", Mime: "image/png"},
	{ID: 8, Name: "GIF", Ext: ".gif", Mime: "image/gif"},
	{ID: 9, Name: "SVG", Ext: ".svg", Mime: "image/svg+xml"},
	{ID: 10, Name: "MP3", Ext: ".mp3", Mime: "audio/mpeg"},
	{ID: 11, Name: "WAV", Ext: ".wav", Mime: "audio/wav"},
	{ID: 12, Name: "MP4", Ext: ".mp4", Mime: "video/mp4"},
	{ID: 13, Name: "MOV", Ext: ".mov", Mime: "video/quicktime"},
	{ID: 14, Name: "Word", Ext: ".doc", Mime: "application/msword"},
	{ID: 15, Name: "Excel", Ext: ".xls", Mime: "application/vnd.ms-excel"},
	{ID: 16, Name: "ZIP", Ext: ".zip", Mime: "application/zip"},
	{ID: 17, Name: "Word (DOCX)", Ext: ".docx", Mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	{ID: 18, Name: "CSV", Ext: ".csv", Mime: "text/csv"},
}

// FileTypeLabel renders a file type id as "Name (.ext)"
func FileTypeLabel(id string) string {
	n, err := strconv.Atoi(id)
	if err != nil {
		return id
	}
	for _, ft := range FileTypes {
		if ft.ID == n {
			return ft.Name + " (" + ft.Ext + ")"
		}
	}
	return id
}
