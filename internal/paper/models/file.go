package models

import (
	"strings"
	"time"

	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
)

// FileType identifies the role a file plays for a paper. A paper holds at
// most one file of each type.
type FileType string

const (
	FileTypeInitialSubmission FileType = "initial_submission"
	FileTypeCameraReady       FileType = "camera_ready"
	FileTypeCopyrightForm     FileType = "copyright_form"
)

func (t FileType) IsValid() bool {
	switch t {
	case FileTypeInitialSubmission, FileTypeCameraReady, FileTypeCopyrightForm:
		return true
	default:
		return false
	}
}

func (t FileType) String() string {
	return string(t)
}

var fileTypesByKey = map[string]FileType{
	foldName(string(FileTypeInitialSubmission)): FileTypeInitialSubmission,
	foldName(string(FileTypeCameraReady)):       FileTypeCameraReady,
	foldName(string(FileTypeCopyrightForm)):     FileTypeCopyrightForm,
}

// ParseFileType accepts snake_case, kebab-case and PascalCase spellings,
// case-insensitively.
func ParseFileType(raw string) (FileType, error) {
	t, ok := fileTypesByKey[foldName(raw)]
	if !ok {
		return "", dErrors.New(dErrors.CodeValidation, "unknown file type: "+raw)
	}
	return t, nil
}

// foldName drops case and word separators so "camera_ready", "camera-ready"
// and "CameraReady" compare equal.
func foldName(s string) string {
	return strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// PaperFile records one stored file. StoragePath is the opaque handle issued
// by the file storage provider; OriginalName is for display only.
type PaperFile struct {
	ID           id.FileID  `json:"id"`
	PaperID      id.PaperID `json:"paper_id"`
	Type         FileType   `json:"type"`
	StoragePath  string     `json:"-"`
	OriginalName string     `json:"original_name"`
	Size         int64      `json:"size"`
	UploadedAt   time.Time  `json:"uploaded_at"`
}

// NewPaperFile builds a file record for a freshly stored handle.
func NewPaperFile(paperID id.PaperID, fileType FileType, storagePath, originalName string, size int64, now time.Time) (*PaperFile, error) {
	if !fileType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown file type")
	}
	if storagePath == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "storage path is required")
	}
	if size <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "file is empty")
	}
	return &PaperFile{
		ID:           id.NewFileID(),
		PaperID:      paperID,
		Type:         fileType,
		StoragePath:  storagePath,
		OriginalName: originalName,
		Size:         size,
		UploadedAt:   now,
	}, nil
}
