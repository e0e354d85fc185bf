// AngelaMos | 2026
// dto.go

package document

import (
	"time"
)

type CreateDocumentRequest struct {
	CaseID      string `json:"case_id" validate:"required,uuid"`
	FileName    string `json:"file_name" validate:"required,min=1,max=255"`
	ContentType string `json:"content_type" validate:"max=255"`
	SizeBytes   int64  `json:"size_bytes" validate:"gte=0"`
}

type ConfirmUploadRequest struct {
	SizeBytes int64  `json:"size_bytes" validate:"gte=0"`
	SHA256    string `json:"sha256" validate:"omitempty,len=64,hexadecimal"`
}

type UpdateDocumentRequest struct {
	FileName *string `json:"file_name,omitempty" validate:"omitempty,min=1,max=255"`
}

type DocumentResponse struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	SHA256      string    `json:"sha256,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UploadResponse carries the new record plus the presigned PUT URL the
// client uploads the file body to.
type UploadResponse struct {
	Document  DocumentResponse `json:"document"`
	UploadURL string           `json:"upload_url"`
}

type DownloadResponse struct {
	DownloadURL string `json:"download_url"`
}

type ListDocumentsParams struct {
	Page     int
	PageSize int
	CaseID   string
	Status   string
	Search   string
}

func (p *ListDocumentsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListDocumentsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToDocumentResponse(d *Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		CaseID:      d.CaseID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		SHA256:      d.SHA256,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func ToDocumentResponseList(items []Document) []DocumentResponse {
	responses := make([]DocumentResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToDocumentResponse(&items[i]))
	}
	return responses
}
