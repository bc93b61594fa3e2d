// Package files enforces the at-most-one-attachment-per-type rule for a
// registration's file collection and produces the inline listing served to
// clients.
package files

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"log/slog"

	"github.com/google/uuid"

	"regflow/pkg/apperrors"
)

// Attachment is the stored metadata for one file. ID is the opaque storage
// key for the blob.
type Attachment struct {
	ID       string
	Type     string
	FileName string
	MimeType string
	Size     int64
}

// Upload is an incoming file.
type Upload struct {
	FileName string
	MimeType string
	Content  []byte
}

// Summary is one entry of the client-facing listing. ID is a stable hash of
// the filename, and Blob carries the full content inline as a data URI.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Blob string `json:"blob"`
	Type string `json:"type"`
}

// MetaStore persists attachment metadata per session.
type MetaStore interface {
	List(ctx context.Context, sessionID string) ([]Attachment, error)
	Save(ctx context.Context, sessionID string, att Attachment) error
	Delete(ctx context.Context, sessionID, id string) error
}

// BlobStore persists raw attachment bytes by storage key.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

// Manager composes the metadata and blob stores behind the replace-on-type
// policy.
type Manager struct {
	meta   MetaStore
	blobs  BlobStore
	logger *slog.Logger
}

func NewManager(meta MetaStore, blobs BlobStore, logger *slog.Logger) *Manager {
	return &Manager{meta: meta, blobs: blobs, logger: logger}
}

// Replace stores an upload under a semantic type, deleting any previous
// attachment of the same type first. A failed delete aborts before the new
// file is stored so two attachments never share a type.
func (m *Manager) Replace(ctx context.Context, sessionID, fileType string, upload Upload) error {
	existing, err := m.meta.List(ctx, sessionID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageRead, "list attachments", err)
	}

	for _, att := range existing {
		if att.Type != fileType {
			continue
		}
		if err := m.blobs.Remove(ctx, att.ID); err != nil {
			return apperrors.Wrap(apperrors.CodeStorageWrite, "remove replaced attachment blob", err)
		}
		if err := m.meta.Delete(ctx, sessionID, att.ID); err != nil {
			return apperrors.Wrap(apperrors.CodeStorageWrite, "remove replaced attachment", err)
		}
		break
	}

	att := Attachment{
		ID:       uuid.NewString(),
		Type:     fileType,
		FileName: upload.FileName,
		MimeType: upload.MimeType,
		Size:     int64(len(upload.Content)),
	}
	if err := m.blobs.Write(ctx, att.ID, upload.Content); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageWrite, "store attachment blob", err)
	}
	if err := m.meta.Save(ctx, sessionID, att); err != nil {
		// Keep the type slot consistent: a metadata failure must not leave an
		// orphaned blob behind.
		if removeErr := m.blobs.Remove(ctx, att.ID); removeErr != nil {
			m.logger.WarnContext(ctx, "orphaned attachment blob after failed save",
				"session_id", sessionID,
				"blob_id", att.ID,
				"error", removeErr.Error(),
			)
		}
		return apperrors.Wrap(apperrors.CodeStorageWrite, "store attachment", err)
	}
	return nil
}

// ListByType reads every attachment of the registration and groups the
// summaries by semantic type. The content is read fully before encoding; any
// read failure fails the whole listing.
func (m *Manager) ListByType(ctx context.Context, sessionID string) (map[string][]Summary, error) {
	attachments, err := m.meta.List(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageRead, "list attachments", err)
	}

	out := make(map[string][]Summary, len(attachments))
	for _, att := range attachments {
		content, err := m.blobs.Read(ctx, att.ID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorageRead, "read attachment content", err)
		}
		sum := md5.Sum([]byte(att.FileName))
		out[att.Type] = append(out[att.Type], Summary{
			ID:   hex.EncodeToString(sum[:]),
			Name: att.FileName,
			Size: att.Size,
			Blob: "data:image/jpg;base64," + base64.StdEncoding.EncodeToString(content),
			Type: att.MimeType,
		})
	}
	return out, nil
}
