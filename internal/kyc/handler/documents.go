package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"

	"kycgate/internal/kyc"
	dErrors "kycgate/pkg/domain-errors"
)

// parseDocumentBatch validates the files-vs-metadata pairing before any store
// mutation. The counts must match exactly and every metadata entry must be
// well formed: silently dropping documents would corrupt the legal record, so
// any defect rejects the whole batch.
func parseDocumentBatch(files []*multipart.FileHeader, metaValues []string) ([]kyc.Document, error) {
	if len(files) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no documents provided")
	}
	if len(metaValues) != len(files) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "document metadata count does not match file count")
	}

	docs := make([]kyc.Document, len(files))
	seen := make([]bool, len(files))
	for _, raw := range metaValues {
		var meta DocumentMeta
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "malformed document metadata")
		}
		if meta.Index == nil || *meta.Index < 0 || *meta.Index >= len(files) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "document metadata index out of range")
		}
		idx := *meta.Index
		if seen[idx] {
			return nil, dErrors.New(dErrors.CodeBadRequest, "duplicate document metadata index")
		}
		seen[idx] = true

		docType, err := kyc.ParseDocumentType(meta.Type)
		if err != nil {
			return nil, err
		}

		image, contentType, err := readUpload(files[idx])
		if err != nil {
			return nil, err
		}
		docs[idx] = kyc.Document{
			Type:           docType,
			Image:          image,
			ContentType:    contentType,
			DocumentNumber: meta.DocumentNumber,
		}
	}
	return docs, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", dErrors.New(dErrors.CodeBadRequest, "failed to read uploaded file")
	}
	defer f.Close()
	image, err := io.ReadAll(f)
	if err != nil {
		return nil, "", dErrors.New(dErrors.CodeBadRequest, "failed to read uploaded file")
	}
	return image, fh.Header.Get("Content-Type"), nil
}
