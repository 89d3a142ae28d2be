package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/coursebridge/api/services"
	"github.com/coursebridge/api/services/storage"
	"github.com/coursebridge/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// ImportHandler accepts CSV equivalency feeds and hands the parsed rows to
// the ingest service. CSV framing lives here, at the transport boundary;
// the service only ever sees flat records.
type ImportHandler struct {
	service *services.IngestService
	archive *storage.ArchiveClient
}

// NewImportHandler creates a new import handler. The archive client is
// optional; without it raw feeds are not retained.
func NewImportHandler(service *services.IngestService, archive *storage.ArchiveClient) *ImportHandler {
	return &ImportHandler{
		service: service,
		archive: archive,
	}
}

// ImportCSV handles POST /api/v1/import (multipart form, field "file")
func (h *ImportHandler) ImportCSV(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Could not read uploaded file")
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return response.BadRequest(c, "Could not read uploaded file")
	}

	records, err := ParseCSV(bytes.NewReader(raw))
	if err != nil {
		return response.BadRequest(c, fmt.Sprintf("Malformed CSV: %v", err))
	}

	result, err := h.service.Ingest(c.UserContext(), records)
	if err != nil {
		log.Printf("Import failed: %v", err)
		return response.InternalServerError(c, "Import failed")
	}

	// Keep the raw feed around for replay/audit, best-effort
	if h.archive != nil {
		key := fmt.Sprintf("imports/%s/%s.csv", time.Now().UTC().Format("2006-01-02"), result.BatchID)
		if _, err := h.archive.UploadBytes(c.UserContext(), key, raw, "text/csv"); err != nil {
			log.Printf("Warning: failed to archive import %s: %v", result.BatchID, err)
		}
	}

	return response.SuccessWithMessage(c,
		fmt.Sprintf("Successfully imported %d course equivalencies", result.Accepted),
		result)
}

// ParseCSV decodes a header-keyed CSV stream into equivalency records.
// Columns are matched by header name, so column order does not matter and
// unknown columns are ignored. Missing values surface as blank fields that
// the ingest service skips per record.
func ParseCSV(r io.Reader) ([]services.EquivalencyRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, validation is per field

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []services.EquivalencyRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}

		records = append(records, services.EquivalencyRecord{
			SourceInstitution: field(row, "source_institution"),
			TargetInstitution: field(row, "target_institution"),
			SourceDepartment:  field(row, "source_department"),
			TargetDepartment:  field(row, "target_department"),
			SourceCode:        field(row, "source_code"),
			SourceTitle:       field(row, "source_title"),
			TargetCode:        field(row, "target_code"),
			TargetTitle:       field(row, "target_title"),
		})
	}

	return records, nil
}
