package app

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"studyhub/internal/store"
	"studyhub/pkg/domain"
)

// UploadPaperInput carries a past-paper upload.
type UploadPaperInput struct {
	Course      string
	Year        int
	Institution string
	Filename    string
	Data        []byte
}

// UploadPaper validates the PDF, stores the file, creates the paper record,
// awards points, and logs the activity. The steps are not atomic: a later
// step failing leaves the earlier ones in place.
func (a *App) UploadPaper(ctx context.Context, uploader domain.User, in UploadPaperInput) (domain.Paper, error) {
	in.Course = strings.TrimSpace(in.Course)
	in.Institution = strings.TrimSpace(in.Institution)
	if in.Course == "" || in.Institution == "" {
		return domain.Paper{}, ValidationError("course and institution are required")
	}
	if in.Year < 1900 || in.Year > time.Now().Year()+1 {
		return domain.Paper{}, ValidationError("year out of range")
	}
	if len(in.Data) == 0 {
		return domain.Paper{}, ValidationError("file is required")
	}
	pages, err := pdfPageCount(in.Data)
	if err != nil {
		return domain.Paper{}, ErrInvalidPDF
	}

	key := "papers/" + uuid.NewString() + ".pdf"
	if err := a.objects.Put(ctx, key, bytes.NewReader(in.Data), int64(len(in.Data)), "application/pdf"); err != nil {
		return domain.Paper{}, fmt.Errorf("store file: %w", err)
	}
	paper, err := a.store.CreatePaper(domain.Paper{
		UploaderID:  uploader.ID,
		Course:      in.Course,
		Year:        in.Year,
		Institution: in.Institution,
		StorageKey:  key,
		Pages:       pages,
		SizeBytes:   int64(len(in.Data)),
	})
	if err != nil {
		return domain.Paper{}, fmt.Errorf("create paper: %w", err)
	}
	if _, _, err := a.store.AddUserPoints(uploader.ID, pointsPaperUpload); err != nil {
		return domain.Paper{}, fmt.Errorf("award points: %w", err)
	}
	a.recordActivity(ctx, uploader.ID, domain.ActivityPaperUploaded, paper.ID, domain.TargetPaper, map[string]any{
		"course": paper.Course,
		"year":   paper.Year,
	})
	return paper, nil
}

// ListPapers returns papers matching the equality filter; a non-empty query
// additionally scans course and institution for a case-insensitive
// substring match.
func (a *App) ListPapers(f store.PaperFilter, query string) ([]domain.Paper, error) {
	papers, err := a.store.ListPapers(f)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return papers, nil
	}
	q := strings.ToLower(query)
	matched := papers[:0]
	for _, p := range papers {
		if strings.Contains(strings.ToLower(p.Course), q) ||
			strings.Contains(strings.ToLower(p.Institution), q) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// GetPaper returns a paper by id.
func (a *App) GetPaper(id int64) (domain.Paper, error) {
	paper, ok, err := a.store.GetPaper(id)
	if err != nil {
		return domain.Paper{}, fmt.Errorf("fetch paper: %w", err)
	}
	if !ok {
		return domain.Paper{}, ErrPaperNotFound
	}
	return paper, nil
}

// DownloadPaper bumps the download counter and returns the paper together
// with a pre-signed URL for its file.
func (a *App) DownloadPaper(ctx context.Context, user domain.User, id int64) (domain.Paper, string, error) {
	paper, ok, err := a.store.IncrementPaperDownloads(id)
	if err != nil {
		return domain.Paper{}, "", fmt.Errorf("increment downloads: %w", err)
	}
	if !ok {
		return domain.Paper{}, "", ErrPaperNotFound
	}
	url, err := a.objects.PresignGet(ctx, paper.StorageKey, a.downloadTTL)
	if err != nil {
		return domain.Paper{}, "", fmt.Errorf("presign download: %w", err)
	}
	a.recordActivity(ctx, user.ID, domain.ActivityPaperDownloaded, paper.ID, domain.TargetPaper, nil)
	return paper, url, nil
}

func pdfPageCount(data []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}
