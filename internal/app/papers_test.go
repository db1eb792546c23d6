package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"studyhub/internal/store"
)

// minimalPDF builds a one-page PDF with a valid cross-reference table.
func minimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, 3)
	writeObj := func(n int, body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	xrefPos := buf.Len()
	buf.WriteString("xref\n0 4\n0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefPos)
	return buf.Bytes()
}

func uploadInput() UploadPaperInput {
	return UploadPaperInput{
		Course:      "CS101",
		Year:        2024,
		Institution: "MIT",
		Filename:    "final-2024.pdf",
		Data:        minimalPDF(),
	}
}

func TestUploadPaper(t *testing.T) {
	a, objects := newTestApp(t)
	user, _ := signUpUser(t, a, "alice")

	paper, err := a.UploadPaper(context.Background(), user, uploadInput())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if paper.ID == 0 || paper.UploaderID != user.ID {
		t.Fatalf("paper = %+v", paper)
	}
	if paper.Pages != 1 {
		t.Fatalf("pages = %d, want 1", paper.Pages)
	}
	if !strings.HasPrefix(paper.StorageKey, "papers/") {
		t.Fatalf("storage key = %q", paper.StorageKey)
	}
	if data, ok := objects.Object(paper.StorageKey); !ok || len(data) == 0 {
		t.Fatalf("file not stored under %q", paper.StorageKey)
	}

	// Upload awards points.
	updated, err := a.GetUser(user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if updated.Points != 10 {
		t.Fatalf("points = %d, want 10", updated.Points)
	}

	// And lands in the activity feed.
	feed, err := a.RecentActivity(0)
	if err != nil {
		t.Fatalf("recent activity: %v", err)
	}
	if len(feed) == 0 || feed[0].TargetID != paper.ID {
		t.Fatalf("feed = %+v, want paper upload first", feed)
	}
}

func TestUploadPaperRejectsInvalidInput(t *testing.T) {
	a, _ := newTestApp(t)
	user, _ := signUpUser(t, a, "alice")
	ctx := context.Background()

	in := uploadInput()
	in.Course = ""
	var vErr ValidationError
	if _, err := a.UploadPaper(ctx, user, in); !errors.As(err, &vErr) {
		t.Fatalf("missing course: err=%v, want ValidationError", err)
	}

	in = uploadInput()
	in.Year = 1850
	if _, err := a.UploadPaper(ctx, user, in); !errors.As(err, &vErr) {
		t.Fatalf("ancient year: err=%v, want ValidationError", err)
	}

	in = uploadInput()
	in.Data = []byte("definitely not a pdf")
	if _, err := a.UploadPaper(ctx, user, in); !errors.Is(err, ErrInvalidPDF) {
		t.Fatalf("garbage file: err=%v, want ErrInvalidPDF", err)
	}
}

func TestListPapersSearch(t *testing.T) {
	a, _ := newTestApp(t)
	user, _ := signUpUser(t, a, "alice")
	ctx := context.Background()

	in := uploadInput()
	if _, err := a.UploadPaper(ctx, user, in); err != nil {
		t.Fatalf("upload: %v", err)
	}
	in.Course = "MATH201"
	in.Institution = "Stanford"
	if _, err := a.UploadPaper(ctx, user, in); err != nil {
		t.Fatalf("upload: %v", err)
	}

	papers, err := a.ListPapers(store.PaperFilter{}, "stan")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(papers) != 1 || papers[0].Institution != "Stanford" {
		t.Fatalf("search got %+v", papers)
	}

	papers, err = a.ListPapers(store.PaperFilter{Course: strPtr("CS101")}, "")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(papers) != 1 || papers[0].Course != "CS101" {
		t.Fatalf("filter got %+v", papers)
	}
}

func TestDownloadPaper(t *testing.T) {
	a, _ := newTestApp(t)
	user, _ := signUpUser(t, a, "alice")
	ctx := context.Background()

	paper, err := a.UploadPaper(ctx, user, uploadInput())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	got, url, err := a.DownloadPaper(ctx, user, paper.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if got.Downloads != 1 {
		t.Fatalf("downloads = %d, want 1", got.Downloads)
	}
	if url == "" {
		t.Fatalf("empty download URL")
	}

	if _, _, err := a.DownloadPaper(ctx, user, 999); !errors.Is(err, ErrPaperNotFound) {
		t.Fatalf("missing paper: err=%v, want ErrPaperNotFound", err)
	}
}

func strPtr(v string) *string { return &v }
