package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	config "github.com/ovationhq/arts_academy/configs"
	"github.com/ovationhq/arts_academy/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type reportRow struct {
	Day      string
	Time     string
	Title    string
	Category string
	Room     string
	Status   string
}

// GenerateScheduleReport renders an instructor's week as a PDF and uploads
// it, returning the download URL. Sessions that cannot be projected are left
// out of the report.
func GenerateScheduleReport(instructor models.User, weekStart time.Time, sessions []models.ClassSession) (string, error) {
	events, _ := ProjectSessions(sessions)

	rows := make([]reportRow, 0, len(events))
	for _, event := range events {
		room := "-"
		if event.Session.Room != nil {
			room = *event.Session.Room
		}
		rows = append(rows, reportRow{
			Day:      event.Start.Format("Monday, Jan 2"),
			Time:     event.Start.Format("15:04") + " - " + event.End.Format("15:04"),
			Title:    event.Title,
			Category: event.Session.Category,
			Room:     room,
			Status:   event.Session.Status,
		})
	}

	htmlData, err := renderScheduleHTML(instructor.FullName, weekStart, rows)
	if err != nil {
		return "", fmt.Errorf("failed to render schedule report: %w", err)
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		return "", fmt.Errorf("failed to generate schedule PDF: %w", err)
	}

	return uploadReportToCloudinary(pdfBytes, instructor.ID)
}

func renderScheduleHTML(instructorName string, weekStart time.Time, rows []reportRow) (string, error) {
	tmpl, err := template.ParseFiles("templates/schedule_report.html")
	if err != nil {
		return "", err
	}

	data := struct {
		InstructorName string
		WeekStart      string
		WeekEnd        string
		Rows           []reportRow
		GeneratedAt    string
	}{
		InstructorName: instructorName,
		WeekStart:      weekStart.Format("January 2, 2006"),
		WeekEnd:        weekStart.AddDate(0, 0, 6).Format("January 2, 2006"),
		Rows:           rows,
		GeneratedAt:    time.Now().Format("January 2, 2006 15:04"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReportToCloudinary(fileBytes []byte, instructorID uuid.UUID) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("schedules/%s_%s", instructorID, uuid.New().String()),
		Folder:       "academy_reports",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
