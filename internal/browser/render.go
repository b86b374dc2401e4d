package browser

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dracory/slidebase/internal/dbapi"
	hb "github.com/gouniverse/hb"
	"github.com/samber/lo"
)

// User-facing texts.
const (
	MsgNoTables        = "No tables found in database."
	MsgTablesError     = "Error loading tables. Make sure the database is connected."
	MsgLoadingTables   = "Loading tables..."
	MsgLoadingRecords  = "Loading records..."
	MsgRecordsError    = "Error loading records. Please try again."
	MsgNoRecords       = "No records found in this table."
	MsgLoadingFiles    = "Loading files..."
	MsgNoFiles         = "No files uploaded yet"
	MsgFilesError      = "Error loading files"
	MsgSelectFiles     = "Please select at least one file"
	MsgClearing        = "Clearing database..."
	MsgClearConfirm    = "Are you sure you want to clear all presentation data? This cannot be undone."
	LabelClearButton   = "Clear Database"
	LabelClearingBusy  = "Clearing..."
	DefaultTimeLayout  = "1/2/2006, 3:04:05 PM"
	tableTitlePrefix   = "Table: "
	recordsTotalFormat = "Total: %d records"
)

// DeleteConfirmMessage is the question asked before deleting a file.
func DeleteConfirmMessage(name string) string {
	return `Are you sure you want to delete all data from "` + name + `"? This cannot be undone.`
}

func renderLoading(msg string) string {
	return hb.Div().Class("loading").Text(msg).ToHTML()
}

func renderError(msg string) string {
	return hb.Div().Class("error").Text(msg).ToHTML()
}

func renderEmpty(msg string) string {
	return hb.Div().Class("empty-state").Text(msg).ToHTML()
}

func renderSuccess(html string) string {
	return hb.Div().Class("success").Child(hb.Raw(html)).ToHTML()
}

// RenderTableCards renders one selectable card per table.
func RenderTableCards(tables []dbapi.TableSummary) string {
	if len(tables) == 0 {
		return renderEmpty(MsgNoTables)
	}
	cards := lo.Map(tables, func(t dbapi.TableSummary, _ int) hb.TagInterface {
		return hb.Div().
			Class("table-card").
			Attr("data-event", string(EventSelectTable)).
			Attr("data-table", t.Name).
			Children([]hb.TagInterface{
				hb.NewTag("h3").Text(t.DisplayName),
				hb.Div().Class("count").Text(fmt.Sprintf("%d records", t.Count)),
			})
	})
	return hb.Div().Class("tables-grid").Children(cards).ToHTML()
}

// RenderRecords renders the records table with its total line.
func RenderRecords(records []dbapi.Record, columns []string) string {
	if len(records) == 0 {
		return renderEmpty(MsgNoRecords)
	}

	headRow := hb.NewTag("tr").Children(lo.Map(columns, func(col string, _ int) hb.TagInterface {
		return hb.NewTag("th").Text(ColumnHeader(col))
	}))

	rows := lo.Map(records, func(rec dbapi.Record, _ int) hb.TagInterface {
		return hb.NewTag("tr").Children(lo.Map(columns, func(col string, _ int) hb.TagInterface {
			value, present := rec.Get(col)
			return hb.NewTag("td").Child(hb.Raw(FormatCell(col, value, present, rec)))
		}))
	})

	table := hb.NewTag("table").Class("records-table").Children([]hb.TagInterface{
		hb.NewTag("thead").Child(headRow),
		hb.NewTag("tbody").Children(rows),
	})

	return hb.Div().Class("records-wrapper").Children([]hb.TagInterface{
		table,
		hb.Div().Class("records-total").Text(fmt.Sprintf(recordsTotalFormat, len(records))),
	}).ToHTML()
}

// RenderFiles renders the uploaded files table.
func RenderFiles(files []dbapi.FileRecord, loc *time.Location, layout string) string {
	if len(files) == 0 {
		return renderEmpty(MsgNoFiles)
	}
	if loc == nil {
		loc = time.Local
	}
	if layout == "" {
		layout = DefaultTimeLayout
	}

	header := hb.NewTag("tr").Children(lo.Map([]string{"Filename", "Uploaded", "Slides", "URLs", "Actions"}, func(h string, _ int) hb.TagInterface {
		return hb.NewTag("th").Text(h)
	}))

	rows := lo.Map(files, func(f dbapi.FileRecord, _ int) hb.TagInterface {
		uploaded := f.UploadedAt
		if t, ok := f.UploadedTime(); ok {
			uploaded = t.In(loc).Format(layout)
		}
		deleteBtn := hb.NewTag("button").
			Attr("type", "button").
			Class("btn btn-danger btn-small").
			Attr("data-event", string(EventDeleteFile)).
			Attr("data-file-id", strconv.FormatInt(f.ID, 10)).
			Attr("data-file-name", f.OriginalFilename).
			Attr("data-confirm", DeleteConfirmMessage(f.OriginalFilename)).
			Text("Delete")
		return hb.NewTag("tr").Children([]hb.TagInterface{
			hb.NewTag("td").Text(f.OriginalFilename),
			hb.NewTag("td").Text(uploaded),
			hb.NewTag("td").Text(strconv.Itoa(f.SlideCount)),
			hb.NewTag("td").Text(strconv.Itoa(f.URLCount)),
			hb.NewTag("td").Child(deleteBtn),
		})
	})

	return hb.NewTag("table").Class("files-table").Children([]hb.TagInterface{
		hb.NewTag("thead").Child(header),
		hb.NewTag("tbody").Children(rows),
	}).ToHTML()
}

// RenderUploadSummary renders the result of a batch upload.
func RenderUploadSummary(s UploadSummary) string {
	parts := []hb.TagInterface{}
	if s.Succeeded > 0 {
		parts = append(parts, hb.Div().Class("success").
			Text(fmt.Sprintf("✓ %d file(s) uploaded successfully!", s.Succeeded)))
	}
	if s.Failed > 0 {
		lines := []hb.TagInterface{
			hb.NewTag("strong").Text(fmt.Sprintf("✗ %d file(s) failed:", s.Failed)),
		}
		for _, e := range s.Errors {
			lines = append(lines, hb.Raw("<br>"), hb.Text(e))
		}
		parts = append(parts, hb.Div().Class("error").Children(lines))
	}
	return hb.Div().Class("upload-summary").Children(parts).ToHTML()
}

// RenderClearResult renders the success message of a clear.
func RenderClearResult(res *dbapi.ClearResult) string {
	return renderSuccess(hb.NewTag("strong").Text("Database cleared!").ToHTML() +
		"<br>" +
		hb.Text(fmt.Sprintf("%d files, %d slides and %d URLs removed",
			res.FilesDeleted, res.SlidesDeleted, res.URLsDeleted)).ToHTML())
}

// DeleteResultMessage is the alert shown after a file is deleted.
func DeleteResultMessage(name string, res *dbapi.DeleteResult) string {
	return fmt.Sprintf("File \"%s\" deleted successfully!\n%d slides and %d URLs removed.",
		name, res.SlidesDeleted, res.URLCount)
}
