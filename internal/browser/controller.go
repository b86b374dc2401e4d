// Package browser is the table browser view: it loads table and file
// metadata from the /db backend, reacts to user events and renders every
// page region as HTML.
package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dracory/slidebase/internal/dbapi"
)

// API is the subset of the backend the view calls.
type API interface {
	ListTables(ctx context.Context) ([]dbapi.TableSummary, error)
	TableRecords(ctx context.Context, name string) (*dbapi.TableRecords, error)
	ListFiles(ctx context.Context) ([]dbapi.FileRecord, error)
	Upload(ctx context.Context, filename string, content io.Reader) (*dbapi.UploadResult, error)
	DeleteFile(ctx context.Context, id int64) (*dbapi.DeleteResult, error)
	Clear(ctx context.Context) (*dbapi.ClearResult, error)
}

// Options tune the view.
type Options struct {
	// FileManagement enables upload, file list, delete and clear.
	FileManagement bool
	// UnionColumns builds headers from every record instead of the first one.
	UnionColumns bool
	// Location is used for upload timestamps. Defaults to time.Local.
	Location *time.Location
	// TimeLayout formats upload timestamps. Defaults to DefaultTimeLayout.
	TimeLayout string
	Logger     *slog.Logger
}

// ViewState is the state owned by one controller.
type ViewState struct {
	CurrentTable string `json:"current_table"`
}

// Selected reports whether a table is open.
func (s ViewState) Selected() bool { return s.CurrentTable != "" }

// Controller is the view for one browser session. Events are serialised.
type Controller struct {
	mu     sync.Mutex
	api    API
	opts   Options
	state  ViewState
	events *EventRegistry
	logger *slog.Logger
}

// New creates a controller and registers its listeners.
func New(api API, opts Options) *Controller {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultTimeLayout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		api:    api,
		opts:   opts,
		events: NewEventRegistry(),
		logger: logger,
	}
	c.Register(c.events)
	return c
}

// Options returns the options the controller runs with.
func (c *Controller) Options() Options { return c.opts }

// Register binds the controller's listeners into r. File events are only
// bound when file management is on.
func (c *Controller) Register(r *EventRegistry) {
	r.On(EventInit, func(ctx context.Context, _ Event, doc Document, _ Dialogs) {
		c.loadTables(ctx, doc)
		if c.opts.FileManagement {
			c.loadFiles(ctx, doc)
		}
	})
	r.On(EventLoadTables, func(ctx context.Context, _ Event, doc Document, _ Dialogs) {
		c.loadTables(ctx, doc)
	})
	r.On(EventSelectTable, func(ctx context.Context, ev Event, doc Document, _ Dialogs) {
		c.selectTable(ctx, doc, ev.Table)
	})
	r.On(EventCloseRecords, func(_ context.Context, _ Event, doc Document, _ Dialogs) {
		c.closeRecords(doc)
	})

	if !c.opts.FileManagement {
		return
	}

	r.On(EventLoadFiles, func(ctx context.Context, _ Event, doc Document, _ Dialogs) {
		c.loadFiles(ctx, doc)
	})
	r.On(EventDeleteFile, func(ctx context.Context, ev Event, doc Document, dlg Dialogs) {
		c.deleteFile(ctx, doc, dlg, ev.FileID, ev.FileName)
	})
	r.On(EventUpload, func(ctx context.Context, ev Event, doc Document, _ Dialogs) {
		c.upload(ctx, doc, ev.Files)
	})
	r.On(EventClearDatabase, func(ctx context.Context, _ Event, doc Document, dlg Dialogs) {
		c.clearDatabase(ctx, doc, dlg)
	})
}

// Handles reports whether a listener is registered for name.
func (c *Controller) Handles(name EventName) bool {
	_, ok := c.events.Lookup(name)
	return ok
}

// Events returns the registered event names.
func (c *Controller) Events() []EventName { return c.events.Names() }

// State returns a copy of the current view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Check reports whether ev would be accepted by Dispatch.
func (c *Controller) Check(ev Event) error {
	if _, ok := c.events.Lookup(ev.Name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Name)
	}
	return ev.Validate()
}

// Dispatch runs the listener registered for ev and returns the resulting
// state. Backend failures are rendered into doc, not returned.
func (c *Controller) Dispatch(ctx context.Context, ev Event, doc Document, dlg Dialogs) (ViewState, error) {
	if err := c.Check(ev); err != nil {
		return c.State(), err
	}
	listener, _ := c.events.Lookup(ev.Name)
	if dlg == nil {
		dlg = Answer(false)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	listener(ctx, ev, doc, dlg)
	return c.state, nil
}

// LoadTables fetches the table list and renders the cards.
func (c *Controller) LoadTables(ctx context.Context, doc Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadTables(ctx, doc)
}

// SelectTable opens the records panel for name.
func (c *Controller) SelectTable(ctx context.Context, doc Document, name string) ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectTable(ctx, doc, name)
	return c.state
}

// CloseRecords hides the records panel and forgets the current table.
func (c *Controller) CloseRecords(doc Document) ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeRecords(doc)
	return c.state
}

// LoadFiles fetches and renders the uploaded files table.
func (c *Controller) LoadFiles(ctx context.Context, doc Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadFiles(ctx, doc)
}

// DeleteFile deletes one file after confirmation.
func (c *Controller) DeleteFile(ctx context.Context, doc Document, dlg Dialogs, id int64, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteFile(ctx, doc, dlg, id, name)
}

// Upload sends files one by one and renders the summary.
func (c *Controller) Upload(ctx context.Context, doc Document, files []UploadFile) UploadSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upload(ctx, doc, files)
}

// ClearDatabase wipes all presentation data after confirmation.
func (c *Controller) ClearDatabase(ctx context.Context, doc Document, dlg Dialogs) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearDatabase(ctx, doc, dlg)
}

func (c *Controller) loadTables(ctx context.Context, doc Document) {
	tables, err := c.api.ListTables(ctx)
	if err != nil {
		c.logger.Warn("load tables failed", slog.String("error", err.Error()))
		setHTML(doc, TablesList, renderError(MsgTablesError))
		return
	}
	setHTML(doc, TablesList, RenderTableCards(tables))
}

func (c *Controller) selectTable(ctx context.Context, doc Document, name string) {
	c.state.CurrentTable = name

	setVisible(doc, RecordsSection, true)
	setText(doc, TableTitle, tableTitlePrefix+name)
	setHTML(doc, RecordsContainer, renderLoading(MsgLoadingRecords))
	doc.Apply(Patch{ID: RecordsSection, Scroll: true})

	res, err := c.api.TableRecords(ctx, name)
	if err != nil {
		c.logger.Warn("load records failed",
			slog.String("table", name),
			slog.String("error", err.Error()))
		if dbapi.IsTransport(err) {
			setHTML(doc, RecordsContainer, renderError(MsgRecordsError))
			return
		}
		setHTML(doc, RecordsContainer, renderError("Error: "+dbapi.Message(err)))
		return
	}

	if len(res.Records) == 0 {
		setHTML(doc, RecordsContainer, renderEmpty(MsgNoRecords))
		return
	}
	setHTML(doc, RecordsContainer, RenderRecords(res.Records, Columns(res.Records, c.opts.UnionColumns)))
}

func (c *Controller) closeRecords(doc Document) {
	c.state.CurrentTable = ""
	setVisible(doc, RecordsSection, false)
	setHTML(doc, RecordsContainer, "")
	doc.Apply(Patch{Scroll: true})
}

func (c *Controller) loadFiles(ctx context.Context, doc Document) {
	files, err := c.api.ListFiles(ctx)
	if err != nil {
		c.logger.Warn("load files failed", slog.String("error", err.Error()))
		setHTML(doc, FilesList, renderError(MsgFilesError))
		return
	}
	setHTML(doc, FilesList, RenderFiles(files, c.opts.Location, c.opts.TimeLayout))
}

func (c *Controller) deleteFile(ctx context.Context, doc Document, dlg Dialogs, id int64, name string) {
	if !dlg.Confirm(DeleteConfirmMessage(name)) {
		return
	}

	res, err := c.api.DeleteFile(ctx, id)
	if err != nil {
		c.logger.Warn("delete file failed",
			slog.Int64("file_id", id),
			slog.String("error", err.Error()))
		doc.Alert("Error: " + dbapi.Message(err))
		return
	}

	doc.Alert(DeleteResultMessage(name, res))
	c.loadFiles(ctx, doc)
	c.loadTables(ctx, doc)
}

func (c *Controller) upload(ctx context.Context, doc Document, files []UploadFile) UploadSummary {
	if len(files) == 0 {
		setHTML(doc, UploadStatus, renderError(MsgSelectFiles))
		return UploadSummary{Errors: []string{}}
	}

	queue := NewUploadQueue(files...)
	setHTML(doc, UploadStatus, renderLoading(fmt.Sprintf("Uploading and parsing %d file(s)...", queue.Len())))

	summary := queue.Run(ctx, c.api)
	for _, o := range summary.Outcomes {
		if o.Err != nil {
			c.logger.Warn("upload failed",
				slog.String("file", o.Name),
				slog.String("error", o.Err.Error()))
		}
	}

	setHTML(doc, UploadStatus, RenderUploadSummary(summary))
	c.loadTables(ctx, doc)
	c.loadFiles(ctx, doc)
	doc.Apply(Patch{ID: UploadForm, Reset: true})
	return summary
}

func (c *Controller) clearDatabase(ctx context.Context, doc Document, dlg Dialogs) {
	if !dlg.Confirm(MsgClearConfirm) {
		return
	}

	setButton(doc, ClearButton, true, LabelClearingBusy)
	defer setButton(doc, ClearButton, false, LabelClearButton)

	setHTML(doc, ClearStatus, renderLoading(MsgClearing))

	res, err := c.api.Clear(ctx)
	if err != nil {
		c.logger.Warn("clear database failed", slog.String("error", err.Error()))
		setHTML(doc, ClearStatus, renderError("Error: "+dbapi.Message(err)))
		return
	}

	setHTML(doc, ClearStatus, RenderClearResult(res))
	c.loadTables(ctx, doc)
	c.loadFiles(ctx, doc)
}
