package browser

// RegionID names an anchor element of the page.
type RegionID string

const (
	TablesList       RegionID = "tables-list"
	RecordsSection   RegionID = "records-section"
	RecordsContainer RegionID = "records-container"
	TableTitle       RegionID = "table-title"
	FilesList        RegionID = "files-list"
	UploadForm       RegionID = "upload-form"
	FileInput        RegionID = "pptx-file"
	UploadStatus     RegionID = "upload-status"
	ClearStatus      RegionID = "clear-status"
	ClearButton      RegionID = "clear-btn"
)

// Patch is one change to a region. Nil fields are left untouched.
type Patch struct {
	ID       RegionID `json:"id"`
	HTML     *string  `json:"html,omitempty"`
	Text     *string  `json:"text,omitempty"`
	Visible  *bool    `json:"visible,omitempty"`
	Disabled *bool    `json:"disabled,omitempty"`
	Label    *string  `json:"label,omitempty"`
	Reset    bool     `json:"reset,omitempty"`
	Scroll   bool     `json:"scroll,omitempty"`
}

// Document is the surface the controller renders into.
type Document interface {
	Apply(p Patch)
	Alert(message string)
}

// Dialogs asks the user to confirm destructive actions.
type Dialogs interface {
	Confirm(message string) bool
}

// Answer is a Dialogs whose reply is known up front, e.g. because the page
// already asked before posting the event.
type Answer bool

func (a Answer) Confirm(string) bool { return bool(a) }

// Frame is an in-memory Document that records patches and alerts in order.
type Frame struct {
	patches []Patch
	alerts  []string
}

// NewFrame returns an empty frame.
func NewFrame() *Frame {
	return &Frame{patches: []Patch{}, alerts: []string{}}
}

func (f *Frame) Apply(p Patch) { f.patches = append(f.patches, p) }

func (f *Frame) Alert(message string) { f.alerts = append(f.alerts, message) }

// Patches returns every patch in application order.
func (f *Frame) Patches() []Patch { return f.patches }

// Alerts returns every alert in order.
func (f *Frame) Alerts() []string { return f.alerts }

// HTML returns the last markup written to id.
func (f *Frame) HTML(id RegionID) string {
	for i := len(f.patches) - 1; i >= 0; i-- {
		if p := f.patches[i]; p.ID == id && p.HTML != nil {
			return *p.HTML
		}
	}
	return ""
}

// Text returns the last text written to id.
func (f *Frame) Text(id RegionID) string {
	for i := len(f.patches) - 1; i >= 0; i-- {
		if p := f.patches[i]; p.ID == id && p.Text != nil {
			return *p.Text
		}
	}
	return ""
}

// Visible reports the last visibility set on id and whether one was set.
func (f *Frame) Visible(id RegionID) (visible, set bool) {
	for i := len(f.patches) - 1; i >= 0; i-- {
		if p := f.patches[i]; p.ID == id && p.Visible != nil {
			return *p.Visible, true
		}
	}
	return false, false
}

// Disabled reports the last disabled flag set on id.
func (f *Frame) Disabled(id RegionID) bool {
	for i := len(f.patches) - 1; i >= 0; i-- {
		if p := f.patches[i]; p.ID == id && p.Disabled != nil {
			return *p.Disabled
		}
	}
	return false
}

// Label returns the last label set on id.
func (f *Frame) Label(id RegionID) string {
	for i := len(f.patches) - 1; i >= 0; i-- {
		if p := f.patches[i]; p.ID == id && p.Label != nil {
			return *p.Label
		}
	}
	return ""
}

// Touched reports whether any patch targeted id.
func (f *Frame) Touched(id RegionID) bool {
	for _, p := range f.patches {
		if p.ID == id {
			return true
		}
	}
	return false
}

// WasReset reports whether id received a reset.
func (f *Frame) WasReset(id RegionID) bool {
	for _, p := range f.patches {
		if p.ID == id && p.Reset {
			return true
		}
	}
	return false
}

func setHTML(doc Document, id RegionID, html string) {
	doc.Apply(Patch{ID: id, HTML: &html})
}

func setText(doc Document, id RegionID, text string) {
	doc.Apply(Patch{ID: id, Text: &text})
}

func setVisible(doc Document, id RegionID, visible bool) {
	doc.Apply(Patch{ID: id, Visible: &visible})
}

func setButton(doc Document, id RegionID, disabled bool, label string) {
	doc.Apply(Patch{ID: id, Disabled: &disabled, Label: &label})
}
