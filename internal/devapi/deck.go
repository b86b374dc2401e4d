package devapi

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ErrNotPresentation is returned for uploads that are not a .pptx package.
var ErrNotPresentation = errors.New("not a pptx presentation")

const (
	relsNamespace   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	hyperlinkSuffix = "/hyperlink"
	maxLinkText     = 200
)

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Link is an external hyperlink on a slide.
type Link struct {
	URL  string
	Text string
}

// Slide is the indexed content of one slide part.
type Slide struct {
	Number int
	Text   string
	Links  []Link
}

// Deck is an indexed presentation.
type Deck struct {
	Slides []Slide
}

// URLCount returns the number of links across all slides.
func (d *Deck) URLCount() int {
	return lo.SumBy(d.Slides, func(s Slide) int { return len(s.Links) })
}

// IndexDeck reads the slide parts of a pptx package, collecting the visible
// text runs and the external hyperlinks of each slide in slide order.
func IndexDeck(data []byte) (*Deck, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPresentation, err)
	}

	parts := map[string]*zip.File{}
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	deck := &Deck{}
	for name, f := range parts {
		m := slidePart.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		number, _ := strconv.Atoi(m[1])

		targets, err := readHyperlinkTargets(parts[relsPath(name)])
		if err != nil {
			return nil, fmt.Errorf("slide %d relationships: %w", number, err)
		}
		slide, err := readSlide(f, targets)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", number, err)
		}
		slide.Number = number
		deck.Slides = append(deck.Slides, slide)
	}
	if len(deck.Slides) == 0 && parts["ppt/presentation.xml"] == nil {
		return nil, ErrNotPresentation
	}

	sort.Slice(deck.Slides, func(i, j int) bool { return deck.Slides[i].Number < deck.Slides[j].Number })
	return deck, nil
}

func relsPath(slide string) string {
	dir, file := path.Split(slide)
	return dir + "_rels/" + file + ".rels"
}

type relationships struct {
	Items []struct {
		ID         string `xml:"Id,attr"`
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// readHyperlinkTargets maps relationship ids to external hyperlink targets.
func readHyperlinkTargets(f *zip.File) (map[string]string, error) {
	targets := map[string]string{}
	if f == nil {
		return targets, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var rels relationships
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		return nil, err
	}
	for _, r := range rels.Items {
		if strings.HasSuffix(r.Type, hyperlinkSuffix) && strings.EqualFold(r.TargetMode, "External") {
			targets[r.ID] = strings.TrimSpace(r.Target)
		}
	}
	return targets, nil
}

// readSlide walks the slide XML. Text comes from a:t elements; a run (a:r)
// that carries a:hlinkClick contributes a link labelled with its text.
func readSlide(f *zip.File, targets map[string]string) (Slide, error) {
	rc, err := f.Open()
	if err != nil {
		return Slide{}, err
	}
	defer rc.Close()

	var (
		slide     Slide
		texts     []string
		seen      = map[string]bool{}
		inText    bool
		inRun     bool
		runText   strings.Builder
		runTarget string
	)

	addLink := func(url, text string) {
		if url == "" || strings.HasPrefix(url, "#") || seen[url] {
			return
		}
		seen[url] = true
		text = strings.TrimSpace(text)
		if len(text) > maxLinkText {
			text = text[:maxLinkText]
		}
		slide.Links = append(slide.Links, Link{URL: url, Text: text})
	}

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Slide{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				inRun, runTarget = true, ""
				runText.Reset()
			case "t":
				inText = true
			case "hlinkClick":
				for _, a := range t.Attr {
					if a.Name.Local == "id" && a.Name.Space == relsNamespace {
						runTarget = targets[a.Value]
					}
				}
				if !inRun {
					addLink(runTarget, "")
					runTarget = ""
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				if runTarget != "" {
					addLink(runTarget, runText.String())
				}
				inRun = false
			}
		case xml.CharData:
			if inText {
				s := string(t)
				if strings.TrimSpace(s) != "" {
					texts = append(texts, strings.TrimSpace(s))
				}
				if inRun {
					runText.WriteString(s)
				}
			}
		}
	}

	slide.Text = strings.Join(texts, "\n")
	return slide, nil
}
