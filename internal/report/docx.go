package report

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Times New Roman"
	fontSize = 12
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)

	// inline markers that survive after bold spans are extracted
	inlineMarks = strings.NewReplacer("**", "", "__", "", "`", "")
)

// builder wraps a godocx document with the report styles
type builder struct {
	doc *docx.RootDoc
}

func newBuilder() (*builder, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}
	return &builder{doc: doc}, nil
}

func (b *builder) heading(text string, size uint64) {
	b.run(b.doc.AddParagraph(""), inlineMarks.Replace(text), size, true)
}

func (b *builder) line(label, value string) {
	p := b.doc.AddParagraph("")
	b.run(p, label+": ", fontSize, true)
	b.run(p, value, fontSize, false)
}

func (b *builder) plain(text string) {
	for _, para := range strings.Split(text, "\n") {
		if para = strings.TrimSpace(para); para == "" {
			continue
		}
		b.run(b.doc.AddParagraph(""), para, fontSize, false)
	}
}

// markdown renders headings, bullets and **bold** spans. Other lines, numbered items included, stay as typed.
func (b *builder) markdown(text string) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			b.heading(m[2], headingSize(len(m[1])+1))
			continue
		}

		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			trimmed = "• " + m[1]
		}
		b.rich(trimmed)
	}
}

func (b *builder) save(path string) error {
	return b.doc.SaveTo(path)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	case 3:
		return 13
	default:
		return fontSize
	}
}

// run appends one styled text run to p
func (b *builder) run(p *docx.Paragraph, text string, size uint64, bold bool) {
	r := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		r.Bold(true)
	}
}

// rich adds a paragraph where **spans** become bold runs
func (b *builder) rich(text string) {
	p := b.doc.AddParagraph("")
	last := 0
	for _, loc := range reBold.FindAllStringSubmatchIndex(text, -1) {
		if plain := text[last:loc[0]]; plain != "" {
			b.run(p, inlineMarks.Replace(plain), fontSize, false)
		}
		b.run(p, inlineMarks.Replace(text[loc[2]:loc[3]]), fontSize, true)
		last = loc[1]
	}
	if rest := text[last:]; rest != "" {
		b.run(p, inlineMarks.Replace(rest), fontSize, false)
	}
}
