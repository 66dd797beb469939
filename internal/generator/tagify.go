package generator

import "strings"

// Tag is a node of the XML-like structure used to lay out prompt input.
// A Tag with a Name wraps its children; a Tag without one is plain content.
type Tag struct {
	Name     string
	Content  string
	Children []Tag
}

// Elem builds a named tag.
func Elem(name string, children ...Tag) Tag {
	return Tag{Name: name, Children: children}
}

// Text builds a content node.
func Text(content string) Tag {
	return Tag{Content: content}
}

// Tagify renders t as
//
//	<name>
//	children...
//	</name>
//
// Content is written verbatim; models read it as prose, not markup.
func Tagify(t Tag) string {
	var b strings.Builder
	writeTag(&b, t)
	return strings.TrimRight(b.String(), "\n")
}

func writeTag(b *strings.Builder, t Tag) {
	if t.Name == "" {
		b.WriteString(strings.TrimSpace(t.Content))
		b.WriteString("\n")
		return
	}
	b.WriteString("<" + t.Name + ">\n")
	for _, c := range t.Children {
		writeTag(b, c)
	}
	b.WriteString("</" + t.Name + ">\n")
}
